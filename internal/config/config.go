package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Kafka    KafkaConfig
	Booking  BookingConfig
	Location *time.Location
	LogLevel slog.Level
}

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

// DSN renders the connection string pgxpool expects.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
	// Provider verifies the identity provider's ID tokens on POST /jwt.
	Provider IdentityProviderConfig
}

type IdentityProviderConfig struct {
	// Secret is the HMAC key of HS256 ID tokens.
	Secret string
	// PublicKeyFile holds the PEM key of RS256 ID tokens.
	PublicKeyFile string
	Issuer        string
	Audience      string
	// TrustEmail issues sessions for any registered email without an ID
	// token. Local development only.
	TrustEmail bool
}

type PaymentConfig struct {
	// StripeKey is empty when payments are not configured.
	StripeKey string
	Currency  string
	MinAmount int64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BookingConfig struct {
	// RateLimit is the number of bookings one customer may place per
	// RateWindow. Zero disables the limiter.
	RateLimit  int
	RateWindow time.Duration
}

// New reads the configuration from the environment, after loading .env
// when one is present.
func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var (
		cfg Config
		err error
	)

	cfg.Server.Host = getenv("SERVER_HOST", "localhost")
	if cfg.Server.Port, err = getenvInt("SERVER_PORT", 8080); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.Postgres = PostgresConfig{
		Host:     getenv("POSTGRES_HOST", "localhost"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}
	if cfg.Postgres.Port, err = getenvInt("POSTGRES_PORT", 5432); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for key, v := range map[string]string{
		"POSTGRES_USER":     cfg.Postgres.User,
		"POSTGRES_PASSWORD": cfg.Postgres.Password,
		"POSTGRES_DB":       cfg.Postgres.Name,
	} {
		if v == "" {
			return nil, fmt.Errorf("%s: missing %s", op, key)
		}
	}

	cfg.Redis = RedisConfig{
		Addr:     getenv("REDIS_ADDR", "localhost:6380"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if cfg.Redis.DB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.Auth.Secret = os.Getenv("JWT_SECRET")
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}
	if cfg.Auth.TTL, err = getenvDuration("JWT_TTL", 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.Auth.Provider = IdentityProviderConfig{
		Secret:        os.Getenv("AUTH_PROVIDER_SECRET"),
		PublicKeyFile: os.Getenv("AUTH_PROVIDER_PUBLIC_KEY_FILE"),
		Issuer:        os.Getenv("AUTH_PROVIDER_ISSUER"),
		Audience:      os.Getenv("AUTH_PROVIDER_AUDIENCE"),
	}
	if cfg.Auth.Provider.TrustEmail, err = getenvBool("AUTH_INSECURE_TRUST_EMAIL", false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.Payment.StripeKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Payment.Currency = strings.ToLower(getenv("PAYMENT_CURRENCY", "usd"))
	minAmount, err := getenvInt("PAYMENT_MIN_AMOUNT", 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if minAmount < 1 {
		return nil, fmt.Errorf("%s: PAYMENT_MIN_AMOUNT must be positive", op)
	}
	cfg.Payment.MinAmount = int64(minAmount)

	cfg.Kafka = KafkaConfig{
		Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
		Topic:   getenv("KAFKA_TOPIC", "tixmarket.events"),
	}

	if cfg.Booking.RateLimit, err = getenvInt("BOOKING_RATE_LIMIT", 10); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Booking.RateWindow, err = getenvDuration("BOOKING_RATE_WINDOW", time.Minute); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Location, err = time.LoadLocation(getenv("APP_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("%s: invalid APP_TIMEZONE: %w", op, err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%s: invalid LOG_LEVEL: %w", op, err)
	}

	return &cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
