package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tixmarket/internal/auth"
	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/config"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/gateway"
	"github.com/kirinyoku/tixmarket/internal/kafka"
	"github.com/kirinyoku/tixmarket/internal/metrics"
	"github.com/kirinyoku/tixmarket/internal/postgres"
	redisx "github.com/kirinyoku/tixmarket/internal/redis"
	postgresrepo "github.com/kirinyoku/tixmarket/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service"
	"github.com/kirinyoku/tixmarket/internal/service/orders"
	"github.com/kirinyoku/tixmarket/internal/service/reservation"
	httpgin "github.com/kirinyoku/tixmarket/internal/transport/http/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *redis.Client
	pubsub     *redisx.EventsPubSub
	producer   *kafka.Producer
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN()})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgresrepo.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	rdb, err := redisx.New(ctx, redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		rdb:    rdb,
		pubsub: redisx.NewEventsPubSub(rdb),
	}

	publishers := events.Fanout{a.pubsub}
	if cfg.Kafka.Enabled() {
		a.producer = kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		publishers = append(publishers, a.producer)
		logger.Info("publishing domain events to kafka", slog.String("topic", cfg.Kafka.Topic))
	}

	var gw gateway.Gateway = gateway.Disabled{}
	if cfg.Payment.StripeKey != "" {
		gw = gateway.NewStripe(cfg.Payment.StripeKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set, payments are disabled")
	}

	// A nil *SlidingWindowLimiter must not reach the interface.
	var limiter reservation.Limiter
	if cfg.Booking.RateLimit > 0 {
		limiter = redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimit("booking"), cfg.Booking.RateLimit, cfg.Booking.RateWindow)
	}

	services := service.NewServices(service.Deps{
		Store:     postgresrepo.NewStore(pool),
		Cache:     redisrepo.New(rdb),
		Publisher: publishers,
		Limiter:   limiter,
		Gateway:   gw,
		Clock:     clock.Real(cfg.Location),
		Logger:    logger,
	}, service.Config{
		Orders: orders.Config{Currency: cfg.Payment.Currency, MinAmount: cfg.Payment.MinAmount},
	})

	verifier, err := newVerifier(cfg.Auth.Provider, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	router := httpgin.NewRouter(
		services,
		auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL),
		verifier,
		redisrepo.NewIdempotencyStore(rdb, 24*time.Hour),
		logger,
	)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// newVerifier prefers the provider's RSA key, then its shared secret.
func newVerifier(cfg config.IdentityProviderConfig, logger *slog.Logger) (auth.Verifier, error) {
	switch {
	case cfg.PublicKeyFile != "":
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		return auth.NewRSAVerifier(pem, cfg.Issuer, cfg.Audience)
	case cfg.Secret != "":
		return auth.NewHMACVerifier(cfg.Secret, cfg.Issuer, cfg.Audience), nil
	case cfg.TrustEmail:
		logger.Warn("AUTH_INSECURE_TRUST_EMAIL is set, /jwt issues sessions without identity proof")
		return auth.TrustEmail{}, nil
	default:
		logger.Warn("no identity provider configured, /jwt is disabled")
		return auth.NoProvider{}, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Every instance observes the events of all others.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, nil, func(_ context.Context, e events.Event) {
			metrics.EventsReceived.WithLabelValues(string(e.Type)).Inc()
			a.logger.Debug("domain event", slog.String("type", string(e.Type)), slog.String("entity_id", e.EntityID))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("events subscription: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", slog.Any("err", err))
		}
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("close redis", slog.Any("err", err))
	}
	a.pool.Close()
}
