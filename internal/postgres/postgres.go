package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	appName     = "tixmarket"
	pingTimeout = 3 * time.Second
)

type Config struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

func (c Config) apply(pc *pgxpool.Config) {
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		pc.MinConns = c.MinConns
	}

	pc.MaxConnIdleTime = 5 * time.Minute
	pc.MaxConnLifetime = time.Hour
	pc.HealthCheckPeriod = 30 * time.Second

	// Sessions render timestamps in UTC regardless of the server default.
	rp := pc.ConnConfig.RuntimeParams
	rp["application_name"] = appName
	rp["timezone"] = "UTC"
}

// New opens the booking database pool. A pool that cannot reach the server
// is closed before the error is returned.
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	const op = "postgres.New"

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: parse dsn: %w", op, err)
	}
	cfg.apply(pc)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, pc.ConnConfig.Host, err)
	}

	return pool, nil
}
