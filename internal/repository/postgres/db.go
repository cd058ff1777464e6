package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

const maxTxAttempts = 3

// DB is satisfied by both *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store serves the repositories straight from the pool and binds them to a
// transaction inside RunTx.
type Store struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		opts: pgx.TxOptions{
			IsoLevel:   pgx.Serializable,
			AccessMode: pgx.ReadWrite,
		},
	}
}

// RunTx runs fn in a serializable transaction. Serialization failures and
// deadlocks are retried up to maxTxAttempts times.
func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	const op = "postgresrepo.Store.RunTx"

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTxOnce(ctx, fn)
		if err == nil || !IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) runTxOnce(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, s.opts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, handles{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) Tickets() repository.TicketRepository   { return &TicketRepo{db: s.pool} }
func (s *Store) Bookings() repository.BookingRepository { return &BookingRepo{db: s.pool} }
func (s *Store) Payments() repository.PaymentRepository { return &PaymentRepo{db: s.pool} }
func (s *Store) Users() repository.UserRepository       { return &UserRepo{db: s.pool} }
func (s *Store) Stats() repository.StatsRepository      { return &StatsRepo{db: s.pool} }

// handles binds every repository to one transaction.
type handles struct {
	db DB
}

func (h handles) Tickets() repository.TicketRepository   { return &TicketRepo{db: h.db} }
func (h handles) Bookings() repository.BookingRepository { return &BookingRepo{db: h.db} }
func (h handles) Payments() repository.PaymentRepository { return &PaymentRepo{db: h.db} }
func (h handles) Users() repository.UserRepository       { return &UserRepo{db: h.db} }
func (h handles) Stats() repository.StatsRepository      { return &StatsRepo{db: h.db} }
