// Package memory is an in-process repository.Store. It backs service and
// transport tests and runs the server without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type row[T any] struct {
	v   T
	seq int64
}

type state struct {
	seq      int64
	users    map[uuid.UUID]row[domain.User]
	tickets  map[uuid.UUID]row[domain.Ticket]
	bookings map[uuid.UUID]row[domain.Booking]
	payments map[string]row[domain.Payment]
}

func newState() *state {
	return &state{
		users:    map[uuid.UUID]row[domain.User]{},
		tickets:  map[uuid.UUID]row[domain.Ticket]{},
		bookings: map[uuid.UUID]row[domain.Booking]{},
		payments: map[string]row[domain.Payment]{},
	}
}

func (s *state) clone() *state {
	cp := &state{
		seq:      s.seq,
		users:    make(map[uuid.UUID]row[domain.User], len(s.users)),
		tickets:  make(map[uuid.UUID]row[domain.Ticket], len(s.tickets)),
		bookings: make(map[uuid.UUID]row[domain.Booking], len(s.bookings)),
		payments: make(map[string]row[domain.Payment], len(s.payments)),
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.tickets {
		cp.tickets[k] = v
	}
	for k, v := range s.bookings {
		cp.bookings[k] = v
	}
	for k, v := range s.payments {
		cp.payments[k] = v
	}
	return cp
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// Store keeps all data in maps guarded by one mutex. Transactions hold the
// mutex for their whole duration and work on a copy that replaces the live
// state on commit, so they are serializable and roll back cleanly.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, handles{db: &db{st: work}}); err != nil {
		return err
	}

	s.st = work
	return nil
}

func (s *Store) pooled() *db {
	return &db{mu: &s.mu, store: s}
}

func (s *Store) Tickets() repository.TicketRepository   { return &TicketRepo{db: s.pooled()} }
func (s *Store) Bookings() repository.BookingRepository { return &BookingRepo{db: s.pooled()} }
func (s *Store) Payments() repository.PaymentRepository { return &PaymentRepo{db: s.pooled()} }
func (s *Store) Users() repository.UserRepository       { return &UserRepo{db: s.pooled()} }
func (s *Store) Stats() repository.StatsRepository      { return &StatsRepo{db: s.pooled()} }

type handles struct {
	db *db
}

func (h handles) Tickets() repository.TicketRepository   { return &TicketRepo{db: h.db} }
func (h handles) Bookings() repository.BookingRepository { return &BookingRepo{db: h.db} }
func (h handles) Payments() repository.PaymentRepository { return &PaymentRepo{db: h.db} }
func (h handles) Users() repository.UserRepository       { return &UserRepo{db: h.db} }
func (h handles) Stats() repository.StatsRepository      { return &StatsRepo{db: h.db} }

// db is either bound to a transaction's working copy (st set) or to the live
// store, in which case every call takes the store mutex.
type db struct {
	st    *state
	mu    *sync.Mutex
	store *Store
}

func (d *db) do(fn func(st *state) error) error {
	if d.st != nil {
		return fn(d.st)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.store.st)
}

// newestFirst orders rows by creation time, then insertion order, newest
// first.
func newestFirst[T any](rows []row[T], created func(T) time.Time) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(rows[i].v), created(rows[j].v)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.v)
	}
	return out
}
