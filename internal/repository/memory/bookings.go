package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type BookingRepo struct {
	db *db
}

func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) error {
	return r.db.do(func(st *state) error {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if _, ok := st.bookings[b.ID]; ok {
			return repository.ErrConflict
		}
		st.bookings[b.ID] = row[domain.Booking]{v: *b, seq: st.next()}
		return nil
	})
}

func (r *BookingRepo) Get(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	var out domain.Booking
	err := r.db.do(func(st *state) error {
		rw, ok := st.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = rw.v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return r.db.do(func(st *state) error {
		rw, ok := st.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		rw.v.Status = status
		st.bookings[id] = rw
		return nil
	})
}

func (r *BookingRepo) list(keep func(domain.Booking) bool) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.do(func(st *state) error {
		var rows []row[domain.Booking]
		for _, rw := range st.bookings {
			if keep(rw.v) {
				rows = append(rows, rw)
			}
		}
		out = newestFirst(rows, func(b domain.Booking) time.Time { return b.CreatedAt })
		return nil
	})
	return out, err
}

func (r *BookingRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return r.list(func(b domain.Booking) bool { return b.UserID == userID })
}

func (r *BookingRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]domain.Booking, error) {
	return r.list(func(b domain.Booking) bool { return b.VendorID == vendorID })
}
