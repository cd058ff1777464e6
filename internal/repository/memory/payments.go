package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type PaymentRepo struct {
	db *db
}

func (r *PaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	return r.db.do(func(st *state) error {
		if _, ok := st.payments[p.TransactionID]; ok {
			return repository.ErrConflict
		}
		for _, rw := range st.payments {
			if rw.v.BookingID == p.BookingID {
				return repository.ErrConflict
			}
		}
		st.payments[p.TransactionID] = row[domain.Payment]{v: *p, seq: st.next()}
		return nil
	})
}

func (r *PaymentRepo) Get(_ context.Context, transactionID string) (*domain.Payment, error) {
	var out domain.Payment
	err := r.db.do(func(st *state) error {
		rw, ok := st.payments[transactionID]
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

func (r *PaymentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.do(func(st *state) error {
		var rows []row[domain.Payment]
		for _, rw := range st.payments {
			if rw.v.UserID == userID {
				rows = append(rows, rw)
			}
		}
		out = newestFirst(rows, func(p domain.Payment) time.Time { return p.CreatedAt })
		return nil
	})
	return out, err
}
