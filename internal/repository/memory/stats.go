package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

type StatsRepo struct {
	db *db
}

func (r *StatsRepo) VendorStats(_ context.Context, vendorID uuid.UUID) (*domain.VendorStats, error) {
	var s domain.VendorStats
	err := r.db.do(func(st *state) error {
		for _, rw := range st.payments {
			if rw.v.VendorID == vendorID {
				s.TotalRevenue += rw.v.Amount
				s.TotalSold += int64(rw.v.Quantity)
			}
		}
		for _, rw := range st.tickets {
			if rw.v.VendorID == vendorID {
				s.TotalAdded++
			}
		}
		for _, rw := range st.bookings {
			if rw.v.VendorID == vendorID && rw.v.Status == domain.BookingPending {
				s.PendingRequests++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
