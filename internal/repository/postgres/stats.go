package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

type StatsRepo struct {
	db DB
}

// VendorStats aggregates revenue and sales from payments, the number of
// tickets the vendor listed and the bookings awaiting their decision. The
// four counters are fetched in one batch round trip.
func (r *StatsRepo) VendorStats(ctx context.Context, vendorID uuid.UUID) (*domain.VendorStats, error) {
	const op = "postgresrepo.StatsRepo.VendorStats"

	var s domain.VendorStats

	b := &pgx.Batch{}
	b.Queue(`SELECT COALESCE(SUM(amount), 0)::bigint, COALESCE(SUM(quantity), 0)::bigint
		FROM payments WHERE vendor_id = $1`, vendorID).
		QueryRow(func(row pgx.Row) error {
			return row.Scan(&s.TotalRevenue, &s.TotalSold)
		})
	b.Queue(`SELECT count(*) FROM tickets WHERE vendor_id = $1`, vendorID).
		QueryRow(func(row pgx.Row) error {
			return row.Scan(&s.TotalAdded)
		})
	b.Queue(`SELECT count(*) FROM bookings WHERE vendor_id = $1 AND status = 'pending'`, vendorID).
		QueryRow(func(row pgx.Row) error {
			return row.Scan(&s.PendingRequests)
		})

	if err := r.db.SendBatch(ctx, b).Close(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}
