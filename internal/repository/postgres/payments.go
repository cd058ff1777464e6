package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

type PaymentRepo struct {
	db DB
}

// Create records a payment. The primary key on transaction_id and the unique
// booking_id turn a second payment for either into repository.ErrConflict.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "postgresrepo.PaymentRepo.Create"

	_, err := r.db.Exec(ctx,
		`INSERT INTO payments (transaction_id, booking_id, ticket_id, user_id, vendor_id,
			ticket_title, user_email, vendor_email, amount, quantity, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.TransactionID, p.BookingID, p.TicketID, p.UserID, p.VendorID,
		p.TicketTitle, p.UserEmail, p.VendorEmail, p.Amount, p.Quantity, p.Status, p.CreatedAt,
	)

	return wrapDBErr(op, err)
}

func (r *PaymentRepo) Get(ctx context.Context, transactionID string) (*domain.Payment, error) {
	const op = "postgresrepo.PaymentRepo.Get"

	p, err := scanPayment(r.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`, transactionID))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	const op = "postgresrepo.PaymentRepo.ListByUser"

	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanPayment)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
