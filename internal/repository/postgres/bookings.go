package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type BookingRepo struct {
	db DB
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgresrepo.BookingRepo.Create"

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, ticket_id, user_id, vendor_id, ticket_title, from_city, to_city,
			transport_type, image, user_email, user_name, vendor_email, quantity, unit_price,
			total_price, status, departure_date, departure_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17::date, $18, $19)`,
		b.ID, b.TicketID, b.UserID, b.VendorID, b.TicketTitle, b.From, b.To,
		b.TransportType, b.Image, b.UserEmail, b.UserName, b.VendorEmail, b.Quantity, b.UnitPrice,
		b.TotalPrice, b.Status, b.DepartureDate, b.DepartureTime, b.CreatedAt,
	)

	return wrapDBErr(op, err)
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.Get"

	b, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &b, nil
}

func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &b, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	const op = "postgresrepo.BookingRepo.UpdateStatus"

	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.ListByUser"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanBooking)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *BookingRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Booking, error) {
	const op = "postgresrepo.BookingRepo.ListByVendor"

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE vendor_id = $1 ORDER BY created_at DESC`,
		vendorID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanBooking)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
