package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type TicketRepo struct {
	db DB
}

const ticketFrom = ` FROM tickets t JOIN users u ON u.id = t.vendor_id`

// Create inserts a new ticket. A zero ID is replaced with a fresh UUID.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	const op = "postgresrepo.TicketRepo.Create"

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Perks == nil {
		t.Perks = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO tickets (id, vendor_id, title, from_city, to_city, transport_type, price,
			quantity, departure_date, departure_time, description, perks, image, status,
			is_advertised, hidden, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10, $11, $12, $13, $14, $15, $16, $17)`,
		t.ID, t.VendorID, t.Title, t.From, t.To, t.TransportType, t.Price,
		t.Quantity, t.DepartureDate, t.DepartureTime, t.Description, t.Perks, t.Image, t.Status,
		t.IsAdvertised, t.Hidden, t.CreatedAt,
	)

	return wrapDBErr(op, err)
}

// Get retrieves a ticket by its ID.
//
// Returns:
//   - *domain.Ticket: the ticket with its vendor's email and name.
//   - error: repository.ErrNotFound if the ticket does not exist.
func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	t, err := scanTicket(r.db.QueryRow(ctx,
		`SELECT `+ticketColumns+ticketFrom+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// GetForUpdate is Get with a row lock held until the transaction ends.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.GetForUpdate"

	t, err := scanTicket(r.db.QueryRow(ctx,
		`SELECT `+ticketColumns+ticketFrom+` WHERE t.id = $1 FOR UPDATE OF t`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// Save writes every mutable column of t.
func (r *TicketRepo) Save(ctx context.Context, t *domain.Ticket) error {
	const op = "postgresrepo.TicketRepo.Save"

	if t.Perks == nil {
		t.Perks = []string{}
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE tickets SET
			title = $2, from_city = $3, to_city = $4, transport_type = $5, price = $6,
			quantity = $7, departure_date = $8::date, departure_time = $9, description = $10,
			perks = $11, image = $12, status = $13, is_advertised = $14, hidden = $15
		 WHERE id = $1`,
		t.ID, t.Title, t.From, t.To, t.TransportType, t.Price,
		t.Quantity, t.DepartureDate, t.DepartureTime, t.Description,
		t.Perks, t.Image, t.Status, t.IsAdvertised, t.Hidden,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.TicketRepo.Delete"

	tag, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListAll"

	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+ticketFrom+` ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanTicket)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListByVendor"

	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+ticketFrom+` WHERE t.vendor_id = $1 ORDER BY t.created_at DESC`,
		vendorID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanTicket)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListPublic lists approved, visible tickets matching f.
//
// Parameters:
//   - f.From, f.To: case-insensitive substring match on the route.
//   - f.Transport: exact transport type, empty for any.
//   - f.SortPrice: "asc" or "desc"; anything else sorts newest first.
//   - f.Limit, f.Offset: pagination window; Limit <= 0 returns every row.
//
// Returns:
//   - []domain.Ticket: the requested page.
//   - int: number of tickets matching the filter across all pages.
func (r *TicketRepo) ListPublic(ctx context.Context, f domain.TicketFilter) ([]domain.Ticket, int, error) {
	const op = "postgresrepo.TicketRepo.ListPublic"

	order := "t.created_at DESC"
	switch f.SortPrice {
	case "asc":
		order = "t.price ASC, t.created_at DESC"
	case "desc":
		order = "t.price DESC, t.created_at DESC"
	}

	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}

	const where = ` WHERE t.status = 'approved' AND NOT t.hidden
		AND ($1 = '' OR t.from_city ILIKE $1)
		AND ($2 = '' OR t.to_city ILIKE $2)
		AND ($3 = '' OR t.transport_type = $3)`

	from, to := containsPattern(f.From), containsPattern(f.To)

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT count(*)`+ticketFrom+where, from, to, string(f.Transport),
	).Scan(&total)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+ticketFrom+where+` ORDER BY `+order+` LIMIT $4 OFFSET $5`,
		from, to, string(f.Transport), limit, f.Offset,
	)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanTicket)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	return out, total, nil
}

// ListAdvertised lists the featured tickets that are still publicly visible.
func (r *TicketRepo) ListAdvertised(ctx context.Context) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListAdvertised"

	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+ticketFrom+`
		 WHERE t.is_advertised AND t.status = 'approved' AND NOT t.hidden
		 ORDER BY t.created_at DESC
		 LIMIT $1`,
		domain.MaxAdvertised,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanTicket)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) CountAdvertised(ctx context.Context) (int, error) {
	const op = "postgresrepo.TicketRepo.CountAdvertised"

	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM tickets WHERE is_advertised`).Scan(&n)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

// HideByVendor hides every visible ticket of the vendor and clears their
// advertisement flags. It returns the number of tickets hidden.
func (r *TicketRepo) HideByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	const op = "postgresrepo.TicketRepo.HideByVendor"

	tag, err := r.db.Exec(ctx,
		`UPDATE tickets SET hidden = true, is_advertised = false
		 WHERE vendor_id = $1 AND NOT hidden`,
		vendorID,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// DecrementSeats removes n seats from the ticket's inventory.
//
// Returns:
//   - error: repository.ErrSeatsUnavailable if fewer than n seats remain.
//   - error: repository.ErrNotFound if the ticket no longer exists.
func (r *TicketRepo) DecrementSeats(ctx context.Context, id uuid.UUID, n int) error {
	const op = "postgresrepo.TicketRepo.DecrementSeats"

	var left int
	err := r.db.QueryRow(ctx,
		`UPDATE tickets SET quantity = quantity - $2 WHERE id = $1 RETURNING quantity`,
		id, n,
	).Scan(&left)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
