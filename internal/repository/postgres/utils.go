package postgresrepo

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

const ticketColumns = `t.id, t.title, t.from_city, t.to_city, t.transport_type, t.price, t.quantity,
	to_char(t.departure_date, 'YYYY-MM-DD'), t.departure_time, t.description, t.perks, t.image,
	t.status, t.is_advertised, t.hidden, t.vendor_id, u.email, u.name, t.created_at`

const bookingColumns = `id, ticket_id, user_id, vendor_id, ticket_title, from_city, to_city,
	transport_type, image, user_email, user_name, vendor_email, quantity, unit_price, total_price,
	status, to_char(departure_date, 'YYYY-MM-DD'), departure_time, created_at`

const paymentColumns = `transaction_id, booking_id, ticket_id, user_id, vendor_id, ticket_title,
	user_email, vendor_email, amount, quantity, status, created_at`

const userColumns = `id, email, name, photo_url, role, created_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.From, &t.To, &t.TransportType, &t.Price, &t.Quantity,
		&t.DepartureDate, &t.DepartureTime, &t.Description, &t.Perks, &t.Image,
		&t.Status, &t.IsAdvertised, &t.Hidden, &t.VendorID, &t.VendorEmail, &t.VendorName, &t.CreatedAt,
	)
	return t, err
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.TicketID, &b.UserID, &b.VendorID, &b.TicketTitle, &b.From, &b.To,
		&b.TransportType, &b.Image, &b.UserEmail, &b.UserName, &b.VendorEmail, &b.Quantity,
		&b.UnitPrice, &b.TotalPrice, &b.Status, &b.DepartureDate, &b.DepartureTime, &b.CreatedAt,
	)
	return b, err
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.TransactionID, &p.BookingID, &p.TicketID, &p.UserID, &p.VendorID, &p.TicketTitle,
		&p.UserEmail, &p.VendorEmail, &p.Amount, &p.Quantity, &p.Status, &p.CreatedAt,
	)
	return p, err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhotoURL, &u.Role, &u.CreatedAt)
	return u, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in the column.
// An empty s yields an empty pattern, which callers treat as "no filter".
func containsPattern(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}
