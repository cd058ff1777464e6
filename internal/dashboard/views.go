package dashboard

import "github.com/kirinyoku/tixmarket/internal/domain"

// BookingRow is a booking on the customer's "my bookings" page.
type BookingRow struct {
	domain.Booking
	Action        domain.BookingAction `json:"action"`
	ActionEnabled bool                 `json:"actionEnabled"`
	Remaining     domain.Remaining     `json:"remaining"`
}

// RequestRow is a booking on the vendor's "requested bookings" page.
type RequestRow struct {
	domain.Booking
	Decidable bool `json:"decidable"`
}

// UserRow is an account on the admin's user management page. Actions is
// empty for the admin's own row and for other admins.
type UserRow struct {
	domain.User
	Actions []domain.UserAction `json:"actions"`
}

type SearchParams struct {
	From  string
	To    string
	Type  domain.TransportType
	Sort  string
	Page  int
	Limit int
}

type SearchResult struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// AdminTicketRow pairs a ticket with the state of the admin controls.
type AdminTicketRow struct {
	domain.Ticket
	Reviewable bool
	// CanAdvertise is false for tickets that are not approved.
	CanAdvertise bool
}
