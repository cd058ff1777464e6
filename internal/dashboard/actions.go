package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/samber/lo"
)

type modified struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type inserted struct {
	InsertedID string `json:"insertedId"`
}

// Public listings.

func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	const op = "dashboard.Client.Search"

	q := url.Values{}
	for k, v := range map[string]string{"from": p.From, "to": p.To, "type": string(p.Type), "sort": p.Sort} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	path := "/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out SearchResult
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

func (c *Client) Advertised(ctx context.Context) ([]domain.Ticket, error) {
	const op = "dashboard.Client.Advertised"

	var out []domain.Ticket
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tickets/advertised"}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (c *Client) Ticket(ctx context.Context, id string) (*domain.Ticket, error) {
	const op = "dashboard.Client.Ticket"

	var out domain.Ticket
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tickets/" + url.PathEscape(id)}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Vendor.

func ticketBody(d domain.TicketDraft) map[string]any {
	return map[string]any{
		"title":         d.Title,
		"from":          d.From,
		"to":            d.To,
		"transportType": d.TransportType,
		"price":         d.Price,
		"quantity":      d.Quantity,
		"departureDate": d.DepartureDate,
		"departureTime": d.DepartureTime,
		"description":   d.Description,
		"perks":         d.Perks,
		"image":         d.Image,
	}
}

// AddTicket submits a new listing for review and returns its ID.
func (c *Client) AddTicket(ctx context.Context, d domain.TicketDraft) (string, error) {
	const op = "dashboard.Client.AddTicket"

	if err := c.requireSession(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !c.session.Role().CanSell() {
		return "", fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "only vendors can add tickets"})
	}
	if err := d.Validate(c.loc); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var out inserted
	if err := c.do(ctx, request{method: http.MethodPost, path: "/tickets", body: ticketBody(d)}, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.InsertedID, nil
}

func (c *Client) MyTickets(ctx context.Context) ([]domain.Ticket, error) {
	const op = "dashboard.Client.MyTickets"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []domain.Ticket
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tickets/vendor/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateTicket edits a listing. Rejected listings are refused locally.
func (c *Client) UpdateTicket(ctx context.Context, t domain.Ticket, d domain.TicketDraft) error {
	const op = "dashboard.Client.UpdateTicket"

	if err := t.CheckMutable("update"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := d.Validate(c.loc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := c.do(ctx, request{method: http.MethodPatch, path: "/tickets/update/" + t.ID.String(), body: ticketBody(d)}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) DeleteTicket(ctx context.Context, t domain.Ticket) error {
	const op = "dashboard.Client.DeleteTicket"

	if err := t.CheckMutable("delete"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/tickets/" + t.ID.String()}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) BookingRequests(ctx context.Context) ([]RequestRow, error) {
	const op = "dashboard.Client.BookingRequests"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []RequestRow
	if err := c.do(ctx, request{method: http.MethodGet, path: "/bookings/vendor/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Decide accepts or rejects a pending booking request.
func (c *Client) Decide(ctx context.Context, r RequestRow, outcome domain.BookingStatus) error {
	const op = "dashboard.Client.Decide"

	if outcome != domain.BookingAccepted && outcome != domain.BookingRejected {
		return fmt.Errorf("%s: %w", op, domain.ValidationError{Field: "status", Reason: "must be accepted or rejected"})
	}
	if !domain.BookingDecidable(&r.Booking) {
		return fmt.Errorf("%s: %w", op, domain.InvalidStateError{Entity: "booking", Op: "decide", State: string(r.Status)})
	}

	err := c.guard.Do(func() error {
		return c.do(ctx, request{
			method: http.MethodPatch,
			path:   "/bookings/status/" + r.ID.String(),
			body:   map[string]string{"status": string(outcome)},
		}, nil)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) Stats(ctx context.Context) (*domain.VendorStats, error) {
	const op = "dashboard.Client.Stats"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out domain.VendorStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/vendor-stats/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// Admin.

func (c *Client) AllTickets(ctx context.Context) ([]AdminTicketRow, error) {
	const op = "dashboard.Client.AllTickets"

	var out []domain.Ticket
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tickets/admin"}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lo.Map(out, func(t domain.Ticket, _ int) AdminTicketRow {
		return AdminTicketRow{
			Ticket:       t,
			Reviewable:   domain.TicketReviewable(&t),
			CanAdvertise: t.Status == domain.TicketApproved,
		}
	}), nil
}

// Review approves or rejects a pending ticket.
func (c *Client) Review(ctx context.Context, t domain.Ticket, status domain.TicketStatus) error {
	const op = "dashboard.Client.Review"

	if err := t.Transition(status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/tickets/status/" + t.ID.String(),
		body:   map[string]string{"status": string(status)},
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ToggleAdvertise sets the advertisement flag and reports whether it
// changed. A full slot table is returned as domain.LimitReachedError.
func (c *Client) ToggleAdvertise(ctx context.Context, t domain.Ticket, desired bool) (bool, error) {
	const op = "dashboard.Client.ToggleAdvertise"

	if t.Status != domain.TicketApproved {
		return false, fmt.Errorf("%s: %w", op, domain.InvalidStateError{
			Entity: "ticket", Op: "advertise", State: string(t.Status), Reason: "only approved tickets",
		})
	}

	var out struct {
		ModifiedCount int64 `json:"modifiedCount"`
		LimitReached  bool  `json:"limitReached"`
	}
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/tickets/advertise/" + t.ID.String(),
		body:   map[string]bool{"isAdvertised": desired},
	}, &out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if out.LimitReached {
		return false, fmt.Errorf("%s: %w", op, domain.LimitReachedError{Limit: domain.MaxAdvertised})
	}

	return out.ModifiedCount > 0, nil
}

func (c *Client) Users(ctx context.Context) ([]UserRow, error) {
	const op = "dashboard.Client.Users"

	var out []UserRow
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users"}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func rowOffers(r UserRow, a domain.UserAction) error {
	if !lo.Contains(r.Actions, a) {
		return domain.ForbiddenError{Reason: fmt.Sprintf("%s is not available for %s", a, r.Email)}
	}
	return nil
}

// Promote makes the account a vendor or an admin.
func (c *Client) Promote(ctx context.Context, r UserRow, role domain.Role) error {
	const op = "dashboard.Client.Promote"

	var action domain.UserAction
	switch role {
	case domain.RoleVendor:
		action = domain.UserActionMakeVendor
	case domain.RoleAdmin:
		action = domain.UserActionMakeAdmin
	case domain.RoleUser, domain.RoleFraud:
		return fmt.Errorf("%s: %w", op, domain.ValidationError{Field: "role", Reason: "must be vendor or admin"})
	default:
		return fmt.Errorf("%s: %w", op, domain.ValidationError{Field: "role", Reason: "unknown role"})
	}
	if err := rowOffers(r, action); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/users/role/" + r.ID.String(),
		body:   map[string]string{"role": string(role)},
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkFraud flags a vendor and returns the number of listings hidden.
func (c *Client) MarkFraud(ctx context.Context, r UserRow) (int64, error) {
	const op = "dashboard.Client.MarkFraud"

	if err := rowOffers(r, domain.UserActionMarkFraud); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		TicketResult modified `json:"ticketResult"`
	}
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/users/fraud/" + r.ID.String(),
		body:   map[string]string{"email": r.Email},
	}, &out)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return out.TicketResult.ModifiedCount, nil
}
