package domain

import (
	"fmt"
	"strings"
	"time"
)

// Approve moves a pending ticket to approved, making it eligible for the
// public listing and for advertisement.
func (t *Ticket) Approve() error {
	if t.Status != TicketPending {
		return InvalidStateError{Entity: "ticket", Op: "approve", State: string(t.Status)}
	}
	t.Status = TicketApproved
	return nil
}

// Reject moves a pending ticket to the terminal rejected state.
func (t *Ticket) Reject() error {
	if t.Status != TicketPending {
		return InvalidStateError{Entity: "ticket", Op: "reject", State: string(t.Status)}
	}
	t.Status = TicketRejected
	t.IsAdvertised = false
	return nil
}

// Transition applies an admin status decision.
func (t *Ticket) Transition(to TicketStatus) error {
	switch to {
	case TicketApproved:
		return t.Approve()
	case TicketRejected:
		return t.Reject()
	case TicketPending:
	}
	return ValidationError{Field: "status", Reason: "must be approved or rejected"}
}

// CheckMutable reports whether the vendor may still edit or delete the ticket.
func (t *Ticket) CheckMutable(op string) error {
	switch t.Status {
	case TicketPending, TicketApproved:
		return nil
	case TicketRejected:
	}
	return InvalidStateError{Entity: "ticket", Op: op, State: string(t.Status), Reason: "rejected tickets are locked"}
}

// SetAdvertised toggles the advertisement flag. advertised is the number of
// tickets currently advertised system-wide. Re-applying the current state is
// a no-op and reports changed=false.
func (t *Ticket) SetAdvertised(desired bool, advertised int) (changed bool, err error) {
	if t.Status != TicketApproved {
		return false, InvalidStateError{Entity: "ticket", Op: "advertise", State: string(t.Status), Reason: "only approved tickets"}
	}
	if t.IsAdvertised == desired {
		return false, nil
	}
	if desired && t.Hidden {
		return false, InvalidStateError{Entity: "ticket", Op: "advertise", State: string(t.Status), Reason: "vendor account is banned"}
	}
	if desired && advertised >= MaxAdvertised {
		return false, LimitReachedError{Limit: MaxAdvertised}
	}
	t.IsAdvertised = desired
	return true, nil
}

// Public reports whether the ticket may appear in public listings.
func (t *Ticket) Public() bool {
	return t.Status == TicketApproved && !t.Hidden
}

// Hide removes the ticket from public listings without deleting it.
func (t *Ticket) Hide() {
	t.Hidden = true
	t.IsAdvertised = false
}

// TicketDraft carries the vendor-editable fields.
type TicketDraft struct {
	Title         string
	From          string
	To            string
	TransportType TransportType
	Price         int64
	Quantity      int
	DepartureDate string
	DepartureTime string
	Description   string
	Perks         []string
	Image         string
}

// Validate checks the draft and normalizes the departure time.
func (d *TicketDraft) Validate(loc *time.Location) error {
	d.Title = strings.TrimSpace(d.Title)
	d.From = strings.TrimSpace(d.From)
	d.To = strings.TrimSpace(d.To)

	switch {
	case d.Title == "":
		return ValidationError{Field: "title", Reason: "required"}
	case d.From == "":
		return ValidationError{Field: "from", Reason: "required"}
	case d.To == "":
		return ValidationError{Field: "to", Reason: "required"}
	case strings.EqualFold(d.From, d.To):
		return ValidationError{Field: "to", Reason: "must differ from departure"}
	case !d.TransportType.Valid():
		return ValidationError{Field: "transportType", Reason: "must be bus, train, launch or flight"}
	case d.Price <= 0:
		return ValidationError{Field: "price", Reason: "must be positive"}
	case d.Price > MaxTicketPrice:
		return ValidationError{Field: "price", Reason: fmt.Sprintf("must not exceed %d", MaxTicketPrice)}
	case d.Quantity < 0:
		return ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	if _, err := ParseDeparture(d.DepartureDate, d.DepartureTime, loc); err != nil {
		return err
	}

	tm, err := NormalizeTime(d.DepartureTime)
	if err != nil {
		return err
	}
	d.DepartureTime = tm

	return nil
}

// NewTicket creates a pending ticket owned by vendor.
func NewTicket(vendor User, draft TicketDraft, loc *time.Location, now time.Time) (*Ticket, error) {
	if !vendor.Role.CanSell() {
		return nil, ForbiddenError{Reason: "only vendors can add tickets"}
	}
	if err := draft.Validate(loc); err != nil {
		return nil, err
	}
	if draft.Quantity < 1 {
		return nil, ValidationError{Field: "quantity", Reason: "at least 1 seat"}
	}

	t := &Ticket{
		VendorID:    vendor.ID,
		VendorEmail: vendor.Email,
		VendorName:  vendor.Name,
		Status:      TicketPending,
		CreatedAt:   now,
	}
	t.apply(draft)

	return t, nil
}

// Edit applies a vendor edit. The actor must own the ticket and the ticket
// must not be rejected.
func (t *Ticket) Edit(actor User, draft TicketDraft, loc *time.Location) error {
	if err := t.CheckOwner(actor); err != nil {
		return err
	}
	if err := t.CheckMutable("edit"); err != nil {
		return err
	}
	if err := draft.Validate(loc); err != nil {
		return err
	}
	t.apply(draft)
	return nil
}

// CheckOwner reports whether actor is the selling vendor of the ticket.
func (t *Ticket) CheckOwner(actor User) error {
	if !actor.Role.CanSell() {
		return ForbiddenError{Reason: "vendor privileges required"}
	}
	if actor.ID != t.VendorID {
		return ForbiddenError{Reason: "ticket belongs to another vendor"}
	}
	return nil
}

func (t *Ticket) apply(d TicketDraft) {
	t.Title = d.Title
	t.From = d.From
	t.To = d.To
	t.TransportType = d.TransportType
	t.Price = d.Price
	t.Quantity = d.Quantity
	t.DepartureDate = d.DepartureDate
	t.DepartureTime = d.DepartureTime
	t.Description = d.Description
	t.Perks = d.Perks
	t.Image = d.Image
}
