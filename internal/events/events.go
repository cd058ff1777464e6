package events

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	TicketCreated       Type = "ticket.created"
	TicketUpdated       Type = "ticket.updated"
	TicketDeleted       Type = "ticket.deleted"
	TicketStatusChanged Type = "ticket.status_changed"
	TicketAdvertised    Type = "ticket.advertised"
	BookingCreated      Type = "booking.created"
	BookingDecided      Type = "booking.decided"
	PaymentRecorded     Type = "payment.recorded"
	UserRoleChanged     Type = "user.role_changed"
	VendorMarkedFraud   Type = "user.marked_fraud"
)

// Event is a committed state change. EntityID is the ticket, booking, user
// or transaction the event is about.
type Event struct {
	Type     Type              `json:"type"`
	EntityID string            `json:"entity_id"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	At       time.Time         `json:"at"`
}

// AffectsListings reports whether the event may change what public ticket
// listings show.
func (e Event) AffectsListings() bool {
	switch e.Type {
	case TicketCreated, TicketUpdated, TicketDeleted, TicketStatusChanged,
		TicketAdvertised, PaymentRecorded, VendorMarkedFraud:
		return true
	case BookingCreated, BookingDecided, UserRoleChanged:
		return false
	}
	return false
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout publishes every event to all of its publishers and joins their
// errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory. It is used by tests.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
