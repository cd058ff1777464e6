package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/metrics"
	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/uow"
	"github.com/samber/lo"
)

// Limiter admits or refuses one request for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Service struct {
	store   repository.Store
	uow     *uow.UoW
	notify  *notify.Notifier
	limiter Limiter
	clock   clock.Clock
	logger  *slog.Logger
}

func New(
	store repository.Store,
	n *notify.Notifier,
	limiter Limiter,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:   store,
		uow:     uow.NewUoW(store),
		notify:  n,
		limiter: limiter,
		clock:   clk,
		logger:  logger,
	}
}

// CustomerBooking is a booking as shown on the customer's dashboard.
type CustomerBooking struct {
	domain.Booking
	Action    domain.BookingAction `json:"action"`
	Enabled   bool                 `json:"actionEnabled"`
	Remaining domain.Remaining     `json:"remaining"`
}

// VendorBooking is a booking request as shown to the selling vendor.
type VendorBooking struct {
	domain.Booking
	Decidable bool `json:"decidable"`
}

// Create places a pending booking for quantity seats.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the booking customer.
//   - ticketID: ID of the ticket to book.
//   - quantity: number of seats.
//
// Returns:
//   - *domain.Booking: the stored booking, status pending.
//   - error: reservation.RateLimitedError if the customer books too often.
//   - error: reservation.ErrTicketNotFound if the ticket does not exist.
//   - error: domain.ValidationError if quantity is out of range.
//   - error: domain.InvalidStateError if the ticket is not bookable.
func (s *Service) Create(ctx context.Context, actor domain.User, ticketID uuid.UUID, quantity int) (*domain.Booking, error) {
	const op = "service.reservation.Create"

	if !actor.Role.CanBook() {
		return nil, fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "only customers can book tickets"})
	}

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, actor.ID.String())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	var b *domain.Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		t, err := tx.Tickets().Get(ctx, ticketID)
		if err != nil {
			return mapNotFound(err, ErrTicketNotFound)
		}

		b, err = domain.NewBooking(t, actor, quantity, s.clock.Now())
		if err != nil {
			return err
		}

		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, bookingEvent(events.BookingCreated, b, s.clock.Now()), b.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.BookingsCreated.Inc()
	s.logger.Info("booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("ticket_id", ticketID.String()),
		slog.Int("quantity", quantity),
	)

	return b, nil
}

// Decide records the vendor's accept or reject decision on a pending
// booking. A booking is decided once.
func (s *Service) Decide(ctx context.Context, actor domain.User, id uuid.UUID, outcome domain.BookingStatus) (int64, error) {
	const op = "service.reservation.Decide"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := tx.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrBookingNotFound)
		}

		if err := b.Decide(actor, outcome); err != nil {
			return err
		}

		if err := tx.Bookings().UpdateStatus(ctx, id, b.Status); err != nil {
			return mapNotFound(err, ErrBookingNotFound)
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, bookingEvent(events.BookingDecided, b, s.clock.Now()), b.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.BookingDecisions.WithLabelValues(string(outcome)).Inc()

	return 1, nil
}

// ListByUser returns the customer's bookings with the action each card
// offers at the current instant.
func (s *Service) ListByUser(ctx context.Context, actor domain.User, email string) ([]CustomerBooking, error) {
	const op = "service.reservation.ListByUser"

	if err := domain.CheckSelf(actor, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookings, err := s.store.Bookings().ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	out := make([]CustomerBooking, 0, len(bookings))
	for _, b := range bookings {
		dep, err := domain.ParseDeparture(b.DepartureDate, b.DepartureTime, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%s: booking %s: %w", op, b.ID, err)
		}

		rem := domain.RemainingUntil(dep, now)
		action := domain.ActionFor(b.Status, rem.Expired)
		out = append(out, CustomerBooking{
			Booking:   b,
			Action:    action,
			Enabled:   action.Enabled(),
			Remaining: rem,
		})
	}

	return out, nil
}

// ListByVendor returns the booking requests for the vendor's tickets.
func (s *Service) ListByVendor(ctx context.Context, actor domain.User, email string) ([]VendorBooking, error) {
	const op = "service.reservation.ListByVendor"

	if err := domain.CheckSelf(actor, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.Role.CanSell() {
		return nil, fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "vendor privileges required"})
	}

	bookings, err := s.store.Bookings().ListByVendor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lo.Map(bookings, func(b domain.Booking, _ int) VendorBooking {
		return VendorBooking{Booking: b, Decidable: domain.BookingDecidable(&b)}
	}), nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

func bookingEvent(typ events.Type, b *domain.Booking, at time.Time) events.Event {
	return events.Event{
		Type:     typ,
		EntityID: b.ID.String(),
		Attrs: map[string]string{
			"ticketId": b.TicketID.String(),
			"status":   string(b.Status),
		},
		At: at.UTC(),
	}
}
