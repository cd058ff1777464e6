package tickets

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
	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/uow"
)

// Service manages a vendor's own ticket listings.
type Service struct {
	store  repository.Store
	uow    *uow.UoW
	notify *notify.Notifier
	clock  clock.Clock
	logger *slog.Logger
}

func New(store repository.Store, n *notify.Notifier, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		uow:    uow.NewUoW(store),
		notify: n,
		clock:  clk,
		logger: logger,
	}
}

// Create lists a new ticket for admin review.
//
// Returns:
//   - *domain.Ticket: the stored ticket, status pending.
//   - error: domain.ForbiddenError if actor is not a vendor.
//   - error: domain.ValidationError if the draft is invalid.
func (s *Service) Create(ctx context.Context, actor domain.User, draft domain.TicketDraft) (*domain.Ticket, error) {
	const op = "service.tickets.Create"

	now := s.clock.Now()
	t, err := domain.NewTicket(actor, draft, now.Location(), now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		if err := tx.Tickets().Create(ctx, t); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, ticketEvent(events.TicketCreated, t, now), t.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("ticket created",
		slog.String("ticket_id", t.ID.String()),
		slog.String("vendor_id", t.VendorID.String()),
	)

	return t, nil
}

// Get returns a ticket. Tickets that are not publicly listed are visible
// only to their vendor and to admins.
func (s *Service) Get(ctx context.Context, actor domain.User, id uuid.UUID) (*domain.Ticket, error) {
	const op = "service.tickets.Get"

	t, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err))
	}

	if !t.Public() && actor.Role != domain.RoleAdmin && actor.ID != t.VendorID {
		return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
	}

	return t, nil
}

// Update applies a vendor edit. Rejected tickets are locked.
func (s *Service) Update(ctx context.Context, actor domain.User, id uuid.UUID, draft domain.TicketDraft) (*domain.Ticket, error) {
	const op = "service.tickets.Update"

	var out *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		t, err := tx.Tickets().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		if err := t.Edit(actor, draft, s.clock.Now().Location()); err != nil {
			return err
		}

		if err := tx.Tickets().Save(ctx, t); err != nil {
			return err
		}

		out = t
		after(func(ctx context.Context) {
			s.notify.Notify(ctx, ticketEvent(events.TicketUpdated, t, s.clock.Now()))
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Delete removes the vendor's ticket and reports how many were deleted.
func (s *Service) Delete(ctx context.Context, actor domain.User, id uuid.UUID) (int64, error) {
	const op = "service.tickets.Delete"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		t, err := tx.Tickets().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		if err := t.CheckOwner(actor); err != nil {
			return err
		}
		if err := t.CheckMutable("delete"); err != nil {
			return err
		}

		if err := tx.Tickets().Delete(ctx, id); err != nil {
			return mapNotFound(err)
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, ticketEvent(events.TicketDeleted, t, s.clock.Now()), t.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return 1, nil
}

// ListByVendor lists every ticket of the vendor owning email. Vendors can
// list only their own tickets.
func (s *Service) ListByVendor(ctx context.Context, actor domain.User, email string) ([]domain.Ticket, error) {
	const op = "service.tickets.ListByVendor"

	if err := domain.CheckSelf(actor, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.Role.CanSell() {
		return nil, fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "vendor privileges required"})
	}

	out, err := s.store.Tickets().ListByVendor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTicketNotFound
	}
	return err
}

func ticketEvent(typ events.Type, t *domain.Ticket, at time.Time) events.Event {
	return events.Event{
		Type:     typ,
		EntityID: t.ID.String(),
		Attrs: map[string]string{
			"vendorId": t.VendorID.String(),
			"status":   string(t.Status),
		},
		At: at.UTC(),
	}
}
