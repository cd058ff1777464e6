package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/metrics"
	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/uow"
)

// Service holds the admin dashboard operations: ticket review,
// advertisement slots and user management.
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

// AdvertiseResult reports the outcome of an advertisement toggle.
// LimitReached is set when every slot is taken; nothing is modified then.
type AdvertiseResult struct {
	Modified     int64
	LimitReached bool
}

// FraudResult counts the rows changed by a fraud ban.
type FraudResult struct {
	UserModified    int64
	TicketsModified int64
}

// UserRow is a user management table row.
type UserRow struct {
	domain.User
	Actions []domain.UserAction `json:"actions"`
}

var errAdminOnly = domain.ForbiddenError{Reason: "admin privileges required"}

// ListTickets returns every ticket regardless of status.
func (s *Service) ListTickets(ctx context.Context, actor domain.User) ([]domain.Ticket, error) {
	const op = "service.admin.ListTickets"

	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, errAdminOnly)
	}

	out, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// SetTicketStatus approves or rejects a pending ticket.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the acting admin.
//   - id: ticket ID.
//   - status: approved or rejected.
//
// Returns:
//   - int64: the number of modified tickets.
//   - error: admin.ErrTicketNotFound if the ticket does not exist.
//   - error: domain.InvalidStateError if the ticket is no longer pending.
func (s *Service) SetTicketStatus(ctx context.Context, actor domain.User, id uuid.UUID, status domain.TicketStatus) (int64, error) {
	const op = "service.admin.SetTicketStatus"

	if actor.Role != domain.RoleAdmin {
		return 0, fmt.Errorf("%s: %w", op, errAdminOnly)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		t, err := tx.Tickets().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrTicketNotFound)
		}

		if err := t.Transition(status); err != nil {
			return err
		}

		if err := tx.Tickets().Save(ctx, t); err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, events.Event{
				Type:     events.TicketStatusChanged,
				EntityID: t.ID.String(),
				Attrs:    map[string]string{"status": string(t.Status), "vendorId": t.VendorID.String()},
				At:       s.clock.Now().UTC(),
			}, t.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("ticket reviewed",
		slog.String("ticket_id", id.String()),
		slog.String("status", string(status)),
		slog.String("admin_id", actor.ID.String()),
	)

	return 1, nil
}

// SetAdvertised toggles a ticket's advertisement flag. The slot count and
// the toggle are evaluated in one transaction so the limit holds under
// concurrent toggles.
func (s *Service) SetAdvertised(ctx context.Context, actor domain.User, id uuid.UUID, desired bool) (AdvertiseResult, error) {
	const op = "service.admin.SetAdvertised"

	if actor.Role != domain.RoleAdmin {
		return AdvertiseResult{}, fmt.Errorf("%s: %w", op, errAdminOnly)
	}

	var res AdvertiseResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		res = AdvertiseResult{}

		t, err := tx.Tickets().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrTicketNotFound)
		}

		count, err := tx.Tickets().CountAdvertised(ctx)
		if err != nil {
			return err
		}

		changed, err := t.SetAdvertised(desired, count)
		if err != nil {
			var lre domain.LimitReachedError
			if errors.As(err, &lre) {
				res.LimitReached = true
				return nil
			}
			return err
		}
		if !changed {
			return nil
		}

		if err := tx.Tickets().Save(ctx, t); err != nil {
			return err
		}
		res.Modified = 1

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, events.Event{
				Type:     events.TicketAdvertised,
				EntityID: t.ID.String(),
				Attrs:    map[string]string{"isAdvertised": fmt.Sprint(t.IsAdvertised)},
				At:       s.clock.Now().UTC(),
			})
		})
		return nil
	})
	if err != nil {
		return AdvertiseResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if res.LimitReached {
		metrics.AdvertiseLimitHits.Inc()
		s.logger.Info("advertisement limit reached", slog.String("ticket_id", id.String()))
	}

	return res, nil
}

// ListUsers returns every account with the actions actor may take on it.
func (s *Service) ListUsers(ctx context.Context, actor domain.User) ([]UserRow, error) {
	const op = "service.admin.ListUsers"

	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, errAdminOnly)
	}

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]UserRow, 0, len(users))
	for _, u := range users {
		out = append(out, UserRow{User: u, Actions: domain.UserActions(actor, u)})
	}

	return out, nil
}

// Promote changes a user's role to vendor or admin.
//
// Returns:
//   - int64: the number of modified users.
//   - error: admin.ErrUserNotFound if the target does not exist.
//   - error: domain.ForbiddenError on self-action or a banned target.
//   - error: domain.InvalidStateError if the transition is not allowed.
func (s *Service) Promote(ctx context.Context, actor domain.User, targetID uuid.UUID, role domain.Role) (int64, error) {
	const op = "service.admin.Promote"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		target, err := tx.Users().GetForUpdate(ctx, targetID)
		if err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		if err := domain.CanPromote(actor, *target, role); err != nil {
			return err
		}

		if err := tx.Users().UpdateRole(ctx, targetID, role); err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, events.Event{
				Type:     events.UserRoleChanged,
				EntityID: targetID.String(),
				Attrs:    map[string]string{"from": string(target.Role), "to": string(role)},
				At:       s.clock.Now().UTC(),
			})
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user role changed",
		slog.String("user_id", targetID.String()),
		slog.String("role", string(role)),
		slog.String("admin_id", actor.ID.String()),
	)

	return 1, nil
}

// MarkFraud bans a vendor and hides all of their tickets from public
// listings. Tickets are kept for the record.
func (s *Service) MarkFraud(ctx context.Context, actor domain.User, targetID uuid.UUID) (FraudResult, error) {
	const op = "service.admin.MarkFraud"

	var res FraudResult
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		target, err := tx.Users().GetForUpdate(ctx, targetID)
		if err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		if err := domain.CanMarkFraud(actor, *target); err != nil {
			return err
		}

		if err := tx.Users().UpdateRole(ctx, targetID, domain.RoleFraud); err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}

		hidden, err := tx.Tickets().HideByVendor(ctx, targetID)
		if err != nil {
			return err
		}

		res = FraudResult{UserModified: 1, TicketsModified: hidden}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, events.Event{
				Type:     events.VendorMarkedFraud,
				EntityID: targetID.String(),
				Attrs:    map[string]string{"ticketsHidden": fmt.Sprint(hidden)},
				At:       s.clock.Now().UTC(),
			}, targetID.String())
		})
		return nil
	})
	if err != nil {
		return FraudResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Warn("vendor marked as fraud",
		slog.String("user_id", targetID.String()),
		slog.Int64("tickets_hidden", res.TicketsModified),
		slog.String("admin_id", actor.ID.String()),
	)

	return res, nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
