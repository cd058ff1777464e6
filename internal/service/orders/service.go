package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/gateway"
	"github.com/kirinyoku/tixmarket/internal/metrics"
	"github.com/kirinyoku/tixmarket/internal/receipt"
	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/uow"
)

type Config struct {
	Currency string
	// MinAmount is the smallest payable amount in whole currency units.
	MinAmount int64
}

type Service struct {
	store   repository.Store
	uow     *uow.UoW
	gateway gateway.Gateway
	notify  *notify.Notifier
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

func New(
	store repository.Store,
	gw gateway.Gateway,
	n *notify.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 1
	}
	if gw == nil {
		gw = gateway.Disabled{}
	}

	return &Service{
		store:   store,
		uow:     uow.NewUoW(store),
		gateway: gw,
		notify:  n,
		clock:   clk,
		logger:  logger,
		cfg:     cfg,
	}
}

// RecordResult mirrors the two writes a recorded payment performs.
type RecordResult struct {
	InsertedID string
	Modified   int64
}

// CreateIntent opens a gateway payment intent for price. When bookingID is
// given the booking must be payable by actor for exactly that price.
//
// Returns:
//   - string: the client secret for the payment form.
//   - error: domain.ValidationError if price is below the minimum.
//   - error: gateway.ErrNotConfigured if no gateway is configured.
func (s *Service) CreateIntent(ctx context.Context, actor domain.User, price int64, bookingID *uuid.UUID) (string, error) {
	const op = "service.orders.CreateIntent"

	if price < s.cfg.MinAmount {
		return "", fmt.Errorf("%s: %w", op, domain.ValidationError{Field: "price", Reason: "below minimum payable amount"})
	}

	meta := map[string]string{"userId": actor.ID.String()}

	if bookingID != nil {
		b, err := s.store.Bookings().Get(ctx, *bookingID)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, mapNotFound(err, ErrBookingNotFound))
		}
		if err := b.CheckPayable(actor, price, s.cfg.MinAmount, s.clock.Now()); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		meta["bookingId"] = b.ID.String()
	}

	intent, err := s.gateway.CreateIntent(ctx, price, s.cfg.Currency, meta)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return intent.ClientSecret, nil
}

// Record marks an accepted booking paid, takes its seats from the ticket
// and stores the single Payment for it. The charge is verified with the
// gateway first.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the paying customer.
//   - transactionID: gateway payment intent ID.
//   - bookingID: the booking being paid.
//
// Returns:
//   - RecordResult: the payment ID and the number of updated bookings.
//   - error: orders.ErrPaymentNotConfirmed if the charge did not succeed.
//   - error: gateway.ErrNotConfigured if no gateway is configured.
//   - error: orders.ErrBookingNotFound if the booking does not exist.
//   - error: domain.InvalidStateError if the booking is not payable, is
//     already paid or the ticket sold out.
func (s *Service) Record(ctx context.Context, actor domain.User, transactionID string, bookingID uuid.UUID) (RecordResult, error) {
	const op = "service.orders.Record"

	if transactionID == "" {
		return RecordResult{}, fmt.Errorf("%s: %w", op, domain.ValidationError{Field: "transactionId", Reason: "required"})
	}

	conf, err := s.confirm(ctx, transactionID, bookingID)
	if err != nil {
		return RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var p *domain.Payment
	err = s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			return mapNotFound(err, ErrBookingNotFound)
		}

		if conf.Amount != b.TotalPrice {
			return domain.ValidationError{Field: "price", Reason: "charged amount does not match booking total"}
		}

		p, err = b.Pay(actor, transactionID, s.cfg.MinAmount, s.clock.Now())
		if err != nil {
			return err
		}

		if err := tx.Bookings().UpdateStatus(ctx, b.ID, b.Status); err != nil {
			return err
		}

		if err := tx.Tickets().DecrementSeats(ctx, b.TicketID, b.Quantity); err != nil {
			switch {
			case errors.Is(err, repository.ErrSeatsUnavailable):
				return domain.InvalidStateError{Entity: "ticket", Op: "pay", State: "sold out", Reason: "not enough seats left"}
			case errors.Is(err, repository.ErrNotFound):
				// The ticket was deleted after booking; the booking snapshot
				// still stands.
			default:
				return err
			}
		}

		if err := tx.Payments().Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return domain.InvalidStateError{Entity: "booking", Op: "pay", State: string(domain.BookingPaid), Reason: "already paid"}
			}
			return err
		}

		after(func(ctx context.Context) {
			s.notify.Notify(ctx, events.Event{
				Type:     events.PaymentRecorded,
				EntityID: p.TransactionID,
				Attrs: map[string]string{
					"bookingId": p.BookingID.String(),
					"ticketId":  p.TicketID.String(),
					"amount":    fmt.Sprint(p.Amount),
				},
				At: p.CreatedAt.UTC(),
			}, p.VendorID.String())
		})
		return nil
	})
	if err != nil {
		return RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsRecorded.Inc()
	s.logger.Info("payment recorded",
		slog.String("transaction_id", transactionID),
		slog.String("booking_id", bookingID.String()),
		slog.Int64("amount", p.Amount),
	)

	return RecordResult{InsertedID: p.TransactionID, Modified: 1}, nil
}

// confirm asks the gateway about the charge. Without a gateway nothing can
// be confirmed, so nothing is recorded.
func (s *Service) confirm(ctx context.Context, transactionID string, bookingID uuid.UUID) (*gateway.Confirmation, error) {
	conf, err := s.gateway.Confirm(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !conf.Succeeded {
		return nil, ErrPaymentNotConfirmed
	}
	if id, ok := conf.Metadata["bookingId"]; ok && id != bookingID.String() {
		return nil, domain.ValidationError{Field: "bookingId", Reason: "payment was made for another booking"}
	}

	return conf, nil
}

// History lists the customer's payments, newest first.
func (s *Service) History(ctx context.Context, actor domain.User, email string) ([]domain.Payment, error) {
	const op = "service.orders.History"

	if err := domain.CheckSelf(actor, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.store.Payments().ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Receipt renders the PDF e-ticket of a payment. Only the paying customer
// and admins may download it.
func (s *Service) Receipt(ctx context.Context, actor domain.User, transactionID string) ([]byte, error) {
	const op = "service.orders.Receipt"

	p, err := s.store.Payments().Get(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrPaymentNotFound))
	}

	if p.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "payment belongs to another customer"})
	}

	b, err := s.store.Bookings().Get(ctx, p.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapNotFound(err, ErrBookingNotFound))
	}

	pdf, err := receipt.Render(*p, *b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pdf, nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
