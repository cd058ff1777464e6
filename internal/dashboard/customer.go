package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kirinyoku/tixmarket/internal/domain"
)

// Book requests quantity seats of t and returns the booking ID. Quantity
// and departure are checked against the listing before anything is sent.
func (c *Client) Book(ctx context.Context, t domain.Ticket, quantity int) (string, error) {
	const op = "dashboard.Client.Book"

	if err := c.requireSession(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !c.session.Role().CanBook() {
		return "", fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "only customers can book tickets"})
	}
	if _, err := domain.ComputeTotal(t.Price, quantity, t.Quantity); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if c.departed(t.DepartureDate, t.DepartureTime) {
		return "", fmt.Errorf("%s: %w", op, domain.InvalidStateError{
			Entity: "ticket", Op: "book", State: string(t.Status), Reason: "already departed",
		})
	}

	var out inserted
	err := c.guard.Do(func() error {
		return c.do(ctx, request{
			method:     http.MethodPost,
			path:       "/bookings",
			body:       map[string]any{"ticketId": t.ID.String(), "quantity": quantity},
			idempotent: true,
		}, &out)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.InsertedID, nil
}

func (c *Client) MyBookings(ctx context.Context) ([]BookingRow, error) {
	const op = "dashboard.Client.MyBookings"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []BookingRow
	if err := c.do(ctx, request{method: http.MethodGet, path: "/bookings/user/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ConfirmFunc completes the card step with the payment provider for the
// intent behind clientSecret and returns its transaction ID.
type ConfirmFunc func(ctx context.Context, clientSecret string) (transactionID string, err error)

type PaymentResult struct {
	TransactionID string
	BookingID     string
}

// Pay charges an accepted booking and records the payment. When the charge
// succeeds but recording fails the error is a *PaymentNotRecordedError and
// nothing is retried.
func (c *Client) Pay(ctx context.Context, b BookingRow, confirm ConfirmFunc) (*PaymentResult, error) {
	const op = "dashboard.Client.Pay"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if b.Status != domain.BookingAccepted {
		return nil, fmt.Errorf("%s: %w", op, domain.InvalidStateError{
			Entity: "booking", Op: "pay", State: string(b.Status), Reason: "vendor has not accepted",
		})
	}
	if c.departed(b.DepartureDate, b.DepartureTime) {
		return nil, fmt.Errorf("%s: %w", op, domain.InvalidStateError{
			Entity: "booking", Op: "pay", State: string(b.Status), Reason: "departure has passed",
		})
	}
	if b.TotalPrice < c.minAmount {
		return nil, fmt.Errorf("%s: %w", op, domain.ValidationError{
			Field: "price", Reason: fmt.Sprintf("below minimum payable amount %d", c.minAmount),
		})
	}

	var res *PaymentResult
	err := c.guard.Do(func() error {
		var err error
		res, err = c.pay(ctx, b, confirm)
		return err
	})
	if err != nil {
		var notRecorded *PaymentNotRecordedError
		if errors.As(err, &notRecorded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (c *Client) pay(ctx context.Context, b BookingRow, confirm ConfirmFunc) (*PaymentResult, error) {
	var intent struct {
		ClientSecret string `json:"clientSecret"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/create-payment-intent",
		body:   map[string]any{"price": b.TotalPrice, "bookingId": b.ID.String()},
	}, &intent)
	if err != nil {
		return nil, err
	}

	txID, err := confirm(ctx, intent.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	err = c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/payments",
		body:       map[string]string{"transactionId": txID, "bookingId": b.ID.String()},
		idempotent: true,
	}, nil)
	if err != nil {
		c.logger.Error("payment charged but not recorded", "transaction_id", txID, "booking_id", b.ID.String(), "error", err)
		return nil, &PaymentNotRecordedError{TransactionID: txID, Err: err}
	}

	return &PaymentResult{TransactionID: txID, BookingID: b.ID.String()}, nil
}

func (c *Client) History(ctx context.Context) ([]domain.Payment, error) {
	const op = "dashboard.Client.History"

	if err := c.requireSession(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []domain.Payment
	if err := c.do(ctx, request{method: http.MethodGet, path: "/payments/user/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Receipt downloads the PDF e-ticket of a payment.
func (c *Client) Receipt(ctx context.Context, transactionID string) ([]byte, error) {
	const op = "dashboard.Client.Receipt"

	b, err := c.doRaw(ctx, request{method: http.MethodGet, path: "/payments/" + url.PathEscape(transactionID) + "/receipt"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}
