package orders

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/gateway"
	"github.com/kirinyoku/tixmarket/internal/repository/memory"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	store    *memory.Store
	gateway  *gateway.Mock
	events   *events.Recorder
	vendor   domain.User
	customer domain.User
	admin    domain.User
	ticket   domain.Ticket
	booking  domain.Booking
}

func newFixture(t *testing.T, gw gateway.Gateway) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := &events.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mock, _ := gw.(*gateway.Mock)

	vendor := servicetest.SeedUser(t, store, domain.RoleVendor, "vendor@example.com")
	customer := servicetest.SeedUser(t, store, domain.RoleUser, "user@example.com")
	tk := servicetest.SeedTicket(t, store, vendor, domain.TicketApproved)

	return &fixture{
		svc:      New(store, gw, notify.New(nil, rec, logger), servicetest.Clock(), logger, Config{Currency: "usd", MinAmount: 50}),
		store:    store,
		gateway:  mock,
		events:   rec,
		vendor:   vendor,
		customer: customer,
		admin:    servicetest.SeedUser(t, store, domain.RoleAdmin, "admin@example.com"),
		ticket:   tk,
		booking:  servicetest.SeedBooking(t, store, tk, customer, 3, domain.BookingAccepted),
	}
}

func (f *fixture) intent(t *testing.T, amount int64) string {
	t.Helper()

	in, err := f.gateway.CreateIntent(context.Background(), amount, "usd", map[string]string{"bookingId": f.booking.ID.String()})
	require.NoError(t, err)
	return in.ID
}

func TestCreateIntent(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()

	secret, err := f.svc.CreateIntent(ctx, f.customer, 1500, &f.booking.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, secret)

	var ve domain.ValidationError
	_, err = f.svc.CreateIntent(ctx, f.customer, 10, nil)
	assert.ErrorAs(t, err, &ve, "below minimum")

	_, err = f.svc.CreateIntent(ctx, f.customer, 1400, &f.booking.ID)
	assert.ErrorAs(t, err, &ve, "price must match booking total")

	_, err = f.svc.CreateIntent(ctx, f.vendor, 1500, &f.booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	missing := uuid.New()
	_, err = f.svc.CreateIntent(ctx, f.customer, 1500, &missing)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreateIntent_PendingBooking(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	pending := servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 1, domain.BookingPending)

	var se domain.InvalidStateError
	_, err := f.svc.CreateIntent(context.Background(), f.customer, 500, &pending.ID)
	assert.ErrorAs(t, err, &se)
}

func TestCreateIntent_GatewayDisabled(t *testing.T) {
	f := newFixture(t, gateway.Disabled{})

	_, err := f.svc.CreateIntent(context.Background(), f.customer, 1500, nil)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestRecord_GatewayDisabled(t *testing.T) {
	f := newFixture(t, gateway.Disabled{})
	ctx := context.Background()

	_, err := f.svc.Record(ctx, f.customer, "pi_unverified", f.booking.ID)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)

	b, err := f.store.Bookings().Get(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, b.Status, "nothing charged, nothing paid")

	_, err = f.store.Payments().Get(ctx, "pi_unverified")
	assert.Error(t, err)
	assert.Empty(t, f.events.Types())
}

func TestRecord(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()
	txID := f.intent(t, 1500)

	res, err := f.svc.Record(ctx, f.customer, txID, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, RecordResult{InsertedID: txID, Modified: 1}, res)

	b, err := f.store.Bookings().Get(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, b.Status)

	tk, err := f.store.Tickets().Get(ctx, f.ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 37, tk.Quantity)

	p, err := f.store.Payments().Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), p.Amount)
	assert.Equal(t, domain.PaymentPaid, p.Status)

	assert.Equal(t, []events.Type{events.PaymentRecorded}, f.events.Types())
}

func TestRecord_TwiceCreatesOnePayment(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()

	_, err := f.svc.Record(ctx, f.customer, f.intent(t, 1500), f.booking.ID)
	require.NoError(t, err)

	var se domain.InvalidStateError
	_, err = f.svc.Record(ctx, f.customer, f.intent(t, 1500), f.booking.ID)
	assert.ErrorAs(t, err, &se)

	history, err := f.svc.History(ctx, f.customer, "user@example.com")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	tk, err := f.store.Tickets().Get(ctx, f.ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 37, tk.Quantity, "seats taken once")
}

func TestRecord_GatewayChecks(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()

	failed := f.intent(t, 1500)
	f.gateway.Failed = map[string]bool{failed: true}
	_, err := f.svc.Record(ctx, f.customer, failed, f.booking.ID)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)

	var ve domain.ValidationError
	_, err = f.svc.Record(ctx, f.customer, f.intent(t, 1000), f.booking.ID)
	assert.ErrorAs(t, err, &ve, "amount mismatch")

	_, err = f.svc.Record(ctx, f.customer, "pi_unknown", f.booking.ID)
	assert.Error(t, err)

	b, err := f.store.Bookings().Get(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, b.Status)
}

func TestRecord_NotAccepted(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()
	pending := servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 1, domain.BookingPending)

	in, err := f.gateway.CreateIntent(ctx, 500, "usd", map[string]string{"bookingId": pending.ID.String()})
	require.NoError(t, err)

	var se domain.InvalidStateError
	_, err = f.svc.Record(ctx, f.customer, in.ID, pending.ID)
	assert.ErrorAs(t, err, &se, "pending bookings cannot jump to paid")

	got, err := f.store.Bookings().Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestRecord_SoldOut(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()

	tk, err := f.store.Tickets().Get(ctx, f.ticket.ID)
	require.NoError(t, err)
	tk.Quantity = 2
	require.NoError(t, f.store.Tickets().Save(ctx, tk))

	txID := f.intent(t, 1500)

	var se domain.InvalidStateError
	_, err = f.svc.Record(ctx, f.customer, txID, f.booking.ID)
	require.ErrorAs(t, err, &se)

	b, err := f.store.Bookings().Get(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, b.Status, "rolled back")

	_, err = f.store.Payments().Get(ctx, txID)
	assert.Error(t, err)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t, &gateway.Mock{})
	ctx := context.Background()
	txID := f.intent(t, 1500)

	_, err := f.svc.Record(ctx, f.customer, txID, f.booking.ID)
	require.NoError(t, err)

	pdf, err := f.svc.Receipt(ctx, f.customer, txID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, err = f.svc.Receipt(ctx, f.admin, txID)
	assert.NoError(t, err)

	_, err = f.svc.Receipt(ctx, f.vendor, txID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Receipt(ctx, f.customer, "pi_missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestHistory_OwnOnly(t *testing.T) {
	f := newFixture(t, gateway.Disabled{})

	_, err := f.svc.History(context.Background(), f.customer, "admin@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
