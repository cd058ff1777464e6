package reservation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/repository/memory"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	allow bool
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, int64, time.Duration, error) {
	l.keys = append(l.keys, key)
	if l.allow {
		return true, 1, 0, nil
	}
	return false, 5, 30 * time.Second, nil
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	events   *events.Recorder
	limiter  *stubLimiter
	vendor   domain.User
	other    domain.User
	customer domain.User
	ticket   domain.Ticket
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := &events.Recorder{}
	lim := &stubLimiter{allow: true}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	vendor := servicetest.SeedUser(t, store, domain.RoleVendor, "vendor@example.com")

	return &fixture{
		svc:      New(store, notify.New(nil, rec, logger), lim, servicetest.Clock(), logger),
		store:    store,
		events:   rec,
		limiter:  lim,
		vendor:   vendor,
		other:    servicetest.SeedUser(t, store, domain.RoleVendor, "other@example.com"),
		customer: servicetest.SeedUser(t, store, domain.RoleUser, "user@example.com"),
		ticket:   servicetest.SeedTicket(t, store, vendor, domain.TicketApproved),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, f.customer, f.ticket.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(1500), b.TotalPrice)
	assert.Equal(t, f.vendor.ID, b.VendorID)
	assert.Equal(t, []string{f.customer.ID.String()}, f.limiter.keys)
	assert.Equal(t, []events.Type{events.BookingCreated}, f.events.Types())

	// Seats are only taken on payment.
	tk, err := f.store.Tickets().Get(ctx, f.ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, tk.Quantity)
}

func TestCreate_QuantityBounds(t *testing.T) {
	f := newFixture(t)

	for _, q := range []int{0, 41} {
		var ve domain.ValidationError
		_, err := f.svc.Create(context.Background(), f.customer, f.ticket.ID, q)
		assert.ErrorAs(t, err, &ve, "quantity %d", q)
	}

	_, err := f.svc.Create(context.Background(), f.customer, f.ticket.ID, 40)
	assert.NoError(t, err)
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.vendor, f.ticket.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Create(ctx, f.customer, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	pending := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)
	var se domain.InvalidStateError
	_, err = f.svc.Create(ctx, f.customer, pending.ID, 1)
	assert.ErrorAs(t, err, &se)

	departed := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketApproved, func(tk *domain.Ticket) {
		tk.DepartureDate = "2029-12-31"
	})
	_, err = f.svc.Create(ctx, f.customer, departed.ID, 1)
	assert.ErrorAs(t, err, &se)
}

func TestCreate_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.allow = false

	_, err := f.svc.Create(context.Background(), f.customer, f.ticket.ID, 1)
	require.ErrorIs(t, err, ErrRateLimited)

	var rle RateLimitedError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30*time.Second, rle.RetryAfter)

	list, err := f.store.Bookings().ListByUser(context.Background(), f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 2, domain.BookingPending)

	_, err := f.svc.Decide(ctx, f.other, b.ID, domain.BookingAccepted)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err := f.svc.Decide(ctx, f.vendor, b.ID, domain.BookingAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var se domain.InvalidStateError
	_, err = f.svc.Decide(ctx, f.vendor, b.ID, domain.BookingRejected)
	assert.ErrorAs(t, err, &se, "decisions are single-shot")

	got, err := f.store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, got.Status)

	var ve domain.ValidationError
	_, err = f.svc.Decide(ctx, f.vendor, b.ID, domain.BookingPaid)
	assert.ErrorAs(t, err, &ve, "vendors cannot mark bookings paid")

	_, err = f.svc.Decide(ctx, f.vendor, uuid.New(), domain.BookingAccepted)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByUser_Actions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	live := servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 1, domain.BookingAccepted)

	departed := live
	departed.ID = uuid.Nil
	departed.DepartureDate = "2029-12-31"
	require.NoError(t, f.store.Bookings().Create(ctx, &departed))

	list, err := f.svc.ListByUser(ctx, f.customer, "USER@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[uuid.UUID]CustomerBooking{}
	for _, b := range list {
		byID[b.ID] = b
	}

	assert.Equal(t, domain.ActionPayNow, byID[live.ID].Action)
	assert.True(t, byID[live.ID].Enabled)
	assert.False(t, byID[live.ID].Remaining.Expired)

	assert.Equal(t, domain.ActionDeparted, byID[departed.ID].Action)
	assert.False(t, byID[departed.ID].Enabled)
	assert.True(t, byID[departed.ID].Remaining.Expired)

	_, err = f.svc.ListByUser(ctx, f.customer, "vendor@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListByVendor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 1, domain.BookingPending)
	servicetest.SeedBooking(t, f.store, f.ticket, f.customer, 1, domain.BookingRejected)

	list, err := f.svc.ListByVendor(ctx, f.vendor, "vendor@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)

	decidable := 0
	for _, b := range list {
		if b.Decidable {
			decidable++
		}
	}
	assert.Equal(t, 1, decidable)

	other, err := f.svc.ListByVendor(ctx, f.other, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.svc.ListByVendor(ctx, f.customer, "user@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
