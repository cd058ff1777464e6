package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/repository/memory"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *Service
	store  *memory.Store
	events *events.Recorder
	admin  domain.User
	vendor domain.User
	user   domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := &events.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		svc:    New(store, notify.New(nil, rec, logger), servicetest.Clock(), logger),
		store:  store,
		events: rec,
		admin:  servicetest.SeedUser(t, store, domain.RoleAdmin, "admin@example.com"),
		vendor: servicetest.SeedUser(t, store, domain.RoleVendor, "vendor@example.com"),
		user:   servicetest.SeedUser(t, store, domain.RoleUser, "user@example.com"),
	}
}

func TestSetTicketStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)

	n, err := f.svc.SetTicketStatus(ctx, f.admin, tk.ID, domain.TicketApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.store.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketApproved, got.Status)
	assert.Equal(t, []events.Type{events.TicketStatusChanged}, f.events.Types())

	var se domain.InvalidStateError
	_, err = f.svc.SetTicketStatus(ctx, f.admin, tk.ID, domain.TicketRejected)
	assert.ErrorAs(t, err, &se, "approved tickets cannot be rejected")
}

func TestSetTicketStatus_RejectedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)

	_, err := f.svc.SetTicketStatus(ctx, f.admin, tk.ID, domain.TicketRejected)
	require.NoError(t, err)

	var se domain.InvalidStateError
	_, err = f.svc.SetTicketStatus(ctx, f.admin, tk.ID, domain.TicketApproved)
	assert.ErrorAs(t, err, &se)

	_, err = f.svc.SetAdvertised(ctx, f.admin, tk.ID, true)
	assert.ErrorAs(t, err, &se)
}

func TestSetTicketStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)

	_, err := f.svc.SetTicketStatus(ctx, f.vendor, tk.ID, domain.TicketApproved)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.SetTicketStatus(ctx, f.admin, uuid.New(), domain.TicketApproved)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	var ve domain.ValidationError
	_, err = f.svc.SetTicketStatus(ctx, f.admin, tk.ID, domain.TicketPending)
	assert.ErrorAs(t, err, &ve)
}

func TestSetAdvertised_Limit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < domain.MaxAdvertised+1; i++ {
		ids = append(ids, servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketApproved).ID)
	}

	for _, id := range ids[:domain.MaxAdvertised] {
		res, err := f.svc.SetAdvertised(ctx, f.admin, id, true)
		require.NoError(t, err)
		assert.Equal(t, AdvertiseResult{Modified: 1}, res)
	}

	res, err := f.svc.SetAdvertised(ctx, f.admin, ids[domain.MaxAdvertised], true)
	require.NoError(t, err)
	assert.Equal(t, AdvertiseResult{LimitReached: true}, res)

	count, err := f.store.Tickets().CountAdvertised(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAdvertised, count)

	// Freeing a slot lets the next ticket in.
	res, err = f.svc.SetAdvertised(ctx, f.admin, ids[0], false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)

	res, err = f.svc.SetAdvertised(ctx, f.admin, ids[domain.MaxAdvertised], true)
	require.NoError(t, err)
	assert.Equal(t, AdvertiseResult{Modified: 1}, res)
}

func TestSetAdvertised_RedundantToggleIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketApproved)

	res, err := f.svc.SetAdvertised(ctx, f.admin, tk.ID, false)
	require.NoError(t, err)
	assert.Equal(t, AdvertiseResult{}, res)
	assert.Empty(t, f.events.Events)
}

func TestSetAdvertised_PendingRejected(t *testing.T) {
	f := newFixture(t)
	tk := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)

	var se domain.InvalidStateError
	_, err := f.svc.SetAdvertised(context.Background(), f.admin, tk.ID, true)
	assert.ErrorAs(t, err, &se)
}

func TestPromote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.Promote(ctx, f.admin, f.user.ID, domain.RoleVendor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.store.Users().Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVendor, got.Role)

	_, err = f.svc.Promote(ctx, f.admin, f.admin.ID, domain.RoleVendor)
	assert.ErrorIs(t, err, domain.ErrForbidden, "self action")

	_, err = f.svc.Promote(ctx, f.vendor, f.user.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Promote(ctx, f.admin, uuid.New(), domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMarkFraud(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	advertised := servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketApproved, func(tk *domain.Ticket) {
		tk.IsAdvertised = true
	})
	servicetest.SeedTicket(t, f.store, f.vendor, domain.TicketPending)

	res, err := f.svc.MarkFraud(ctx, f.admin, f.vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, FraudResult{UserModified: 1, TicketsModified: 2}, res)

	got, err := f.store.Tickets().Get(ctx, advertised.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden)
	assert.False(t, got.IsAdvertised)

	u, err := f.store.Users().Get(ctx, f.vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFraud, u.Role)

	_, err = f.svc.Promote(ctx, f.admin, f.vendor.ID, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden, "fraud is terminal")

	assert.Contains(t, f.events.Types(), events.VendorMarkedFraud)
}

func TestMarkFraud_OnlyVendors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var se domain.InvalidStateError
	_, err := f.svc.MarkFraud(ctx, f.admin, f.user.ID)
	assert.ErrorAs(t, err, &se)

	u, err := f.store.Users().Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)

	rows, err := f.svc.ListUsers(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byEmail := map[string][]domain.UserAction{}
	for _, r := range rows {
		byEmail[r.Email] = r.Actions
	}
	assert.Empty(t, byEmail["admin@example.com"])
	assert.Equal(t, []domain.UserAction{domain.UserActionMakeVendor, domain.UserActionMakeAdmin}, byEmail["user@example.com"])
	assert.Equal(t, []domain.UserAction{domain.UserActionMakeAdmin, domain.UserActionMarkFraud}, byEmail["vendor@example.com"])

	_, err = f.svc.ListUsers(context.Background(), f.user)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
