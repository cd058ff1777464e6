package query

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository/memory"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service/servicetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *redisrepo.Cache {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return redisrepo.New(rdb)
}

func seed(t *testing.T, store *memory.Store) domain.User {
	t.Helper()

	vendor := servicetest.SeedUser(t, store, domain.RoleVendor, "vendor@example.com")
	prices := []int64{300, 900, 500, 700}
	types := []domain.TransportType{domain.TransportBus, domain.TransportTrain, domain.TransportBus, domain.TransportFlight}
	for i := range prices {
		servicetest.SeedTicket(t, store, vendor, domain.TicketApproved, func(tk *domain.Ticket) {
			tk.Price = prices[i]
			tk.TransportType = types[i]
		})
	}
	servicetest.SeedTicket(t, store, vendor, domain.TicketPending)
	servicetest.SeedTicket(t, store, vendor, domain.TicketRejected)

	return vendor
}

func TestSearch(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := New(store, nil, Config{})
	ctx := context.Background()

	res, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total, "only approved tickets are public")
	assert.Equal(t, 1, res.TotalPages)

	res, err = svc.Search(ctx, SearchParams{Type: "bus", Sort: "desc"})
	require.NoError(t, err)
	require.Len(t, res.Tickets, 2)
	assert.Equal(t, int64(500), res.Tickets[0].Price)
	assert.Equal(t, int64(300), res.Tickets[1].Price)

	res, err = svc.Search(ctx, SearchParams{Sort: "asc", Limit: 3, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, int64(900), res.Tickets[0].Price)

	res, err = svc.Search(ctx, SearchParams{From: "dhaka", To: "SYL"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)

	res, err = svc.Search(ctx, SearchParams{From: "Chittagong"})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Tickets)
}

func TestSearch_Validation(t *testing.T) {
	svc := New(memory.NewStore(), nil, Config{})

	var ve domain.ValidationError
	_, err := svc.Search(context.Background(), SearchParams{Type: "ship"})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Search(context.Background(), SearchParams{Sort: "cheapest"})
	assert.ErrorAs(t, err, &ve)
}

func TestSearch_CacheIsInvalidatedByGeneration(t *testing.T) {
	store := memory.NewStore()
	vendor := seed(t, store)
	cache := newCache(t)
	svc := New(store, cache, Config{})
	ctx := context.Background()

	first, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, first.Total)

	servicetest.SeedTicket(t, store, vendor, domain.TicketApproved)

	cachedRes, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, cachedRes.Total, "served from cache")

	require.NoError(t, cache.InvalidateListings(ctx))

	fresh, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Total)
}

func TestLatestAndAdvertised(t *testing.T) {
	store := memory.NewStore()
	vendor := seed(t, store)
	for i := 0; i < 4; i++ {
		servicetest.SeedTicket(t, store, vendor, domain.TicketApproved)
	}
	servicetest.SeedTicket(t, store, vendor, domain.TicketApproved, func(tk *domain.Ticket) {
		tk.IsAdvertised = true
	})
	servicetest.SeedTicket(t, store, vendor, domain.TicketApproved, func(tk *domain.Ticket) {
		tk.IsAdvertised = true
		tk.Hidden = true
	})

	svc := New(store, newCache(t), Config{})
	ctx := context.Background()

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, LatestCount)

	ads, err := svc.Advertised(ctx)
	require.NoError(t, err)
	assert.Len(t, ads, 1, "hidden tickets are not featured")
}

func TestVendorStats(t *testing.T) {
	store := memory.NewStore()
	vendor := seed(t, store)
	customer := servicetest.SeedUser(t, store, domain.RoleUser, "user@example.com")
	svc := New(store, newCache(t), Config{})
	ctx := context.Background()

	st, err := svc.VendorStats(ctx, vendor, "vendor@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(6), st.TotalAdded)
	assert.Zero(t, st.TotalRevenue)

	_, err = svc.VendorStats(ctx, customer, "user@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.VendorStats(ctx, customer, "vendor@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
