package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/tixmarket/internal/events"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{}

func (failing) Publish(context.Context, events.Event) error { return errors.New("down") }

func TestNotify_InvalidatesAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := redisrepo.New(rdb)
	rec := &events.Recorder{}
	n := New(cache, rec, nil)
	ctx := context.Background()

	mr.Set("tixmarket:v1:stats:vendor:v1", "{}")

	n.Notify(ctx, events.Event{Type: events.PaymentRecorded, EntityID: "pi_1"}, "v1")

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	assert.False(t, mr.Exists("tixmarket:v1:stats:vendor:v1"))
	assert.Equal(t, []events.Type{events.PaymentRecorded}, rec.Types())

	n.Notify(ctx, events.Event{Type: events.BookingDecided})
	gen, err = cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen, "booking decisions do not touch listings")
}

func TestNotify_ToleratesMissingDepsAndFailures(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil, nil, nil).Notify(context.Background(), events.Event{Type: events.TicketCreated})
		New(nil, failing{}, nil).Notify(context.Background(), events.Event{Type: events.TicketCreated})

		var n *Notifier
		n.Notify(context.Background(), events.Event{Type: events.TicketCreated})
	})
}
