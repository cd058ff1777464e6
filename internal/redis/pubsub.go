package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/redis/go-redis/v9"
)

// EventsPubSub broadcasts domain events to every instance over a Redis
// channel.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelDomainEvents(),
	}
}

func (p *EventsPubSub) Publish(ctx context.Context, e events.Event) error {
	const op = "redisx.EventsPubSub.Publish"

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Subscribe calls handler for every event received until ctx is cancelled.
// ready, when non-nil, is closed once the subscription is active.
func (p *EventsPubSub) Subscribe(
	ctx context.Context,
	ready chan<- struct{},
	handler func(ctx context.Context, e events.Event),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redisx.EventsPubSub.Subscribe:%w", err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var e events.Event
			if err := json.Unmarshal([]byte(m.Payload), &e); err == nil && e.Type != "" {
				handler(ctx, e)
			}
		}
	}
}
