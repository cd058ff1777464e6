package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

// Countdown reports the time left until a departure once per interval.
// It stops on its own after reporting an expired departure.
type Countdown struct {
	departure time.Time
	clock     clock.Clock
	interval  time.Duration
	onTick    func(domain.Remaining)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCountdown(departure time.Time, clk clock.Clock, onTick func(domain.Remaining)) *Countdown {
	if clk == nil {
		clk = clock.Real(departure.Location())
	}
	return &Countdown{
		departure: departure,
		clock:     clk,
		interval:  time.Second,
		onTick:    onTick,
	}
}

// Start begins ticking in a new goroutine. The first tick is immediate.
// Calling Start on a running countdown does nothing.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		select {
		case <-c.done:
		default:
			return
		}
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

func (c *Countdown) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		r := domain.RemainingUntil(c.departure, c.clock.Now())
		c.onTick(r)
		if r.Expired {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the countdown and waits for its goroutine to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the running countdown exits. It is nil before Start.
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
