package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type ticks struct {
	mu  sync.Mutex
	got []domain.Remaining
	ch  chan struct{}
}

func newTicks() *ticks {
	return &ticks{ch: make(chan struct{}, 64)}
}

func (tk *ticks) record(r domain.Remaining) {
	tk.mu.Lock()
	tk.got = append(tk.got, r)
	tk.mu.Unlock()

	select {
	case tk.ch <- struct{}{}:
	default:
	}
}

func (tk *ticks) wait(t *testing.T) {
	t.Helper()

	select {
	case <-tk.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick")
	}
}

func (tk *ticks) snapshot() []domain.Remaining {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return append([]domain.Remaining(nil), tk.got...)
}

func TestCountdown_TicksUntilStopped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	departure := now.Add(26*time.Hour + 3*time.Minute + 4*time.Second)

	tk := newTicks()
	cd := NewCountdown(departure, clk, tk.record)
	cd.interval = 5 * time.Millisecond

	cd.Start(context.Background())
	cd.Start(context.Background())
	tk.wait(t)

	clk.Advance(time.Hour)
	tk.wait(t)
	tk.wait(t)

	cd.Stop()
	cd.Stop()

	got := tk.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, domain.Remaining{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}, got[0])
	assert.False(t, got[len(got)-1].Expired)

	select {
	case <-cd.Done():
	default:
		t.Fatal("countdown goroutine still running after Stop")
	}
}

func TestCountdown_StopsItselfAtDeparture(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)

	tk := newTicks()
	cd := NewCountdown(now.Add(-time.Minute), clk, tk.record)
	cd.interval = 5 * time.Millisecond

	cd.Start(context.Background())

	select {
	case <-cd.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not stop at departure")
	}

	got := tk.snapshot()
	require.Len(t, got, 1)
	assert.True(t, got[0].Expired)

	cd.Stop()
}

func TestCountdown_CancelledByContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	tk := newTicks()
	cd := NewCountdown(now.Add(time.Hour), clock.NewFake(now), tk.record)

	ctx, cancel := context.WithCancel(context.Background())
	cd.Start(ctx)
	tk.wait(t)
	cancel()

	select {
	case <-cd.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown ignored context cancellation")
	}
}

func TestCountdown_StopBeforeStart(t *testing.T) {
	cd := NewCountdown(time.Now(), nil, func(domain.Remaining) {})
	cd.Stop()
	assert.Nil(t, cd.Done())
}
