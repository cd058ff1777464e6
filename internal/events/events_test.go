package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ err error }

func (f failing) Publish(context.Context, Event) error { return f.err }

func TestFanout_PublishesToAllAndJoinsErrors(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	boom := errors.New("boom")

	f := Fanout{a, failing{err: boom}, nil, b}
	err := f.Publish(context.Background(), Event{Type: TicketCreated, EntityID: "t1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Type{TicketCreated}, a.Types())
	assert.Equal(t, []Type{TicketCreated}, b.Types())
}

func TestAffectsListings(t *testing.T) {
	assert.True(t, Event{Type: TicketAdvertised}.AffectsListings())
	assert.True(t, Event{Type: VendorMarkedFraud}.AffectsListings())
	assert.True(t, Event{Type: PaymentRecorded}.AffectsListings())
	assert.False(t, Event{Type: BookingDecided}.AffectsListings())
	assert.False(t, Event{Type: "unknown"}.AffectsListings())
}
