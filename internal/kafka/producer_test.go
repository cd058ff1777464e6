package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	e := events.Event{
		Type:     events.PaymentRecorded,
		EntityID: "pi_123",
		Attrs:    map[string]string{"bookingId": "b1"},
		At:       at,
	}

	msg, err := Encode(e)
	require.NoError(t, err)

	assert.Equal(t, []byte("pi_123"), msg.Key)
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "payment.recorded", string(msg.Headers[0].Value))

	var got events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, e, got)
}

func TestNewProducer_Topic(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "tixmarket.events"})
	defer p.Close()

	assert.Equal(t, "tixmarket.events", p.Topic())
}
