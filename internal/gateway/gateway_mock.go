package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an in-memory gateway for tests. Intents it creates are reported as
// succeeded by Confirm unless listed in Failed.
type Mock struct {
	mu      sync.Mutex
	Intents map[string]Confirmation
	Failed  map[string]bool
	seq     int
}

func (m *Mock) CreateIntent(_ context.Context, amount int64, _ string, metadata map[string]string) (*Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Intents == nil {
		m.Intents = make(map[string]Confirmation)
	}

	m.seq++
	id := fmt.Sprintf("pi_mock_%d", m.seq)
	m.Intents[id] = Confirmation{TransactionID: id, Amount: amount, Succeeded: true, Metadata: metadata}

	return &Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (m *Mock) Confirm(_ context.Context, transactionID string) (*Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Intents[transactionID]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", transactionID)
	}
	if m.Failed[transactionID] {
		c.Succeeded = false
	}

	return &c, nil
}

// Fail makes later confirmations of transactionID report a declined charge.
func (m *Mock) Fail(transactionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Failed == nil {
		m.Failed = make(map[string]bool)
	}
	m.Failed[transactionID] = true
}
