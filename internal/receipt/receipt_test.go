package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	b := domain.Booking{
		ID:            uuid.New(),
		TicketTitle:   "Dhaka Express",
		From:          "Dhaka",
		To:            "Chittagong",
		TransportType: domain.TransportTrain,
		DepartureDate: "2099-01-01",
		DepartureTime: "10:00 AM",
	}
	p := domain.Payment{
		TransactionID: "pi_123",
		BookingID:     b.ID,
		Amount:        1500,
		Quantity:      3,
		UserEmail:     "ana@example.com",
		VendorEmail:   "bus@example.com",
		CreatedAt:     time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	out, err := Render(p, b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
