// Package servicetest holds fixtures shared by service and transport tests.
package servicetest

import (
	"context"
	"testing"
	"time"

	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/stretchr/testify/require"
)

// Now is the fixed instant service tests run at.
var Now = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func Clock() *clock.Fake {
	return clock.NewFake(Now)
}

func SeedUser(t *testing.T, store repository.Store, role domain.Role, email string) domain.User {
	t.Helper()

	u := domain.User{Email: email, Name: string(role), Role: role, CreatedAt: Now}
	require.NoError(t, store.Users().Create(context.Background(), &u))
	return u
}

func Draft() domain.TicketDraft {
	return domain.TicketDraft{
		Title:         "Dhaka to Sylhet",
		From:          "Dhaka",
		To:            "Sylhet",
		TransportType: domain.TransportBus,
		Price:         500,
		Quantity:      40,
		DepartureDate: "2099-01-01",
		DepartureTime: "10:00 AM",
		Perks:         []string{"AC"},
	}
}

// SeedTicket stores a ticket owned by vendor with the given status.
func SeedTicket(t *testing.T, store repository.Store, vendor domain.User, status domain.TicketStatus, mut ...func(*domain.Ticket)) domain.Ticket {
	t.Helper()

	tk, err := domain.NewTicket(vendor, Draft(), time.UTC, Now)
	require.NoError(t, err)
	tk.Status = status
	for _, m := range mut {
		m(tk)
	}

	require.NoError(t, store.Tickets().Create(context.Background(), tk))
	return *tk
}

// SeedBooking stores a booking of quantity seats of tk by customer with the
// given status.
func SeedBooking(t *testing.T, store repository.Store, tk domain.Ticket, customer domain.User, quantity int, status domain.BookingStatus) domain.Booking {
	t.Helper()

	b, err := domain.NewBooking(&tk, customer, quantity, Now)
	require.NoError(t, err)
	b.Status = status

	require.NoError(t, store.Bookings().Create(context.Background(), b))
	return *b
}
