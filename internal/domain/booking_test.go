package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomer() User {
	return User{ID: uuid.New(), Email: "rider@example.com", Name: "Rider", Role: RoleUser}
}

func newTestBooking(t *testing.T) (*Booking, *Ticket, User) {
	t.Helper()
	tk := newTestTicket(t, TicketApproved)
	customer := testCustomer()

	b, err := NewBooking(tk, customer, 3, time.Now())
	require.NoError(t, err)
	b.ID = uuid.New()

	return b, tk, customer
}

func TestNewBooking(t *testing.T) {
	b, tk, customer := newTestBooking(t)

	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, int64(1500), b.TotalPrice)
	assert.Equal(t, tk.VendorID, b.VendorID)
	assert.Equal(t, customer.ID, b.UserID)
	assert.Equal(t, tk.DepartureDate, b.DepartureDate)
	assert.Equal(t, tk.DepartureTime, b.DepartureTime)
}

func TestNewBooking_Rules(t *testing.T) {
	now := time.Now()

	t.Run("too many seats", func(t *testing.T) {
		tk := newTestTicket(t, TicketApproved)
		_, err := NewBooking(tk, testCustomer(), 41, now)
		var ve ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("pending ticket", func(t *testing.T) {
		tk := newTestTicket(t, TicketPending)
		_, err := NewBooking(tk, testCustomer(), 1, now)
		var ise InvalidStateError
		assert.ErrorAs(t, err, &ise)
	})

	t.Run("hidden ticket", func(t *testing.T) {
		tk := newTestTicket(t, TicketApproved)
		tk.Hide()
		_, err := NewBooking(tk, testCustomer(), 1, now)
		var ise InvalidStateError
		assert.ErrorAs(t, err, &ise)
	})

	t.Run("departed ticket", func(t *testing.T) {
		tk := newTestTicket(t, TicketApproved)
		tk.DepartureDate = "2000-01-01"
		_, err := NewBooking(tk, testCustomer(), 1, now)
		var ise InvalidStateError
		assert.ErrorAs(t, err, &ise)
	})

	t.Run("vendor cannot book", func(t *testing.T) {
		tk := newTestTicket(t, TicketApproved)
		_, err := NewBooking(tk, User{ID: tk.VendorID, Role: RoleVendor}, 1, now)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestBooking_Decide(t *testing.T) {
	b, tk, _ := newTestBooking(t)
	vendor := User{ID: tk.VendorID, Role: RoleVendor}

	assert.ErrorIs(t, b.Decide(User{ID: uuid.New(), Role: RoleVendor}, BookingAccepted), ErrForbidden)
	assert.ErrorIs(t, b.Decide(User{ID: tk.VendorID, Role: RoleFraud}, BookingAccepted), ErrForbidden)

	var ve ValidationError
	assert.ErrorAs(t, b.Decide(vendor, BookingPaid), &ve)
	assert.Equal(t, BookingPending, b.Status)

	require.NoError(t, b.Decide(vendor, BookingAccepted))
	assert.Equal(t, BookingAccepted, b.Status)

	var ise InvalidStateError
	assert.ErrorAs(t, b.Decide(vendor, BookingRejected), &ise)
	assert.Equal(t, BookingAccepted, b.Status, "second decision leaves state unchanged")
}

func TestBooking_RejectedIsTerminal(t *testing.T) {
	b, tk, customer := newTestBooking(t)
	vendor := User{ID: tk.VendorID, Role: RoleVendor}

	require.NoError(t, b.Decide(vendor, BookingRejected))

	var ise InvalidStateError
	assert.ErrorAs(t, b.Decide(vendor, BookingAccepted), &ise)
	_, err := b.Pay(customer, "pi_1", 0, time.Now())
	assert.ErrorAs(t, err, &ise)
	assert.Equal(t, BookingRejected, b.Status)
}

func TestBooking_PendingCannotBePaid(t *testing.T) {
	b, _, customer := newTestBooking(t)

	_, err := b.Pay(customer, "pi_1", 0, time.Now())

	var ise InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, BookingPending, b.Status)
}

func TestBooking_Pay(t *testing.T) {
	b, tk, customer := newTestBooking(t)
	require.NoError(t, b.Decide(User{ID: tk.VendorID, Role: RoleVendor}, BookingAccepted))

	_, err := b.Pay(User{ID: uuid.New(), Role: RoleUser}, "pi_1", 0, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = b.Pay(customer, "", 0, time.Now())
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = b.Pay(customer, "pi_1", 2000, time.Now())
	assert.ErrorAs(t, err, &ve, "below minimum payable amount")
	assert.Equal(t, BookingAccepted, b.Status)

	p, err := b.Pay(customer, "pi_1", 50, time.Now())
	require.NoError(t, err)
	assert.Equal(t, BookingPaid, b.Status)
	assert.Equal(t, b.ID, p.BookingID)
	assert.Equal(t, int64(1500), p.Amount)
	assert.Equal(t, PaymentPaid, p.Status)

	_, err = b.Pay(customer, "pi_2", 50, time.Now())
	var ise InvalidStateError
	assert.ErrorAs(t, err, &ise, "second payment is rejected")
}

func TestBooking_PayAfterDeparture(t *testing.T) {
	b, tk, customer := newTestBooking(t)
	require.NoError(t, b.Decide(User{ID: tk.VendorID, Role: RoleVendor}, BookingAccepted))

	b.DepartureDate = "2001-05-05"

	expired, err := b.Expired(time.Now())
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, ActionDeparted, ActionFor(b.Status, expired))
	assert.False(t, ActionFor(b.Status, expired).Enabled())

	_, err = b.Pay(customer, "pi_1", 0, time.Now())
	var ise InvalidStateError
	assert.ErrorAs(t, err, &ise)
}

func TestBooking_CheckPayableAmountMismatch(t *testing.T) {
	b, tk, customer := newTestBooking(t)
	require.NoError(t, b.Decide(User{ID: tk.VendorID, Role: RoleVendor}, BookingAccepted))

	err := b.CheckPayable(customer, 100, 0, time.Now())

	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestBooking_NoDirectPendingToPaid(t *testing.T) {
	statuses := []BookingStatus{BookingPending, BookingAccepted, BookingRejected, BookingPaid}

	for _, from := range statuses {
		for _, outcome := range []BookingStatus{BookingAccepted, BookingRejected} {
			b, tk, _ := newTestBooking(t)
			b.Status = from

			err := b.Decide(User{ID: tk.VendorID, Role: RoleVendor}, outcome)
			if err == nil {
				assert.Equal(t, BookingPending, from)
				assert.Equal(t, outcome, b.Status)
			} else {
				assert.Equal(t, from, b.Status)
			}
		}

		b, _, customer := newTestBooking(t)
		b.Status = from

		_, err := b.Pay(customer, "pi", 0, time.Now())
		if err == nil {
			assert.Equal(t, BookingAccepted, from, "only accepted bookings can be paid")
		} else {
			assert.Equal(t, from, b.Status)
		}
	}
}
