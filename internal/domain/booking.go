package domain

import "time"

// NewBooking creates a pending booking for quantity seats of t.
func NewBooking(t *Ticket, customer User, quantity int, now time.Time) (*Booking, error) {
	if !customer.Role.CanBook() {
		return nil, ForbiddenError{Reason: "only customers can book tickets"}
	}
	if customer.ID == t.VendorID {
		return nil, ForbiddenError{Reason: "cannot book own ticket"}
	}
	if !t.Public() {
		return nil, InvalidStateError{Entity: "ticket", Op: "book", State: string(t.Status), Reason: "not available for booking"}
	}

	expired, err := IsExpired(t.DepartureDate, t.DepartureTime, now)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, InvalidStateError{Entity: "ticket", Op: "book", State: string(t.Status), Reason: "already departed"}
	}

	total, err := ComputeTotal(t.Price, quantity, t.Quantity)
	if err != nil {
		return nil, err
	}

	return &Booking{
		TicketID:      t.ID,
		UserID:        customer.ID,
		VendorID:      t.VendorID,
		TicketTitle:   t.Title,
		From:          t.From,
		To:            t.To,
		TransportType: t.TransportType,
		Image:         t.Image,
		UserEmail:     customer.Email,
		UserName:      customer.Name,
		VendorEmail:   t.VendorEmail,
		Quantity:      quantity,
		UnitPrice:     t.Price,
		TotalPrice:    total,
		Status:        BookingPending,
		DepartureDate: t.DepartureDate,
		DepartureTime: t.DepartureTime,
		CreatedAt:     now,
	}, nil
}

// Decide records the vendor's accept or reject decision. It is single-shot:
// only pending bookings can be decided.
func (b *Booking) Decide(actor User, outcome BookingStatus) error {
	if outcome != BookingAccepted && outcome != BookingRejected {
		return ValidationError{Field: "status", Reason: "must be accepted or rejected"}
	}
	if !actor.Role.CanSell() {
		return ForbiddenError{Reason: "vendor privileges required"}
	}
	if actor.ID != b.VendorID {
		return ForbiddenError{Reason: "booking belongs to another vendor"}
	}
	if b.Status != BookingPending {
		return InvalidStateError{Entity: "booking", Op: "decide", State: string(b.Status), Reason: "already decided"}
	}
	b.Status = outcome
	return nil
}

// Expired reports whether the booking's departure snapshot has passed.
func (b *Booking) Expired(now time.Time) (bool, error) {
	return IsExpired(b.DepartureDate, b.DepartureTime, now)
}

// CheckPayable reports whether payer may pay amount for the booking now.
func (b *Booking) CheckPayable(payer User, amount, minAmount int64, now time.Time) error {
	if payer.ID != b.UserID {
		return ForbiddenError{Reason: "booking belongs to another customer"}
	}

	switch b.Status {
	case BookingAccepted:
	case BookingPaid:
		return InvalidStateError{Entity: "booking", Op: "pay", State: string(b.Status), Reason: "already paid"}
	case BookingPending, BookingRejected:
		return InvalidStateError{Entity: "booking", Op: "pay", State: string(b.Status), Reason: "vendor has not accepted"}
	default:
		return InvalidStateError{Entity: "booking", Op: "pay", State: string(b.Status)}
	}

	expired, err := b.Expired(now)
	if err != nil {
		return err
	}
	if expired {
		return InvalidStateError{Entity: "booking", Op: "pay", State: string(b.Status), Reason: "departure has passed"}
	}

	if amount != b.TotalPrice {
		return ValidationError{Field: "price", Reason: "does not match booking total"}
	}
	if amount < minAmount {
		return ValidationError{Field: "price", Reason: "below minimum payable amount"}
	}

	return nil
}

// Pay marks an accepted booking paid and returns the single Payment record
// for it.
func (b *Booking) Pay(payer User, transactionID string, minAmount int64, now time.Time) (*Payment, error) {
	if transactionID == "" {
		return nil, ValidationError{Field: "transactionId", Reason: "required"}
	}
	if err := b.CheckPayable(payer, b.TotalPrice, minAmount, now); err != nil {
		return nil, err
	}

	b.Status = BookingPaid

	return &Payment{
		TransactionID: transactionID,
		BookingID:     b.ID,
		TicketID:      b.TicketID,
		UserID:        b.UserID,
		VendorID:      b.VendorID,
		TicketTitle:   b.TicketTitle,
		UserEmail:     b.UserEmail,
		VendorEmail:   b.VendorEmail,
		Amount:        b.TotalPrice,
		Quantity:      b.Quantity,
		Status:        PaymentPaid,
		CreatedAt:     now,
	}, nil
}
