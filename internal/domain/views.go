package domain

// BookingAction is what the customer's booking card offers.
type BookingAction string

const (
	ActionWaiting   BookingAction = "waiting"
	ActionPayNow    BookingAction = "pay_now"
	ActionDeparted  BookingAction = "departed"
	ActionCancelled BookingAction = "cancelled"
	ActionPaid      BookingAction = "paid"
)

// ActionFor derives the customer action from booking status and expiry.
func ActionFor(status BookingStatus, expired bool) BookingAction {
	switch status {
	case BookingPending:
		return ActionWaiting
	case BookingAccepted:
		if expired {
			return ActionDeparted
		}
		return ActionPayNow
	case BookingRejected:
		return ActionCancelled
	case BookingPaid:
		return ActionPaid
	}
	return ActionWaiting
}

// Enabled reports whether the action is a live control.
func (a BookingAction) Enabled() bool {
	return a == ActionPayNow
}

// UserAction is a button on the admin's user management table.
type UserAction string

const (
	UserActionMakeVendor UserAction = "make_vendor"
	UserActionMakeAdmin  UserAction = "make_admin"
	UserActionMarkFraud  UserAction = "mark_fraud"
)

// UserActions lists the actions actor may take on target. An empty result
// renders the "no action" indicator.
func UserActions(actor, target User) []UserAction {
	if !CanSeeActionButtons(actor, target) {
		return nil
	}

	var out []UserAction
	if CanPromote(actor, target, RoleVendor) == nil {
		out = append(out, UserActionMakeVendor)
	}
	if CanPromote(actor, target, RoleAdmin) == nil {
		out = append(out, UserActionMakeAdmin)
	}
	if CanMarkFraud(actor, target) == nil {
		out = append(out, UserActionMarkFraud)
	}
	return out
}

// TicketReviewable reports whether the admin approve/reject buttons are
// enabled for the ticket.
func TicketReviewable(t *Ticket) bool {
	return t.Status == TicketPending
}

// BookingDecidable reports whether the vendor accept/reject buttons are
// enabled for the booking.
func BookingDecidable(b *Booking) bool {
	return b.Status == BookingPending
}
