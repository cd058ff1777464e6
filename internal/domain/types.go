package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketApproved TicketStatus = "approved"
	TicketRejected TicketStatus = "rejected"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
	BookingPaid     BookingStatus = "paid"
)

type TransportType string

const (
	TransportBus    TransportType = "bus"
	TransportTrain  TransportType = "train"
	TransportLaunch TransportType = "launch"
	TransportFlight TransportType = "flight"
)

func (t TransportType) Valid() bool {
	switch t {
	case TransportBus, TransportTrain, TransportLaunch, TransportFlight:
		return true
	}
	return false
}

type PaymentStatus string

const PaymentPaid PaymentStatus = "paid"

// MaxAdvertised is the number of featured slots on the landing page.
const MaxAdvertised = 6

// MaxTicketPrice caps the unit price in whole currency units.
const MaxTicketPrice int64 = 1_000_000_000

type Ticket struct {
	ID            uuid.UUID     `json:"_id"`
	Title         string        `json:"title"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	TransportType TransportType `json:"transportType"`
	Price         int64         `json:"price"`
	Quantity      int           `json:"quantity"`
	DepartureDate string        `json:"departureDate"`
	DepartureTime string        `json:"departureTime"`
	Description   string        `json:"description"`
	Perks         []string      `json:"perks"`
	Image         string        `json:"image"`
	Status        TicketStatus  `json:"status"`
	IsAdvertised  bool          `json:"isAdvertised"`
	Hidden        bool          `json:"hidden"`
	VendorID      uuid.UUID     `json:"vendorId"`
	VendorEmail   string        `json:"vendorEmail"`
	VendorName    string        `json:"vendorName"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Booking struct {
	ID            uuid.UUID     `json:"_id"`
	TicketID      uuid.UUID     `json:"ticketId"`
	UserID        uuid.UUID     `json:"userId"`
	VendorID      uuid.UUID     `json:"vendorId"`
	TicketTitle   string        `json:"ticketTitle"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	TransportType TransportType `json:"transportType"`
	Image         string        `json:"image"`
	UserEmail     string        `json:"userEmail"`
	UserName      string        `json:"userName"`
	VendorEmail   string        `json:"vendorEmail"`
	Quantity      int           `json:"quantity"`
	UnitPrice     int64         `json:"unitPrice"`
	TotalPrice    int64         `json:"totalPrice"`
	Status        BookingStatus `json:"status"`
	DepartureDate string        `json:"departureDate"`
	DepartureTime string        `json:"departureTime"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Payment struct {
	TransactionID string        `json:"transactionId"`
	BookingID     uuid.UUID     `json:"bookingId"`
	TicketID      uuid.UUID     `json:"ticketId"`
	UserID        uuid.UUID     `json:"userId"`
	VendorID      uuid.UUID     `json:"vendorId"`
	TicketTitle   string        `json:"ticketTitle"`
	UserEmail     string        `json:"userEmail"`
	VendorEmail   string        `json:"vendorEmail"`
	Amount        int64         `json:"price"`
	Quantity      int           `json:"quantity"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"date"`
}

type User struct {
	ID        uuid.UUID `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photoURL"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type TicketFilter struct {
	From      string
	To        string
	Transport TransportType
	// SortPrice is "asc", "desc" or empty for newest first.
	SortPrice string
	Limit     int
	Offset    int
}

type VendorStats struct {
	TotalRevenue    int64 `json:"totalRevenue"`
	TotalSold       int64 `json:"totalSold"`
	TotalAdded      int64 `json:"totalAdded"`
	PendingRequests int64 `json:"pendingRequests"`
}
