package httpgin

import (
	"encoding/json"
	"math"

	"github.com/kirinyoku/tixmarket/internal/domain"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

type TokenRequest struct {
	Email string `json:"email" binding:"required"`
	// IDToken is the identity provider's signed token for Email.
	IDToken string `json:"idToken"`
}

type TicketRequest struct {
	Title         string      `json:"title"`
	From          string      `json:"from"`
	To            string      `json:"to"`
	TransportType string      `json:"transportType"`
	Price         json.Number `json:"price"`
	Quantity      int         `json:"quantity"`
	DepartureDate string      `json:"departureDate"`
	DepartureTime string      `json:"departureTime"`
	Description   string      `json:"description"`
	Perks         []string    `json:"perks"`
	Image         string      `json:"image"`
}

func (r TicketRequest) draft() (domain.TicketDraft, error) {
	price, err := wholeAmount("price", r.Price)
	if err != nil {
		return domain.TicketDraft{}, err
	}

	return domain.TicketDraft{
		Title:         r.Title,
		From:          r.From,
		To:            r.To,
		TransportType: domain.TransportType(r.TransportType),
		Price:         price,
		Quantity:      r.Quantity,
		DepartureDate: r.DepartureDate,
		DepartureTime: r.DepartureTime,
		Description:   r.Description,
		Perks:         r.Perks,
		Image:         r.Image,
	}, nil
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AdvertiseRequest struct {
	IsAdvertised *bool `json:"isAdvertised" binding:"required"`
}

type BookingRequest struct {
	TicketID string      `json:"ticketId" binding:"required"`
	Quantity json.Number `json:"quantity" binding:"required"`
}

type PaymentIntentRequest struct {
	Price     json.Number `json:"price" binding:"required"`
	BookingID string      `json:"bookingId"`
}

type PaymentRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	BookingID     string `json:"bookingId" binding:"required"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RoleResponse struct {
	Role domain.Role `json:"role"`
}

type RegisterResponse struct {
	InsertedID string `json:"insertedId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type InsertedResponse struct {
	InsertedID string `json:"insertedId"`
}

type ModifiedResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeletedResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

type AdvertiseResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
	LimitReached  bool  `json:"limitReached"`
}

type ClientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type PaymentResponse struct {
	InsertResult InsertedResponse `json:"insertResult"`
	UpdateResult ModifiedResponse `json:"updateResult"`
}

type FraudResponse struct {
	UserResult   ModifiedResponse `json:"userResult"`
	TicketResult ModifiedResponse `json:"ticketResult"`
}

// wholeAmount parses a JSON number that must hold a whole currency amount.
// 500 and 500.0 are accepted, 500.5 is not.
func wholeAmount(field string, n json.Number) (int64, error) {
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, domain.ValidationError{Field: field, Reason: "must be a whole amount"}
	}
	return int64(f), nil
}
