package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service"
)

// @Summary   Create payment intent
// @Security  BearerAuth
// @Param     req  body  PaymentIntentRequest  true  "amount and optional booking"
// @Success   200  {object}  ClientSecretResponse
// @Failure   400  {object}  ErrorResponse  "below minimum payable amount"
// @Failure   503  {object}  ErrorResponse  "gateway not configured"
// @Router    /create-payment-intent [post]
func handleCreatePaymentIntent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		price, err := wholeAmount("price", req.Price)
		if err != nil {
			respondErr(c, err)
			return
		}

		var bookingID *uuid.UUID
		if req.BookingID != "" {
			id, err := uuid.Parse(req.BookingID)
			if err != nil {
				badRequest(c, "invalid bookingId")
				return
			}
			bookingID = &id
		}

		secret, err := svcs.Orders.CreateIntent(c.Request.Context(), currentUser(c), price, bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ClientSecretResponse{ClientSecret: secret})
	}
}

// @Summary   Record payment (idempotent)
// @Security  BearerAuth
// @Param     req  body  PaymentRequest  true  "gateway transaction and booking"
// @Success   201  {object}  PaymentResponse
// @Failure   402  {object}  ErrorResponse  "payment not confirmed"
// @Failure   409  {object}  ErrorResponse  "booking not payable / already paid"
// @Failure   422  {object}  ErrorResponse  "idempotency key reused"
// @Router    /payments [post]
func handleRecordPayment(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		bookingID, err := uuid.Parse(req.BookingID)
		if err != nil {
			badRequest(c, "invalid bookingId")
			return
		}

		actor := currentUser(c)
		idempotent(c, idem, "payment", actor.ID.String(), req, func() (int, any, error) {
			res, err := svcs.Orders.Record(c.Request.Context(), actor, req.TransactionID, bookingID)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, PaymentResponse{
				InsertResult: InsertedResponse{InsertedID: res.InsertedID},
				UpdateResult: ModifiedResponse{ModifiedCount: res.Modified},
			}, nil
		})
	}
}

// @Summary   Transaction history
// @Security  BearerAuth
// @Param     email  path  string  true  "customer email"
// @Success   200  {array}  domain.Payment
// @Router    /payments/user/{email} [get]
func handlePaymentHistory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Orders.History(c.Request.Context(), currentUser(c), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Download e-ticket
// @Security  BearerAuth
// @Produce   application/pdf
// @Param     transactionId  path  string  true  "transaction ID"
// @Success   200  {file}  binary
// @Failure   404  {object}  ErrorResponse
// @Router    /payments/{transactionId}/receipt [get]
func handleReceipt(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		txID := c.Param("transactionId")
		pdf, err := svcs.Orders.Receipt(c.Request.Context(), currentUser(c), txID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="ticket-`+txID+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
