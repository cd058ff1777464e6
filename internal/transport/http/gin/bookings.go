package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service"
)

// @Summary   Book ticket (idempotent)
// @Security  BearerAuth
// @Param     req  body  BookingRequest  true  "ticket and whole-number quantity"
// @Header    201  {string}  Idempotency-Key  "echo"
// @Success   201  {object}  InsertedResponse
// @Failure   400  {object}  ErrorResponse
// @Failure   409  {object}  ErrorResponse  "ticket not bookable / idem in progress"
// @Failure   422  {object}  ErrorResponse  "idempotency key reused"
// @Failure   429  {object}  ErrorResponse  "rate limited"
// @Router    /bookings [post]
func handleCreateBooking(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		ticketID, err := uuid.Parse(req.TicketID)
		if err != nil {
			badRequest(c, "invalid ticketId")
			return
		}
		quantity, err := domain.ParseQuantity(req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}

		actor := currentUser(c)
		idempotent(c, idem, "booking", actor.ID.String(), req, func() (int, any, error) {
			b, err := svcs.Reservation.Create(c.Request.Context(), actor, ticketID, quantity)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, InsertedResponse{InsertedID: b.ID.String()}, nil
		})
	}
}

// @Summary   Customer's bookings with their current action
// @Security  BearerAuth
// @Param     email  path  string  true  "customer email"
// @Success   200  {array}  reservation.CustomerBooking
// @Router    /bookings/user/{email} [get]
func handleUserBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Reservation.ListByUser(c.Request.Context(), currentUser(c), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Booking requests for a vendor's tickets
// @Security  BearerAuth
// @Param     email  path  string  true  "vendor email"
// @Success   200  {array}  reservation.VendorBooking
// @Router    /bookings/vendor/{email} [get]
func handleVendorBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Reservation.ListByVendor(c.Request.Context(), currentUser(c), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Accept or reject booking
// @Security  BearerAuth
// @Param     id   path  string         true  "Booking ID"
// @Param     req  body  StatusRequest  true  "accepted or rejected"
// @Success   200  {object}  ModifiedResponse
// @Failure   409  {object}  ErrorResponse  "already decided"
// @Router    /bookings/status/{id} [patch]
func handleDecideBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		n, err := svcs.Reservation.Decide(c.Request.Context(), currentUser(c), id, domain.BookingStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ModifiedResponse{ModifiedCount: n})
	}
}
