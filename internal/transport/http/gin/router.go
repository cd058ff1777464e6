package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/auth"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/gateway"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service"
	"github.com/kirinyoku/tixmarket/internal/service/account"
	"github.com/kirinyoku/tixmarket/internal/service/admin"
	"github.com/kirinyoku/tixmarket/internal/service/orders"
	"github.com/kirinyoku/tixmarket/internal/service/reservation"
	"github.com/kirinyoku/tixmarket/internal/service/tickets"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	issuer *auth.Issuer,
	verifier auth.Verifier,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), MetricsMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API
	r.POST("/jwt", handleIssueToken(svcs, issuer, verifier))
	r.POST("/users", handleRegister(svcs))
	r.GET("/users/:email", handleGetRole(svcs))

	r.GET("/tickets", handleSearchTickets(svcs))
	r.GET("/tickets/latest", handleLatestTickets(svcs))
	r.GET("/tickets/advertised", handleAdvertisedTickets(svcs))

	// Any signed-in account
	authed := r.Group("/", Authenticate(issuer, svcs.Accounts))
	{
		authed.GET("/tickets/:id", handleGetTicket(svcs))

		authed.POST("/bookings", handleCreateBooking(svcs, idem))
		authed.GET("/bookings/user/:email", handleUserBookings(svcs))

		authed.POST("/create-payment-intent", handleCreatePaymentIntent(svcs))
		authed.POST("/payments", handleRecordPayment(svcs, idem))
		authed.GET("/payments/user/:email", handlePaymentHistory(svcs))
		authed.GET("/payments/:transactionId/receipt", handleReceipt(svcs))
	}

	vendor := authed.Group("/", RequireRole(domain.RoleVendor))
	{
		vendor.POST("/tickets", handleCreateTicket(svcs))
		vendor.GET("/tickets/vendor/:email", handleVendorTickets(svcs))
		vendor.PATCH("/tickets/update/:id", handleUpdateTicket(svcs))
		vendor.DELETE("/tickets/:id", handleDeleteTicket(svcs))

		vendor.GET("/bookings/vendor/:email", handleVendorBookings(svcs))
		vendor.PATCH("/bookings/status/:id", handleDecideBooking(svcs))

		vendor.GET("/vendor-stats/:email", handleVendorStats(svcs))
	}

	adm := authed.Group("/", RequireRole(domain.RoleAdmin))
	{
		adm.GET("/tickets/admin", handleAdminTickets(svcs))
		adm.PATCH("/tickets/status/:id", handleSetTicketStatus(svcs))
		adm.PATCH("/tickets/advertise/:id", handleSetAdvertised(svcs))

		adm.GET("/users", handleListUsers(svcs))
		adm.PATCH("/users/role/:id", handlePromote(svcs))
		adm.PATCH("/users/fraud/:id", handleMarkFraud(svcs))
	}

	return r
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// orEmpty keeps empty lists rendering as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var notFoundErrs = []error{
	tickets.ErrTicketNotFound,
	admin.ErrTicketNotFound,
	admin.ErrUserNotFound,
	reservation.ErrTicketNotFound,
	reservation.ErrBookingNotFound,
	orders.ErrBookingNotFound,
	orders.ErrPaymentNotFound,
	account.ErrUserNotFound,
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		ve  domain.ValidationError
		se  domain.InvalidStateError
		lre domain.LimitReachedError
		fe  domain.ForbiddenError
		rle reservation.RateLimitedError
	)

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
		return
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidToken.Error()})
		return
	case errors.Is(err, auth.ErrIdentityNotProven):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrIdentityNotProven.Error()})
		return
	case errors.Is(err, auth.ErrNoIdentityProvider):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: auth.ErrNoIdentityProvider.Error()})
		return
	case errors.As(err, &fe):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: fe.Error()})
		return
	case errors.As(err, &se):
		c.JSON(http.StatusConflict, ErrorResponse{Error: se.Error()})
		return
	case errors.As(err, &lre):
		c.JSON(http.StatusConflict, ErrorResponse{Error: lre.Error()})
		return
	case errors.As(err, &rle):
		c.Header("Retry-After", strconv.Itoa(max(1, int(rle.RetryAfter.Seconds()+0.5))))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: rle.Error()})
		return
	case errors.Is(err, orders.ErrPaymentNotConfirmed):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: orders.ErrPaymentNotConfirmed.Error()})
		return
	case errors.Is(err, gateway.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: gateway.ErrNotConfigured.Error()})
		return
	}

	for _, nf := range notFoundErrs {
		if errors.Is(err, nf) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: nf.Error()})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
