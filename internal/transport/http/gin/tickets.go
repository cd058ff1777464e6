package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/service"
	"github.com/kirinyoku/tixmarket/internal/service/query"
)

// @Summary  Search public tickets
// @Param    from   query  string  false  "departure city substring"
// @Param    to     query  string  false  "destination city substring"
// @Param    type   query  string  false  "bus, train, launch or flight"
// @Param    sort   query  string  false  "asc or desc by price"
// @Param    page   query  int     false  "1-based page"
// @Param    limit  query  int     false  "page size"
// @Success  200  {object}  query.SearchResult
// @Failure  400  {object}  ErrorResponse
// @Router   /tickets [get]
func handleSearchTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svcs.Query.Search(c.Request.Context(), query.SearchParams{
			From:  c.Query("from"),
			To:    c.Query("to"),
			Type:  c.Query("type"),
			Sort:  c.Query("sort"),
			Page:  parseIntDefault(c.Query("page"), 1),
			Limit: parseIntDefault(c.Query("limit"), 0),
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		res.Tickets = orEmpty(res.Tickets)
		writeListing(c, res)
	}
}

// @Summary  Latest public tickets
// @Success  200  {array}  domain.Ticket
// @Router   /tickets/latest [get]
func handleLatestTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Query.Latest(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeListing(c, orEmpty(out))
	}
}

// @Summary  Advertised tickets
// @Success  200  {array}  domain.Ticket
// @Router   /tickets/advertised [get]
func handleAdvertisedTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Query.Advertised(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeListing(c, orEmpty(out))
	}
}

// @Summary   Get ticket
// @Security  BearerAuth
// @Param     id  path  string  true  "Ticket ID"
// @Success   200  {object}  domain.Ticket
// @Failure   404  {object}  ErrorResponse
// @Router    /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		t, err := svcs.Tickets.Get(c.Request.Context(), currentUser(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary   Add ticket
// @Security  BearerAuth
// @Param     req  body  TicketRequest  true  "ticket"
// @Success   201  {object}  InsertedResponse
// @Failure   400  {object}  ErrorResponse
// @Failure   403  {object}  ErrorResponse
// @Router    /tickets [post]
func handleCreateTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		draft, err := req.draft()
		if err != nil {
			respondErr(c, err)
			return
		}
		t, err := svcs.Tickets.Create(c.Request.Context(), currentUser(c), draft)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, InsertedResponse{InsertedID: t.ID.String()})
	}
}

// @Summary   Vendor's own tickets
// @Security  BearerAuth
// @Param     email  path  string  true  "vendor email"
// @Success   200  {array}  domain.Ticket
// @Failure   403  {object}  ErrorResponse
// @Router    /tickets/vendor/{email} [get]
func handleVendorTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Tickets.ListByVendor(c.Request.Context(), currentUser(c), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Edit ticket
// @Security  BearerAuth
// @Param     id   path  string         true  "Ticket ID"
// @Param     req  body  TicketRequest  true  "ticket"
// @Success   200  {object}  ModifiedResponse
// @Failure   409  {object}  ErrorResponse  "rejected tickets are locked"
// @Router    /tickets/update/{id} [patch]
func handleUpdateTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req TicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		draft, err := req.draft()
		if err != nil {
			respondErr(c, err)
			return
		}
		if _, err := svcs.Tickets.Update(c.Request.Context(), currentUser(c), id, draft); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ModifiedResponse{ModifiedCount: 1})
	}
}

// @Summary   Delete ticket
// @Security  BearerAuth
// @Param     id  path  string  true  "Ticket ID"
// @Success   200  {object}  DeletedResponse
// @Failure   409  {object}  ErrorResponse
// @Router    /tickets/{id} [delete]
func handleDeleteTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		n, err := svcs.Tickets.Delete(c.Request.Context(), currentUser(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DeletedResponse{DeletedCount: n})
	}
}

// @Summary   All tickets for review
// @Security  BearerAuth
// @Success   200  {array}  domain.Ticket
// @Router    /tickets/admin [get]
func handleAdminTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Admin.ListTickets(c.Request.Context(), currentUser(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Approve or reject ticket
// @Security  BearerAuth
// @Param     id   path  string         true  "Ticket ID"
// @Param     req  body  StatusRequest  true  "approved or rejected"
// @Success   200  {object}  ModifiedResponse
// @Failure   409  {object}  ErrorResponse  "ticket is no longer pending"
// @Router    /tickets/status/{id} [patch]
func handleSetTicketStatus(svcs *service.Services) gin.HandlerFunc {
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
		n, err := svcs.Admin.SetTicketStatus(c.Request.Context(), currentUser(c), id, domain.TicketStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ModifiedResponse{ModifiedCount: n})
	}
}

// @Summary      Toggle advertisement
// @Description  At most six tickets are advertised. A refused toggle returns limitReached=true.
// @Security     BearerAuth
// @Param        id   path  string            true  "Ticket ID"
// @Param        req  body  AdvertiseRequest  true  "desired state"
// @Success      200  {object}  AdvertiseResponse
// @Failure      409  {object}  ErrorResponse  "ticket not approved"
// @Router       /tickets/advertise/{id} [patch]
func handleSetAdvertised(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req AdvertiseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Admin.SetAdvertised(c.Request.Context(), currentUser(c), id, *req.IsAdvertised)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, AdvertiseResponse{ModifiedCount: res.Modified, LimitReached: res.LimitReached})
	}
}

// @Summary   Vendor revenue overview
// @Security  BearerAuth
// @Param     email  path  string  true  "vendor email"
// @Success   200  {object}  domain.VendorStats
// @Router    /vendor-stats/{email} [get]
func handleVendorStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svcs.Query.VendorStats(c.Request.Context(), currentUser(c), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
