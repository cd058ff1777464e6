package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tixmarket/internal/auth"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/service"
	"github.com/kirinyoku/tixmarket/internal/service/account"
)

// @Summary      Issue session token
// @Description  Exchanges the identity provider's ID token for a session token. The ID token must carry the same email, and the account must be registered.
// @Param        req  body  TokenRequest  true  "email and idToken"
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  ErrorResponse  "idToken missing, invalid or for another email"
// @Failure      404  {object}  ErrorResponse  "not registered"
// @Failure      503  {object}  ErrorResponse  "identity provider not configured"
// @Router       /jwt [post]
func handleIssueToken(svcs *service.Services, issuer *auth.Issuer, verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := verifier.Verify(req.Email, req.IDToken); err != nil {
			respondErr(c, err)
			return
		}
		u, err := svcs.Accounts.ByEmail(c.Request.Context(), req.Email)
		if err != nil {
			respondErr(c, err)
			return
		}
		token, err := issuer.Issue(u.Email)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, TokenResponse{Token: token})
	}
}

// @Summary  Register account
// @Param    req  body  RegisterRequest  true  "profile"
// @Success  201  {object}  RegisterResponse
// @Success  200  {object}  RegisterResponse  "already registered"
// @Router   /users [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		u, created, err := svcs.Accounts.Register(c.Request.Context(), account.Profile{
			Email:    req.Email,
			Name:     req.Name,
			PhotoURL: req.PhotoURL,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		if !created {
			c.JSON(http.StatusOK, RegisterResponse{Message: "user already exists"})
			return
		}
		c.JSON(http.StatusCreated, RegisterResponse{InsertedID: u.ID.String()})
	}
}

// @Summary  Role lookup
// @Param    email  path  string  true  "account email"
// @Success  200  {object}  RoleResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /users/{email} [get]
func handleGetRole(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Accounts.ByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RoleResponse{Role: u.Role})
	}
}

// @Summary   All accounts with available actions
// @Security  BearerAuth
// @Success   200  {array}  admin.UserRow
// @Router    /users [get]
func handleListUsers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Admin.ListUsers(c.Request.Context(), currentUser(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, orEmpty(out))
	}
}

// @Summary   Change role
// @Security  BearerAuth
// @Param     id   path  string       true  "User ID"
// @Param     req  body  RoleRequest  true  "vendor or admin"
// @Success   200  {object}  ModifiedResponse
// @Failure   403  {object}  ErrorResponse  "self action or banned target"
// @Router    /users/role/{id} [patch]
func handlePromote(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			respondErr(c, err)
			return
		}
		n, err := svcs.Admin.Promote(c.Request.Context(), currentUser(c), id, role)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ModifiedResponse{ModifiedCount: n})
	}
}

// @Summary   Mark vendor as fraud
// @Security  BearerAuth
// @Param     id  path  string  true  "User ID"
// @Success   200  {object}  FraudResponse
// @Failure   409  {object}  ErrorResponse  "target is not a vendor"
// @Router    /users/fraud/{id} [patch]
func handleMarkFraud(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		res, err := svcs.Admin.MarkFraud(c.Request.Context(), currentUser(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, FraudResponse{
			UserResult:   ModifiedResponse{ModifiedCount: res.UserModified},
			TicketResult: ModifiedResponse{ModifiedCount: res.TicketsModified},
		})
	}
}
