package httpgin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tixmarket/internal/auth"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/service/account"
	"github.com/samber/lo"
)

const ctxUser = "user"

// Authenticate resolves the bearer token to the stored account. The role is
// read on every request, so promotions and fraud bans apply to live
// sessions.
func Authenticate(issuer *auth.Issuer, accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := issuer.Parse(auth.BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		u, err := accounts.ByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, account.ErrUserNotFound) {
				unauthorized(c, "unknown account")
				return
			}
			respondErr(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUser, *u)
		c.Next()
	}
}

// RequireRole admits only accounts holding one of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lo.Contains(roles, currentUser(c).Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return domain.User{}
	}
	u, _ := v.(domain.User)
	return u
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg})
}
