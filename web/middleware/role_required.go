package middleware

import (
	"net/http"
	"slices"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
)

// RequireAuthenticated admits only requests with a resolved principal.
func RequireAuthenticated(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.IsLogin(c) {
			reject(c, log, http.StatusUnauthorized, "no_principal", msgAuthRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin admits admins. Public paths pass without a role check.
func RequireAdmin(public PublicPaths, log *logger.Logger) gin.HandlerFunc {
	return RoleRequired(public, log, model.RoleAdmin)
}

// RoleRequired admits principals holding one of roles: 401 without a
// principal, 403 with any other role.
func RoleRequired(public PublicPaths, log *logger.Logger, roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if public.Match(c.Request.URL.Path) {
			c.Next()
			return
		}
		user := session.GetLoginUser(c)
		if user == nil {
			reject(c, log, http.StatusUnauthorized, "no_principal", msgAuthRequired)
			return
		}
		if !slices.Contains(roles, user.Role) {
			reject(c, log, http.StatusForbidden, "role_denied", msgAdminRequired, "user_id", user.Id, "role", user.Role)
			return
		}
		c.Next()
	}
}
