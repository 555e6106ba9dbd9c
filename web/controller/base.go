// Package controller provides the HTTP handlers of the cinerate API.
package controller

import (
	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/web/middleware"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController carries what every controller needs to guard its routes and
// report errors.
type BaseController struct {
	log    *logger.Logger
	public middleware.PublicPaths
}

func NewBaseController(log *logger.Logger, public middleware.PublicPaths) BaseController {
	return BaseController{log: log, public: public}
}

func (a *BaseController) requireLogin() gin.HandlerFunc {
	return middleware.RequireAuthenticated(a.log)
}

func (a *BaseController) requireAdmin() gin.HandlerFunc {
	return middleware.RequireAdmin(a.public, a.log)
}

// principal returns the user attached by the auth gate. Routes calling it
// are guarded, so it is never nil there.
func (a *BaseController) principal(c *gin.Context) *model.User {
	return session.GetLoginUser(c)
}
