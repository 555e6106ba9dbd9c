package controller

import (
	"fmt"
	"net/http"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/service"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
)

// AuthController serves registration, login, logout and the caller's own
// profile and sessions.
type AuthController struct {
	BaseController

	authService *service.AuthService
	userService *service.UserService
	ledger      *service.SessionLedger
}

func NewAuthController(g *gin.RouterGroup, base BaseController, auth *service.AuthService, users *service.UserService, ledger *service.SessionLedger) *AuthController {
	a := &AuthController{
		BaseController: base,
		authService:    auth,
		userService:    users,
		ledger:         ledger,
	}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.POST("/register", a.register)
	g.POST("/login", a.login)

	authed := g.Group("", a.requireLogin())
	authed.POST("/logout", a.logout)
	authed.GET("/me", a.me)
	authed.PUT("/me", a.updateMe)
	authed.GET("/sessions", a.sessions)
}

func (a *AuthController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	_, err := a.authService.Register(c.Request.Context(), service.UserInput{
		Username: form.Username,
		Email:    form.Email,
		Role:     model.Role(form.Role),
		Password: form.Password,
	})
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	jsonMsg(c, "User registered successfully")
}

func (a *AuthController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}

	login, err := a.authService.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		a.log.Warningf("failed login for %q from %s", form.Email, c.ClientIP())
		jsonError(c, a.log, err)
		return
	}
	session.SetLoginUser(c, login.User)

	c.JSON(http.StatusOK, entity.LoginResponse{
		AccessToken: login.Token,
		TokenType:   "bearer",
		ExpiresIn:   a.authService.ExpiresIn(),
		User:        entity.NewProfile(login.User),
	})
}

func (a *AuthController) logout(c *gin.Context) {
	user := a.principal(c)
	tok := session.GetLoginToken(c)
	if tok == "" {
		pureJsonMsg(c, http.StatusUnauthorized, false, "Token missing")
		return
	}
	if err := a.authService.Logout(c.Request.Context(), tok); err != nil {
		jsonError(c, a.log, err)
		return
	}
	message(c, fmt.Sprintf("User '%s' logged out successfully", user.Username))
}

func (a *AuthController) me(c *gin.Context) {
	c.JSON(http.StatusOK, entity.NewProfile(a.principal(c)))
}

func (a *AuthController) updateMe(c *gin.Context) {
	var form entity.UpdateUserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	user, err := a.userService.UpdateUser(c.Request.Context(), a.principal(c).Id, updateInput(form))
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewProfile(user))
}

func (a *AuthController) sessions(c *gin.Context) {
	records, err := a.ledger.ListSessions(c.Request.Context(), a.principal(c).Id)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	current := session.GetLoginToken(c)
	items := make([]entity.SessionItem, len(records))
	for i, r := range records {
		items[i] = entity.SessionItem{
			Id:             r.Id,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
			ExpirationDate: r.ExpirationDate,
			Current:        r.Token == current,
		}
	}
	c.JSON(http.StatusOK, items)
}

func updateInput(form entity.UpdateUserForm) service.UserInput {
	return service.UserInput{
		Username: form.Username,
		Email:    form.Email,
		Role:     model.Role(form.Role),
		Password: form.Password,
	}
}
