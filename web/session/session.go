// Package session holds the principal resolved for the current request.
// Nothing is persisted between requests; every request carries its own
// bearer token.
package session

import (
	"context"

	"github.com/cinerate/cinerate/database/model"

	"github.com/gin-gonic/gin"
)

const (
	loginUser  = "LOGIN_USER"
	loginToken = "LOGIN_TOKEN"
)

type contextKey struct{ name string }

var userKey = &contextKey{"login-user"}

// SetLoginUser attaches user to both the gin context and the request context.
func SetLoginUser(c *gin.Context, user *model.User) {
	c.Set(loginUser, user)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userKey, user))
}

func GetLoginUser(c *gin.Context) *model.User {
	if obj, ok := c.Get(loginUser); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// SetLoginToken keeps the bearer token the principal was resolved from.
func SetLoginToken(c *gin.Context, token string) {
	c.Set(loginToken, token)
}

func GetLoginToken(c *gin.Context) string {
	return c.GetString(loginToken)
}

// LoginUserFromContext returns the principal attached by SetLoginUser, for
// code that only sees the request context.
func LoginUserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}
