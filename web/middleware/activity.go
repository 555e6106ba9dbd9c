package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/web/service"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
)

type ActivityLogger interface {
	LogAction(ctx context.Context, entry service.ActivityEntry) error
}

var activitySkipPaths = NewPublicPaths([]string{
	"/openapi.json",
	"/docs",
	"/redoc",
	"/admin/logs",
})

// ActivityRecorder stores one activity entry for every request that ends
// with a principal attached, after the handler has run. Failures to record
// are logged and never affect the response.
func ActivityRecorder(activity ActivityLogger, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if activitySkipPaths.Match(path) {
			c.Next()
			return
		}

		c.Next()

		user := session.GetLoginUser(c)
		if user == nil {
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = path
		}
		entry := service.ActivityEntry{
			UserId:      user.Id,
			Action:      actionFor(c.Request.Method, path),
			Resource:    resource,
			Description: c.Request.Method + " " + path,
			IP:          c.ClientIP(),
			UserAgent:   c.GetHeader("User-Agent"),
			Details: map[string]any{
				"method": c.Request.Method,
				"path":   path,
				"status": c.Writer.Status(),
			},
		}
		if err := activity.LogAction(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			log.Warning("failed to record activity:", err)
		}
	}
}

// actionFor derives the activity action from the request method and path.
func actionFor(method, path string) string {
	switch {
	case strings.HasSuffix(path, "/login"):
		return "LOGIN"
	case strings.HasSuffix(path, "/logout"):
		return "LOGOUT"
	case strings.HasSuffix(path, "/like"):
		return "LIKE"
	}
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	case http.MethodGet, http.MethodHead:
		return "READ"
	default:
		return method
	}
}
