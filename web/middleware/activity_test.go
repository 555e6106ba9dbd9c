package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/web/service"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingActivity struct {
	entries []service.ActivityEntry
	err     error
}

func (r *recordingActivity) LogAction(_ context.Context, entry service.ActivityEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func newActivityEngine(activity ActivityLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ActivityRecorder(activity, logger.Discard()))
	withUser := func(c *gin.Context) {
		session.SetLoginUser(c, &model.User{Id: 5, Username: "ann"})
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	engine.POST("/auth/login", func(c *gin.Context) {
		withUser(c)
		c.Status(http.StatusOK)
	})
	engine.POST("/auth/register", ok)
	engine.DELETE("/user/reviews/:review_id", withUser, func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/admin/logs", withUser, ok)
	return engine
}

func TestActivityRecorder(t *testing.T) {
	activity := &recordingActivity{}
	engine := newActivityEngine(activity)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/auth/login", nil),
		httptest.NewRequest(http.MethodPost, "/auth/register", nil),
		httptest.NewRequest(http.MethodDelete, "/user/reviews/9", nil),
		httptest.NewRequest(http.MethodGet, "/admin/logs", nil),
	} {
		engine.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, activity.entries, 2)

	login := activity.entries[0]
	assert.Equal(t, 5, login.UserId)
	assert.Equal(t, "LOGIN", login.Action)
	assert.Equal(t, "/auth/login", login.Resource)

	del := activity.entries[1]
	assert.Equal(t, "DELETE", del.Action)
	assert.Equal(t, "/user/reviews/:review_id", del.Resource)
	assert.Equal(t, "DELETE /user/reviews/9", del.Description)
	assert.Equal(t, http.StatusNotFound, del.Details["status"])
}

func TestActivityRecorderFailureKeepsResponse(t *testing.T) {
	activity := &recordingActivity{err: errors.New("disk full")}
	engine := newActivityEngine(activity)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, activity.entries, 1)
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/auth/login", "LOGIN"},
		{http.MethodPost, "/auth/logout", "LOGOUT"},
		{http.MethodPost, "/user/reviews/3/like", "LIKE"},
		{http.MethodPost, "/user/reviews", "CREATE"},
		{http.MethodPut, "/auth/me", "UPDATE"},
		{http.MethodPatch, "/auth/users/2/role", "UPDATE"},
		{http.MethodDelete, "/auth/delete_users", "DELETE"},
		{http.MethodGet, "/movies", "READ"},
		{http.MethodOptions, "/movies", "OPTIONS"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, actionFor(tt.method, tt.path), tt.method+" "+tt.path)
	}
}

func TestDomainValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(DomainValidatorMiddleware("api.example.com"))
	engine.GET("/movies", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		host string
		want int
	}{
		{"api.example.com", http.StatusOK},
		{"API.example.com:8000", http.StatusOK},
		{"evil.example.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.Host = tt.host
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.host)
	}
}
