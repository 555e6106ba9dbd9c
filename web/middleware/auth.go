package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"
	"github.com/cinerate/cinerate/util/token"
	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/session"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
)

const (
	msgBadHeader      = "missing or invalid authorization header"
	msgInvalidToken   = "invalid or expired token"
	msgUserNotFound   = "user not found"
	msgUserSuspended  = "user not accessible"
	msgAuthRequired   = "authentication required"
	msgAdminRequired  = "admin access required"
	msgInternalServer = "internal server error"
)

type TokenVerifier interface {
	Verify(tok string) (*token.Claims, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id int) (*model.User, error)
}

// AuthGate resolves the principal of every non-public request from its
// bearer token and rejects the request when that fails. Users suspended by
// a logout are refused even while their tokens are unexpired.
func AuthGate(public PublicPaths, tokens TokenVerifier, users UserLookup, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if public.Match(c.Request.URL.Path) {
			c.Next()
			return
		}

		tok, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, log, http.StatusUnauthorized, "bad_header", msgBadHeader)
			return
		}

		claims, err := tokens.Verify(tok)
		if err != nil {
			reject(c, log, http.StatusUnauthorized, "invalid_token", msgInvalidToken, "error", err)
			return
		}

		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		switch {
		case common.KindOf(err) == common.KindNotFound:
			reject(c, log, http.StatusUnauthorized, "user_not_found", msgUserNotFound, "user_id", claims.UserID)
			return
		case err != nil:
			log.Errorf("auth gate: load user %d: %v", claims.UserID, err)
			reject(c, log, http.StatusInternalServerError, "lookup_failed", msgInternalServer, "user_id", claims.UserID)
			return
		}

		if user.Status == model.StatusSuspended {
			reject(c, log, http.StatusUnauthorized, "user_suspended", msgUserSuspended, "user_id", user.Id)
			return
		}

		session.SetLoginUser(c, user)
		session.SetLoginToken(c, tok)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}

// reject logs the decision and ends the request with status.
func reject(c *gin.Context, log *logger.Logger, status int, reason, msg string, kv ...any) {
	fields := append([]any{
		"reason", reason,
		"status", status,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
	}, kv...)
	log.Event(logging.WARNING, "auth_rejected", fields...)
	c.AbortWithStatusJSON(status, entity.Msg{Success: false, Msg: msg})
}
