package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/cinerate/cinerate/web/entity"

	"github.com/gin-gonic/gin"
)

// DomainValidatorMiddleware refuses requests whose Host is not domain.
func DomainValidatorMiddleware(domain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.Host)
		if err != nil {
			host = c.Request.Host
		}

		if !strings.EqualFold(host, domain) {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Msg: "invalid host"})
			return
		}

		c.Next()
	}
}
