package controller

import (
	"net/http"

	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"
	"github.com/cinerate/cinerate/web/entity"

	"github.com/gin-gonic/gin"
)

// jsonError renders err with the status of its kind. Internal errors are
// logged and hidden from the client.
func jsonError(c *gin.Context, log *logger.Logger, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		log.Debugf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	pureJsonMsg(c, status, false, common.Message(err))
}

// bindError reports a request that failed binding or validation.
func bindError(c *gin.Context, err error) {
	pureJsonMsg(c, http.StatusBadRequest, false, "Invalid request: "+err.Error())
}

// jsonMsg sends a successful envelope with msg.
func jsonMsg(c *gin.Context, msg string) {
	pureJsonMsg(c, http.StatusOK, true, msg)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// message sends {"message": msg}.
func message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
