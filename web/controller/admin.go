package controller

import (
	"net/http"
	"time"

	"github.com/cinerate/cinerate/web/service"

	"github.com/gin-gonic/gin"
)

// AdminController exposes the activity log and the buffered server logs.
type AdminController struct {
	BaseController

	activityService *service.ActivityService
}

func NewAdminController(g *gin.RouterGroup, base BaseController, activity *service.ActivityService) *AdminController {
	a := &AdminController{BaseController: base, activityService: activity}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("", a.requireAdmin())
	g.GET("/activity", a.activity)
	g.GET("/logs", a.logs)
}

func (a *AdminController) activity(c *gin.Context) {
	var query struct {
		UserId int        `form:"user_id"`
		Action string     `form:"action"`
		Since  *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
		Until  *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
		Limit  int        `form:"limit,default=50" binding:"min=1,max=500"`
		Offset int        `form:"offset" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	logs, total, err := a.activityService.List(c.Request.Context(), service.ActivityFilter{
		UserId: query.UserId,
		Action: query.Action,
		Since:  query.Since,
		Until:  query.Until,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "logs": logs})
}

func (a *AdminController) logs(c *gin.Context) {
	var query struct {
		Count int    `form:"count,default=100" binding:"min=1,max=10240"`
		Level string `form:"level,default=info"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": a.log.GetLogs(query.Count, query.Level)})
}
