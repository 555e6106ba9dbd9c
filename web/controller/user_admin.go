package controller

import (
	"net/http"

	"github.com/cinerate/cinerate/database/model"
	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/service"

	"github.com/gin-gonic/gin"
)

// UserAdminController exposes user management to admins.
type UserAdminController struct {
	BaseController

	userService *service.UserService
}

func NewUserAdminController(g *gin.RouterGroup, base BaseController, users *service.UserService) *UserAdminController {
	a := &UserAdminController{BaseController: base, userService: users}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	admin := g.Group("", a.requireAdmin())
	admin.GET("/get_users", a.list)
	admin.PUT("/update_users", a.update)
	admin.DELETE("/delete_users", a.delete)
	admin.PATCH("/users/:id/role", a.updateRole)
}

func (a *UserAdminController) list(c *gin.Context) {
	users, err := a.userService.ListUsers(c.Request.Context())
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	items := make([]entity.UserListItem, len(users))
	for i := range users {
		items[i] = entity.UserListItem{Profile: entity.NewProfile(&users[i]), CreatedAt: users[i].CreatedAt}
	}
	a.log.Infof("admin %d listed %d users", a.principal(c).Id, len(items))
	c.JSON(http.StatusOK, items)
}

func (a *UserAdminController) update(c *gin.Context) {
	var query struct {
		UserId int `form:"userid" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	var form entity.UpdateUserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}

	user, err := a.userService.UpdateUser(c.Request.Context(), query.UserId, updateInput(form))
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, entity.UpdatedUser{
		Id:        user.Id,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

func (a *UserAdminController) delete(c *gin.Context) {
	var query struct {
		UserId int `form:"user_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	user, err := a.userService.DeleteUser(c.Request.Context(), query.UserId)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": user})
}

func (a *UserAdminController) updateRole(c *gin.Context) {
	var uri struct {
		Id int `uri:"id" binding:"required,min=1"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var form entity.RoleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	user, err := a.userService.ChangeRole(c.Request.Context(), uri.Id, model.Role(form.Role))
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, entity.NewProfile(user))
}
