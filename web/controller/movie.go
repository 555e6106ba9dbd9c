package controller

import (
	"net/http"

	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/service"

	"github.com/gin-gonic/gin"
)

type MovieController struct {
	BaseController

	movieService *service.MovieService
}

func NewMovieController(g *gin.RouterGroup, base BaseController, movies *service.MovieService) *MovieController {
	a := &MovieController{BaseController: base, movieService: movies}
	a.initRouter(g)
	return a
}

func (a *MovieController) initRouter(g *gin.RouterGroup) {
	g.POST("", a.requireAdmin(), a.create)
	g.GET("", a.requireLogin(), a.list)
	g.GET("/:movie_id", a.requireLogin(), a.get)
}

func (a *MovieController) create(c *gin.Context) {
	var form entity.MovieForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	movie, err := a.movieService.CreateMovie(c.Request.Context(), a.principal(c).Id, service.MovieInput{
		Title:       form.Title,
		Description: form.Description,
		Genre:       form.Genre,
		Language:    form.Language,
		Director:    form.Director,
		Cast:        form.Cast,
		ReleaseYear: form.ReleaseYear,
		PosterUrl:   form.PosterUrl,
	})
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (a *MovieController) list(c *gin.Context) {
	var query struct {
		Page int `form:"page,default=1" binding:"min=1"`
		Size int `form:"size,default=10" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	page, err := a.movieService.ListMovies(c.Request.Context(), query.Page, query.Size)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *MovieController) get(c *gin.Context) {
	var uri struct {
		MovieId int `uri:"movie_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	movie, err := a.movieService.GetMovie(c.Request.Context(), uri.MovieId)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}
