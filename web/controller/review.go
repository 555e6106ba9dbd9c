package controller

import (
	"net/http"

	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/service"

	"github.com/gin-gonic/gin"
)

// ReviewController serves the review routes under /user. Editing and deleting
// reviews is reserved to admins and limited to their own reviews.
type ReviewController struct {
	BaseController

	reviewService *service.ReviewService
}

type reviewURI struct {
	ReviewId int `uri:"review_id" binding:"required,min=1"`
}

func NewReviewController(g *gin.RouterGroup, base BaseController, reviews *service.ReviewService) *ReviewController {
	a := &ReviewController{BaseController: base, reviewService: reviews}
	a.initRouter(g)
	return a
}

func (a *ReviewController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/reviews", a.requireLogin())
	g.POST("", a.create)
	g.GET("/by-movie/:movie_id", a.listByMovie)
	g.PUT("/:review_id", a.requireAdmin(), a.update)
	g.DELETE("/:review_id", a.requireAdmin(), a.delete)
	g.POST("/:review_id/like", a.like)
}

func (a *ReviewController) create(c *gin.Context) {
	var form entity.ReviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	review, err := a.reviewService.AddReview(c.Request.Context(), a.principal(c).Id, form.MovieId, *form.Rating, form.Comment)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (a *ReviewController) listByMovie(c *gin.Context) {
	var uri struct {
		MovieId int `uri:"movie_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var query struct {
		Page       int     `form:"page,default=1" binding:"min=1"`
		Size       int     `form:"size,default=10" binding:"min=1,max=100"`
		RatingFrom float64 `form:"ratingFrom" binding:"min=0,max=10"`
		UserId     int     `form:"userId"`
		Sort       string  `form:"sort,default=created_at"`
		Order      string  `form:"order,default=desc" binding:"oneof=asc desc"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	page, err := a.reviewService.ListByMovie(c.Request.Context(), uri.MovieId, service.ReviewQuery{
		Page:       query.Page,
		Size:       query.Size,
		RatingFrom: query.RatingFrom,
		UserId:     query.UserId,
		Sort:       query.Sort,
		Order:      query.Order,
	})
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *ReviewController) update(c *gin.Context) {
	var uri reviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var form entity.ReviewUpdateForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err)
		return
	}
	review, err := a.reviewService.UpdateReview(c.Request.Context(), uri.ReviewId, a.principal(c).Id, form.Rating, form.Comment)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, entity.ReviewUpdated{
		UserId:  review.UserId,
		MovieId: review.MovieId,
		Comment: review.Comment,
		Rating:  review.Rating,
	})
}

func (a *ReviewController) delete(c *gin.Context) {
	var uri reviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	var query struct {
		UserId int `form:"user_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	if err := a.reviewService.DeleteReview(c.Request.Context(), uri.ReviewId, query.UserId); err != nil {
		jsonError(c, a.log, err)
		return
	}
	message(c, "Successfully review deleted")
}

func (a *ReviewController) like(c *gin.Context) {
	var uri reviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}
	result, err := a.reviewService.LikeReview(c.Request.Context(), uri.ReviewId, a.principal(c).Id)
	if err != nil {
		jsonError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
