package handlers

import (
	"net/http"

	"natours_backend/internal/middleware"
	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services"
	"natours_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

// RegisterRoutes: /reviews и вложенный /tours/:id/reviews
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	onlyUsers := middleware.RestrictTo(models.UserRoleUser)

	nested := rg.Group("/tours/:id/reviews")
	nested.Use(protect)
	{
		nested.GET("", h.ListReviews)
		nested.POST("", onlyUsers, h.CreateReview)
	}

	reviews := rg.Group("/reviews")
	reviews.Use(protect)
	{
		reviews.GET("", h.ListReviews)
		reviews.POST("", onlyUsers, h.CreateReview)
		reviews.GET("/:id", h.GetReview)
	}

	manage := reviews.Group("")
	manage.Use(middleware.RestrictTo(models.UserRoleUser, models.UserRoleAdmin))
	{
		manage.PATCH("/:id", h.UpdateReview)
		manage.DELETE("/:id", h.DeleteReview)
	}
}

// ListReviews: на /reviews параметра id нет - отдаются все отзывы
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query(), repositories.ReviewQuerySchema)
	reviews, err := h.reviewService.ListReviews(h.GetDB(c), c.Param("id"), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondList(c, "reviews", reviews)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"review": review})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReview(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.UpdateReview(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(h.GetDB(c), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
