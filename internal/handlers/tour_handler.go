package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"natours_backend/internal/middleware"
	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// topCheapDefaults - значения алиаса /tours/top-5-cheap
var topCheapDefaults = url.Values{
	"limit":  {"5"},
	"sort":   {"-ratingsAverage,price"},
	"fields": {"name,price,ratingsAverage,summary,difficulty"},
}

type TourHandler struct {
	*BaseHandler
	tourService services.TourService
}

func NewTourHandler(base *BaseHandler, tourService services.TourService) *TourHandler {
	return &TourHandler{
		BaseHandler: base,
		tourService: tourService,
	}
}

func (h *TourHandler) RegisterRoutes(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	tours := rg.Group("/tours")
	{
		tours.GET("", h.ListTours)
		tours.GET("/top-5-cheap", h.TopCheap)
		tours.GET("/tour-stats", h.Stats)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.ToursWithin)
		tours.GET("/distances/:latlng/unit/:unit", h.Distances)
		tours.GET("/:id", h.GetTour)

		tours.GET("/monthly-plan/:year", protect,
			middleware.RestrictTo(models.UserRoleAdmin, models.UserRoleLeadGuide, models.UserRoleGuide),
			h.MonthlyPlan)
	}

	manage := tours.Group("")
	manage.Use(protect, middleware.RestrictTo(models.UserRoleAdmin, models.UserRoleLeadGuide))
	{
		manage.POST("", h.CreateTour)
		manage.PATCH("/:id", h.UpdateTour)
		manage.DELETE("/:id", h.DeleteTour)
	}
}

func (h *TourHandler) ListTours(c *gin.Context) {
	h.listTours(c, query.Parse(c.Request.URL.Query(), repositories.TourQuerySchema))
}

// TopCheap: параметры запроса перекрывают значения алиаса
func (h *TourHandler) TopCheap(c *gin.Context) {
	h.listTours(c, query.ParseWithDefaults(c.Request.URL.Query(), topCheapDefaults, repositories.TourQuerySchema))
}

func (h *TourHandler) listTours(c *gin.Context, q *query.Query) {
	tours, err := h.tourService.ListTours(h.GetDB(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondList(c, "tours", tours)
}

func (h *TourHandler) GetTour(c *gin.Context) {
	tour, err := h.tourService.GetTour(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"tour": tour})
}

func (h *TourHandler) CreateTour(c *gin.Context) {
	var req dto.CreateTourRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tour, err := h.tourService.CreateTour(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"tour": tour})
}

func (h *TourHandler) UpdateTour(c *gin.Context) {
	var req dto.UpdateTourRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tour, err := h.tourService.UpdateTour(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"tour": tour})
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
	if err := h.tourService.DeleteTour(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.tourService.Stats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Year must be a positive number"))
		return
	}

	plan, err := h.tourService.MonthlyPlan(h.GetDB(c), year)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"plan": plan})
}

func (h *TourHandler) ToursWithin(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance < 0 {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Distance must be a non-negative number"))
		return
	}
	center, err := services.ParseGeoQuery(c.Param("latlng"), c.Param("unit"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	tours, err := h.tourService.ToursWithin(h.GetDB(c), distance, center)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondList(c, "tours", tours)
}

func (h *TourHandler) Distances(c *gin.Context) {
	center, err := services.ParseGeoQuery(c.Param("latlng"), c.Param("unit"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	distances, err := h.tourService.Distances(h.GetDB(c), center)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"distances": distances})
}
