package handlers

import (
	"net/http"

	"natours_backend/internal/middleware"
	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(protect)
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/updateMe", h.UpdateMe)
		users.DELETE("/deleteMe", h.DeleteMe)
	}

	admin := users.Group("")
	admin.Use(middleware.RestrictTo(models.UserRoleAdmin))
	{
		admin.GET("", h.ListUsers)
		admin.POST("", h.CreateUser)
		admin.GET("/:id", h.GetUser)
		admin.PATCH("/:id", h.UpdateUser)
		admin.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": dto.NewUserResponse(user)})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateMeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	updated, err := h.userService.UpdateMe(h.GetDB(c), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": updated})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteMe(h.GetDB(c), user.ID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	q := query.Parse(c.Request.URL.Query(), repositories.UserQuerySchema)
	users, err := h.userService.ListUsers(h.GetDB(c), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondList(c, "users", users)
}

// CreateUser - пользователи создаются только через /signup
func (h *UserHandler) CreateUser(c *gin.Context) {
	apperrors.HandleError(c, apperrors.New(apperrors.CodeInternalError, "users",
		"This route is not defined! Please use /signup instead", http.StatusInternalServerError))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdateUser(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.AdminDeleteUser(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
