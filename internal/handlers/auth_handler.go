package handlers

import (
	"net/http"
	"strings"

	"natours_backend/internal/middleware"
	"natours_backend/internal/services"
	"natours_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService  services.AuthService
	cookie       CookieConfig
	resetURLBase string
}

// NewAuthHandler: пустой resetURLBase - ссылка строится от хоста запроса
func NewAuthHandler(base *BaseHandler, authService services.AuthService, cookie CookieConfig, resetURLBase string) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  base,
		authService:  authService,
		cookie:       cookie,
		resetURLBase: resetURLBase,
	}
}

// RegisterRoutes регистрирует маршруты учетных данных под /users
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.GET("/logout", h.Logout)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.PATCH("/resetPassword/:token", h.ResetPassword)

		users.PATCH("/updateMyPassword", protect, h.UpdateMyPassword)
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondToken(c, http.StatusCreated, h.cookie, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondToken(c, http.StatusOK, h.cookie, resp)
}

// Logout перезаписывает cookie коротким значением-заглушкой
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, middleware.LoggedOutCookieValue, 10, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.authService.RequestPasswordReset(c.Request.Context(), h.GetDB(c), req.Email, h.resetBase(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Token sent to email!",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.ResetPassword(h.GetDB(c), c.Param("token"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondToken(c, http.StatusOK, h.cookie, resp)
}

func (h *AuthHandler) UpdateMyPassword(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdatePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.ChangePassword(h.GetDB(c), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondToken(c, http.StatusOK, h.cookie, resp)
}

func (h *AuthHandler) resetBase(c *gin.Context) string {
	if h.resetURLBase != "" {
		return h.resetURLBase
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/api/v1/users/resetPassword"
}
