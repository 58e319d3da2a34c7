package middleware

import (
	"strings"

	"natours_backend/internal/auth"
	"natours_backend/internal/logger"
	"natours_backend/internal/models"
	"natours_backend/pkg/apperrors"
	"natours_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// TokenCookieName - cookie с токеном сессии
	TokenCookieName = "jwt"
	// LoggedOutCookieValue пишется в cookie при logout
	LoggedOutCookieValue = "loggedout"
)

// Authenticator проверяет токен и возвращает владельца (AuthService)
type Authenticator interface {
	Authenticate(db *gorm.DB, token string) (*models.User, error)
}

// ExtractToken: Authorization: Bearer <t>, затем cookie jwt
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token
		}
	}

	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != LoggedOutCookieValue {
		return cookie
	}
	return ""
}

// Protect - аутентификация: без действительного токена запрос дальше не идет
func Protect(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			apperrors.AbortWithError(c, apperrors.ErrUnauthenticated)
			return
		}

		db, ok := GetDB(c)
		if !ok {
			logger.CtxError(c.Request.Context(), "Protect: db not found in context", "path", c.Request.URL.Path)
			apperrors.AbortWithError(c, apperrors.InternalError(nil))
			return
		}

		user, err := authenticator.Authenticate(db, token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Authentication rejected",
				"code", apperrors.CodeOf(err),
				"path", c.Request.URL.Path,
				"ip", c.ClientIP(),
			)
			apperrors.AbortWithError(c, err)
			return
		}

		c.Set(string(contextkeys.CurrentUserKey), user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RestrictTo - авторизация по ролям. Должен стоять после Protect;
// без пользователя в контексте отвечает Unauthenticated, а не Forbidden
func RestrictTo(roles ...models.UserRole) gin.HandlerFunc {
	allowed := auth.NewRoleSet(roles...)

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apperrors.AbortWithError(c, apperrors.ErrUnauthenticated)
			return
		}

		if !allowed.Allows(user.Role) {
			logger.CtxWarn(c.Request.Context(), "Access denied: insufficient role",
				"role", user.Role,
				"path", c.Request.URL.Path,
			)
			apperrors.AbortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Next()
	}
}

// CurrentUser извлекает пользователя, установленного Protect
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(string(contextkeys.CurrentUserKey))
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
