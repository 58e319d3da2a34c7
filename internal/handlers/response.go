package handlers

import (
	"net/http"
	"reflect"
	"time"

	"natours_backend/internal/middleware"
	"natours_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const statusSuccess = "success"

// respondData: {"status":"success","data":{...}}
func respondData(c *gin.Context, code int, data gin.H) {
	c.JSON(code, gin.H{
		"status": statusSuccess,
		"data":   data,
	})
}

// respondList добавляет results - длину списка
func respondList(c *gin.Context, key string, items interface{}) {
	results := 0
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice {
		results = v.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"results": results,
		"data":    gin.H{key: items},
	})
}

// CookieConfig - параметры cookie с токеном
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

// respondToken отдает токен в теле и в HttpOnly cookie
func respondToken(c *gin.Context, code int, cookie CookieConfig, resp *dto.AuthResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, resp.Token, int(cookie.TTL.Seconds()), "/", "", cookie.Secure, true)
	c.JSON(code, gin.H{
		"status": statusSuccess,
		"token":  resp.Token,
		"data":   gin.H{"user": resp.User},
	})
}
