package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims - стандартные утверждения: sub = id пользователя, iat, exp.
// iat_ms дублирует iat в миллисекундах: стандартный iat округлен до секунды.
type Claims struct {
	jwt.RegisteredClaims
	IssuedAtMillis int64 `json:"iat_ms,omitempty"`
}

// IssuedAtTime - момент выдачи с точностью до миллисекунды
// (нулевое значение, если iat нет)
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAtMillis > 0 {
		return time.UnixMilli(c.IssuedAtMillis)
	}
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TokenService подписывает и проверяет сессионные токены (HS256)
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService: now == nil - time.Now
func NewTokenService(secret string, ttl time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue выдает токен для subjectID
func (s *TokenService) Issue(subjectID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		IssuedAtMillis: now.UnixMilli(),
	})
	return token.SignedString(s.secret)
}

// Parse проверяет подпись, алгоритм и срок действия.
// Возвращает ErrTokenExpired или ErrTokenInvalid.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
