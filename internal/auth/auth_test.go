package auth

import (
	"strings"
	"testing"
	"time"

	"natours_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenService_IssueAndParse(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", time.Hour, clock.Now)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, clock.t.Unix(), claims.IssuedAtTime().Unix())
	assert.Equal(t, clock.t.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenService_IssuedAtMillis(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 750*int(time.Millisecond), time.UTC)}
	svc := NewTokenService("secret", time.Hour, clock.Now)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, clock.t.UnixMilli(), claims.IssuedAtTime().UnixMilli())
	// Стандартный iat по-прежнему в целых секундах
	assert.Equal(t, clock.t.Unix(), claims.IssuedAt.Unix())
}

func TestTokenService_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewTokenService("secret", time.Minute, clock.Now)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := NewTokenService("one", time.Hour, nil).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour, nil).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, nil)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, nil)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Parse(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Parse(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RequiresSubject(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, nil)
	token, err := svc.Issue("")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("secret124", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("longenough"))
}

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, raw, 64)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, hash, HashResetToken(raw))

	raw2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(models.UserRoleAdmin, models.UserRoleLeadGuide)
	assert.True(t, set.Allows(models.UserRoleAdmin))
	assert.False(t, set.Allows(models.UserRoleGuide))
}

func TestCanManageReview(t *testing.T) {
	author := &models.User{BaseModel: models.BaseModel{ID: "u1"}, Role: models.UserRoleUser}
	other := &models.User{BaseModel: models.BaseModel{ID: "u2"}, Role: models.UserRoleUser}
	admin := &models.User{BaseModel: models.BaseModel{ID: "a1"}, Role: models.UserRoleAdmin}
	review := &models.Review{UserID: "u1"}

	assert.True(t, CanManageReview(author, review))
	assert.False(t, CanManageReview(other, review))
	assert.True(t, CanManageReview(admin, review))
	assert.False(t, CanManageReview(nil, review))
}
