package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"natours_backend/internal/auth"
	"natours_backend/internal/email"
	"natours_backend/internal/services"
	"natours_backend/test/helpers"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testTokenTTL     = 90 * 24 * time.Hour
	testResetTTL     = 10 * time.Minute
	testResetURLBase = "http://localhost:8080/api/v1/users/resetPassword"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// fakeClock - управляемое время для токенов и сброса пароля
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *gorm.DB
	clock    *fakeClock
	notifier *mockNotifier
	svc      *services.ServiceContainer

	mu   sync.Mutex
	sent []email.Message
}

// newTestEnv: notifier по умолчанию принимает все письма и запоминает их
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnvWithNotifier(t, &mockNotifier{})
	env.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.sent = append(env.sent, args.Get(1).(email.Message))
		}).
		Return(nil)
	return env
}

func newTestEnvWithNotifier(t *testing.T, n *mockNotifier) *testEnv {
	t.Helper()
	clock := newFakeClock()
	tokens := auth.NewTokenService("test-secret", testTokenTTL, clock.Now)

	return &testEnv{
		db:       helpers.NewTestDB(t),
		clock:    clock,
		notifier: n,
		svc: services.NewServiceContainer(tokens, n, services.AuthOptions{
			BcryptCost:          bcrypt.MinCost,
			ResetTokenTTL:       testResetTTL,
			PasswordChangedSkew: 0,
			Now:                 clock.Now,
		}),
	}
}

func (e *testEnv) lastMessage() (email.Message, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.sent) == 0 {
		return email.Message{}, false
	}
	return e.sent[len(e.sent)-1], true
}
