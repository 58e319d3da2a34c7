package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"natours_backend/internal/app"
	"natours_backend/internal/auth"
	"natours_backend/internal/config"
	"natours_backend/internal/email"
	"natours_backend/internal/services"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RecordingNotifier запоминает отправленные письма
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []email.Message
}

func (n *RecordingNotifier) Notify(_ context.Context, msg email.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

// Last - последнее письмо получателю или false
func (n *RecordingNotifier) Last(recipient string) (email.Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].Recipient == recipient {
			return n.sent[i], true
		}
	}
	return email.Message{}, false
}

type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Services *services.ServiceContainer
	Notifier *RecordingNotifier
	Config   *config.Config
}

// NewTestServer поднимает полный роутер поверх in-memory БД.
// Конфиг собирается в коде, файл и окружение не читаются.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret-for-natours-handlers-32b"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	require.NoError(t, cfg.Validate())

	db := NewTestDB(t)
	notifier := &RecordingNotifier{}
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, time.Now)
	svc := services.NewServiceContainer(tokens, notifier, services.AuthOptions{
		BcryptCost:          cfg.Auth.BcryptCost,
		ResetTokenTTL:       cfg.Auth.ResetTokenTTL,
		PasswordChangedSkew: cfg.Auth.PasswordChangedSkew,
		Now:                 time.Now,
	})

	server := httptest.NewServer(app.SetupRouter(cfg, db, svc))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		DB:       db,
		Services: svc,
		Notifier: notifier,
		Config:   cfg,
	}
}

// SendRequest отправляет JSON-запрос; token передается как Bearer
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err, "Ошибка создания HTTP-запроса")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	require.NoError(t, err, "Ошибка чтения тела ответа")

	return res, string(resBodyBytes)
}

// Login возвращает токен для существующего пользователя
func (ts *TestServer) Login(t *testing.T, emailAddr, password string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    emailAddr,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}
