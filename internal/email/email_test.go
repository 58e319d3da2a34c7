package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"natours_backend/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func testConfig() *SMTPConfig {
	cfg := DefaultConfig()
	cfg.FromEmail = "hello@natours.io"
	cfg.FromName = "Natours"
	return cfg
}

func TestSMTPNotifier_Notify(t *testing.T) {
	n, err := NewSMTPNotifier(testConfig())
	require.NoError(t, err)
	fd := &fakeDialer{}
	n.dialer = fd

	err = n.Notify(context.Background(), Message{Recipient: "a@x.com", Subject: "Hi", Body: "body"})
	require.NoError(t, err)
	require.Len(t, fd.sent, 1)
	assert.Equal(t, []string{"a@x.com"}, fd.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, fd.sent[0].GetHeader("Subject"))
}

func TestSMTPNotifier_PropagatesFailure(t *testing.T) {
	n, err := NewSMTPNotifier(testConfig())
	require.NoError(t, err)
	n.dialer = &fakeDialer{err: errors.New("connection refused")}

	err = n.Notify(context.Background(), Message{Recipient: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPNotifier_CancelledContext(t *testing.T) {
	n, err := NewSMTPNotifier(testConfig())
	require.NoError(t, err)
	fd := &fakeDialer{}
	n.dialer = fd

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, Message{Recipient: "a@x.com"}), context.Canceled)
	assert.Empty(t, fd.sent)
}

func TestNewSMTPNotifier_InvalidConfig(t *testing.T) {
	_, err := NewSMTPNotifier(&SMTPConfig{Port: 25})
	assert.Error(t, err)
}

func TestPasswordResetMessage(t *testing.T) {
	msg, err := PasswordResetMessage("a@x.com", "Jonas Schmedtmann", "http://host/api/v1/users/resetPassword/tok", "10 minutes")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", msg.Recipient)
	assert.Contains(t, msg.Subject, "10 minutes")
	assert.Contains(t, msg.Body, "Hi Jonas,")
	assert.Contains(t, msg.Body, "http://host/api/v1/users/resetPassword/tok")
}

func TestWelcomeMessage(t *testing.T) {
	msg, err := WelcomeMessage("a@x.com", "")
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Hi there,")
}

func TestLogNotifier_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("production", &buf)
	t.Cleanup(func() { logger.Init("development") })

	const resetToken = "4f1c0e9b7a2d5e8f4f1c0e9b7a2d5e8f4f1c0e9b7a2d5e8f4f1c0e9b7a2d5e8f"
	err := NewLogNotifier().Notify(context.Background(), Message{
		Recipient: "a@x.com",
		Subject:   "Your password reset token (valid for 10 min)",
		Body:      "Reset here: http://localhost/api/v1/users/resetPassword/" + resetToken,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a@x.com")
	assert.Contains(t, out, `"body_bytes"`)
	assert.NotContains(t, out, resetToken)
}
