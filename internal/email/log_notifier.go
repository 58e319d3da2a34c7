package email

import (
	"context"

	"natours_backend/internal/logger"
)

// LogNotifier пишет в лог факт письма вместо отправки (email.enabled = false).
// Тело не логируется: в нем ссылка со сбросным токеном.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	logger.CtxInfo(ctx, "email not sent (delivery disabled)",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"body_bytes", len(msg.Body),
	)
	return nil
}
