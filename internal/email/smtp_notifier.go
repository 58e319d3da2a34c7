package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// dialer - то, что нужно от gomail.Dialer (подменяется в тестах)
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier отправляет письма через gomail
type SMTPNotifier struct {
	config *SMTPConfig
	dialer dialer
}

func NewSMTPNotifier(config *SMTPConfig) (*SMTPNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SMTPNotifier{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := n.buildMessage(msg)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.Recipient, err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.config.FromEmail, n.config.FromName)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
