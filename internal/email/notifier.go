package email

import "context"

// Message - письмо одному получателю
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier доставляет письма. Ошибка значит, что письмо не ушло.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc позволяет использовать функцию как Notifier
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
