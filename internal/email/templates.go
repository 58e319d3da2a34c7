package email

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	TemplatePasswordReset = "password_reset"
	TemplateWelcome       = "welcome"
)

var templates = template.Must(template.New(TemplatePasswordReset).Parse(
	`Hi {{.FirstName}},

Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: {{.URL}}
The link is valid for {{.ValidFor}}.
If you didn't forget your password, please ignore this email!
`))

func init() {
	template.Must(templates.New(TemplateWelcome).Parse(
		`Hi {{.FirstName}},

Welcome to Natours, we're glad to have you!
`))
}

type templateData struct {
	FirstName string
	URL       string
	ValidFor  string
}

func render(name string, data templateData) (string, error) {
	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

// PasswordResetMessage - письмо со ссылкой сброса пароля
func PasswordResetMessage(recipient, name, resetURL, validFor string) (Message, error) {
	body, err := render(TemplatePasswordReset, templateData{
		FirstName: firstName(name),
		URL:       resetURL,
		ValidFor:  validFor,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Recipient: recipient,
		Subject:   fmt.Sprintf("Your password reset token (valid for %s)", validFor),
		Body:      body,
	}, nil
}

// WelcomeMessage - письмо после регистрации
func WelcomeMessage(recipient, name string) (Message, error) {
	body, err := render(TemplateWelcome, templateData{FirstName: firstName(name)})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Recipient: recipient,
		Subject:   "Welcome to the Natours Family!",
		Body:      body,
	}, nil
}
