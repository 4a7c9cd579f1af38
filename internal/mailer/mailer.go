// Package mailer sends the transactional emails of the account lifecycle.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"tourapi/internal/config"
	"tourapi/internal/logging"
	"tourapi/internal/model"
	"tourapi/internal/views"
)

// Mailer delivers account emails. url is the call-to-action link.
type Mailer interface {
	SendWelcome(ctx context.Context, u *model.User, url string) error
	SendPasswordReset(ctx context.Context, u *model.User, url string) error
}

// transport is satisfied by *mail.Client.
type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTP sends mail through an SMTP relay.
type SMTP struct {
	client   transport
	from     string
	fromName string
}

// New returns an SMTP mailer, or a mailer that only logs when no host is configured.
func New(cfg config.MailConfig, log *logging.Logger) (Mailer, error) {
	if cfg.Host == "" {
		return &LogOnly{log: log}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTP{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

func (s *SMTP) SendWelcome(ctx context.Context, u *model.User, url string) error {
	return s.send(ctx, u, welcome(url))
}

func (s *SMTP) SendPasswordReset(ctx context.Context, u *model.User, url string) error {
	return s.send(ctx, u, passwordReset(url))
}

func (s *SMTP) send(ctx context.Context, u *model.User, m message) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.AddToFormat(u.Name, u.Email); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.subject)

	var html strings.Builder
	if err := views.Email(firstName(u.Name), m.paragraphs, m.button, m.url).Render(ctx, &html); err != nil {
		return fmt.Errorf("render mail: %w", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, m.plain())
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogOnly records mails instead of sending them.
type LogOnly struct {
	log *logging.Logger
}

func (l *LogOnly) SendWelcome(_ context.Context, u *model.User, url string) error {
	l.record(u, welcome(url))
	return nil
}

func (l *LogOnly) SendPasswordReset(_ context.Context, u *model.User, url string) error {
	l.record(u, passwordReset(url))
	return nil
}

func (l *LogOnly) record(u *model.User, m message) {
	l.log.Info("mail_not_sent", map[string]any{
		"component": "mailer",
		"to":        u.Email,
		"subject":   m.subject,
		"url":       m.url,
	})
}

type message struct {
	subject    string
	paragraphs []string
	button     string
	url        string
}

func (m message) plain() string {
	return strings.Join(m.paragraphs, "\n\n") + "\n\n" + m.url + "\n"
}

func welcome(url string) message {
	return message{
		subject: "Welcome to the Natours Family!",
		paragraphs: []string{
			"Welcome to Natours, we're glad to have you 🎉🙏",
			"We're all a big family here, so make sure to upload your user photo so we get to know you a bit better!",
		},
		button: "Upload user photo",
		url:    url,
	}
}

func passwordReset(url string) message {
	return message{
		subject: "Your password reset token (valid for only 10 minutes)",
		paragraphs: []string{
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to the link below.",
			"If you didn't forget your password, please ignore this email!",
		},
		button: "Reset your password",
		url:    url,
	}
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}
