// Package mailer delivers transactional email. It exposes a minimal
// sender interface with a Postmark implementation for production and a
// log-only implementation for development.
package mailer

import (
	"context"
	"errors"
)

var (
	ErrInvalidConfig     = errors.New("invalid mailer configuration")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

// Config holds mailer configuration.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
}

// SendEmailParams describes one outbound message.
type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	Tag      string
}

// EmailSender sends a single transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}
