package mailer

import (
	"context"
	"log/slog"
)

type devSender struct {
	log *slog.Logger
}

// NewDevSender returns an EmailSender that logs messages instead of
// delivering them. For local development and tests.
func NewDevSender(log *slog.Logger) EmailSender {
	if log == nil {
		log = slog.Default()
	}
	return &devSender{log: log}
}

func (s *devSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	s.log.InfoContext(ctx, "email suppressed (dev sender)",
		"to", params.SendTo, "subject", params.Subject, "tag", params.Tag)
	return nil
}
