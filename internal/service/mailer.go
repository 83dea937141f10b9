package service

import (
	"context"
	"log/slog"
)

// Mailer delivers account mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes mail to the log instead of sending it.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.InfoContext(ctx, "Mail queued", slog.String("to", to), slog.String("subject", subject), slog.String("body", body))
	return nil
}
