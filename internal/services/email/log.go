// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
)

// LogSender writes mail to the structured log instead of delivering it.
// Intended for development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender() *LogSender {
	return &LogSender{logger: slog.Default()}
}

// NewLogSenderWithLogger logs to logger instead of the default logger.
func NewLogSenderWithLogger(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.InfoContext(ctx, "email_logged", "to", to, "subject", subject, "body", htmlBody)
	return nil
}
