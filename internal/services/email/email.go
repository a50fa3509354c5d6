// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers HTML mail through SMTP, Amazon SES or the log.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
)

var (
	ErrMissingHost = errors.New("SMTP host is required")
	ErrMissingFrom = errors.New("from address is required")
)

// Sender delivers a single HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New returns the sender selected by cfg.Driver.
func New(ctx context.Context, cfg *config.MailConfig) (Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPSender(&cfg.SMTP)
	case "ses":
		return NewSESSender(ctx, &cfg.SES)
	case "log", "":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// formatAddress renders a display name and address as a header value.
func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}
