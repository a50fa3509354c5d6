// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"github.com/wneessen/go-mail"
)

// SMTPSender sends mail via SMTP using go-mail.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender validates cfg and creates an SMTP sender.
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}
	if cfg.From == "" {
		return nil, ErrMissingFrom
	}
	return &SMTPSender{cfg: cfg}, nil
}

// NewMessage builds the message that Send delivers.
func (s *SMTPSender) NewMessage(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return msg, nil
}

// Send delivers the message over a fresh SMTP connection.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := s.NewMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	return opts
}
