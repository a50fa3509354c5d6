// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const charset = "UTF-8"

// SESClient is the subset of the SES API used for sending.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends mail through Amazon SES. The from address must be
// verified with SES.
type SESSender struct {
	client SESClient
	source string
}

// NewSESSender loads the AWS configuration for cfg.Region. Static
// credentials are used when configured, the default chain otherwise.
func NewSESSender(ctx context.Context, cfg *config.SESConfig) (*SESSender, error) {
	if cfg.Region == "" {
		return nil, errors.New("SES region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return NewSESSenderWithClient(ses.NewFromConfig(awsCfg), cfg)
}

// NewSESSenderWithClient creates a sender on top of an existing client.
func NewSESSenderWithClient(client SESClient, cfg *config.SESConfig) (*SESSender, error) {
	if cfg.From == "" {
		return nil, ErrMissingFrom
	}
	return &SESSender{client: client, source: formatAddress(cfg.FromName, cfg.From)}, nil
}

// Send delivers the message with SES SendEmail.
func (s *SESSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charset)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending email via SES: %w", err)
	}
	return nil
}
