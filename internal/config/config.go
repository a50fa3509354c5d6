// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	TLS      TLSConfig
	Session  SessionConfig
	Mail     MailConfig
	Auth     AuthConfig
}

type TLSConfig struct {
	Mode     string // auto, acme, selfsigned, manual, off
	CertDir  string // Directory for auto-generated certificates
	Email    string // ACME email for Let's Encrypt
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// MailConfig selects and configures the outbound mail driver.
type MailConfig struct { //nolint:govet // fieldalignment not critical
	Driver   string // smtp, ses, log
	From     string
	FromName string
	SMTP     SMTPConfig
	SES      SESConfig
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type SESConfig struct {
	Region          string
	AccessKeyID     string // optional, falls back to the default AWS credential chain
	SecretAccessKey string
	From            string
	FromName        string
}

// AuthConfig holds request limits for the public authentication endpoints.
type AuthConfig struct {
	RateLimit float64 // requests per second per client IP
	RateBurst int
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Mail: MailConfig{
			Driver:   cmd.String("mail-driver"),
			From:     cmd.String("mail-from"),
			FromName: cmd.String("mail-from-name"),
			SMTP: SMTPConfig{
				Host:     cmd.String("smtp-host"),
				Port:     int(cmd.Int("smtp-port")),
				Username: cmd.String("smtp-username"),
				Password: cmd.String("smtp-password"),
				TLS:      cmd.Bool("smtp-tls"),
			},
			SES: SESConfig{
				Region:          cmd.String("ses-region"),
				AccessKeyID:     cmd.String("ses-access-key-id"),
				SecretAccessKey: cmd.String("ses-secret-access-key"),
			},
		},
		Auth: AuthConfig{
			RateLimit: cmd.Float("auth-rate-limit"),
			RateBurst: int(cmd.Int("auth-rate-burst")),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	applyMailDefaults(&cfg.Mail)

	return cfg
}

// applyMailDefaults picks a driver when none is set and copies the sender
// identity into the driver configs.
func applyMailDefaults(cfg *MailConfig) {
	if cfg.Driver == "" {
		switch {
		case cfg.SMTP.Host != "":
			cfg.Driver = "smtp"
		case cfg.SES.Region != "":
			cfg.Driver = "ses"
		default:
			cfg.Driver = "log"
		}
	}
	cfg.Driver = strings.ToLower(cfg.Driver)

	if cfg.FromName == "" {
		cfg.FromName = "Hotel Oasis"
	}
	cfg.SMTP.From, cfg.SMTP.FromName = cfg.From, cfg.FromName
	cfg.SES.From, cfg.SES.FromName = cfg.From, cfg.FromName
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := strings.ToLower(cfg.TLS.Mode)

	// Determine if TLS will be used
	useTLS := shouldUseTLS(mode, host)

	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	// ACME mode always uses port 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode, host string) bool {
	switch mode {
	case "off":
		return false
	case "acme", "selfsigned", "manual":
		return true
	default: // "auto" or empty
		return !IsLocalhost(host)
	}
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, acme, selfsigned, manual, off)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_MODE"), toml.TOML("tls.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for auto-generated certificates",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_DIR"), toml.TOML("tls.cert_dir", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for ACME/Let's Encrypt registration",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_EMAIL"), toml.TOML("tls.email", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// Session flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "_session",
			Usage:   "Session cookie name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_COOKIE_NAME"), toml.TOML("session.cookie_name", configFile)),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Session max age in seconds",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_MAX_AGE"), toml.TOML("session.max_age", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_HASH_KEY"), toml.TOML("session.hash_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SESSION_BLOCK_KEY"), toml.TOML("session.block_key", configFile)),
		},
		// Mail flags
		&cli.StringFlag{
			Name:    "mail-driver",
			Usage:   "Mail driver (smtp, ses, log); derived from the other mail settings if empty",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_DRIVER"), toml.TOML("mail.driver", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Value:   "no-reply@localhost",
			Usage:   "Sender address for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM"), toml.TOML("mail.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Value:   "Hotel Oasis",
			Usage:   "Sender display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("mail.smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("mail.smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("mail.smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("mail.smtp.password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("mail.smtp.tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "ses-region",
			Usage:   "AWS region for Amazon SES",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SES_REGION"), toml.TOML("mail.ses.region", configFile)),
		},
		&cli.StringFlag{
			Name:    "ses-access-key-id",
			Usage:   "AWS access key id for Amazon SES (optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SES_ACCESS_KEY_ID"), toml.TOML("mail.ses.access_key_id", configFile)),
		},
		&cli.StringFlag{
			Name:    "ses-secret-access-key",
			Usage:   "AWS secret access key for Amazon SES (optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SES_SECRET_ACCESS_KEY"), toml.TOML("mail.ses.secret_access_key", configFile)),
		},
		// Auth flags
		&cli.FloatFlag{
			Name:    "auth-rate-limit",
			Value:   0.2,
			Usage:   "Requests per second per client on login and password reset endpoints",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AUTH_RATE_LIMIT"), toml.TOML("auth.rate_limit", configFile)),
		},
		&cli.IntFlag{
			Name:    "auth-rate-burst",
			Value:   5,
			Usage:   "Burst size for the authentication rate limiter",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AUTH_RATE_BURST"), toml.TOML("auth.rate_burst", configFile)),
		},
	}
}
