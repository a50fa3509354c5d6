// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/oliverandrich/hotel-backoffice/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode represents the resolved TLS mode.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

// selfSignedValidity is the lifetime of generated certificates; they are
// regenerated once less than selfSignedRenewBefore remains.
const (
	selfSignedValidity    = 365 * 24 * time.Hour
	selfSignedRenewBefore = 30 * 24 * time.Hour
)

var errACMEEmail = errors.New("ACME mode requires --tls-email")

// TLSResult contains the resolved TLS configuration.
type TLSResult struct {
	TLSConfig   *tls.Config
	HTTPHandler http.Handler // ACME challenge and HTTPS redirect, ACME only
	Mode        TLSMode
}

// SetupTLS resolves the TLS mode and loads or creates the certificate.
func SetupTLS(cfg *config.Config) (*TLSResult, error) {
	mode := resolveTLSMode(cfg)
	slog.Info("TLS mode", "mode", mode)

	switch mode {
	case TLSModeOff:
		return &TLSResult{Mode: TLSModeOff}, nil
	case TLSModeACME:
		return setupACME(cfg)
	case TLSModeSelfSigned:
		return setupSelfSigned(cfg, time.Now())
	case TLSModeManual:
		return setupManual(cfg)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", mode)
	}
}

// resolveTLSMode honors an explicit mode. In auto mode localhost runs
// without TLS, configured cert files win, a public hostname with an ACME
// email gets Let's Encrypt, and everything else a self-signed certificate.
func resolveTLSMode(cfg *config.Config) TLSMode {
	switch mode := strings.ToLower(cfg.TLS.Mode); mode {
	case "off", "acme", "selfsigned", "manual":
		return TLSMode(mode)
	case "auto", "":
	default:
		slog.Warn("unknown TLS mode, using auto", "mode", mode)
	}

	host := cfg.Server.Host
	switch {
	case config.IsLocalhost(host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	case cfg.TLS.Email != "" && net.ParseIP(host) == nil:
		return TLSModeACME
	default:
		return TLSModeSelfSigned
	}
}

func setupACME(cfg *config.Config) (*TLSResult, error) {
	if cfg.TLS.Email == "" {
		return nil, errACMEEmail
	}
	if cfg.Server.Port != 443 {
		slog.Warn("ACME mode listens on :443, configured port is ignored", "port", cfg.Server.Port)
	}

	certDir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(certDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ACME cert directory: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(certDir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	return &TLSResult{
		Mode:        TLSModeACME,
		TLSConfig:   tlsConfig,
		HTTPHandler: manager.HTTPHandler(nil),
	}, nil
}

// setupSelfSigned reuses the stored certificate unless it is unreadable or
// close to expiry, in which case a new one is generated.
func setupSelfSigned(cfg *config.Config, now time.Time) (*TLSResult, error) {
	certDir := filepath.Join(cfg.TLS.CertDir, "selfsigned")
	if err := os.MkdirAll(certDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create self-signed cert directory: %w", err)
	}
	certFile := filepath.Join(certDir, "cert.pem")
	keyFile := filepath.Join(certDir, "key.pem")

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil || expiresBefore(&cert, now.Add(selfSignedRenewBefore)) {
		slog.Info("generating self-signed certificate", "dir", certDir)
		generated, genErr := generateSelfSignedCert(cfg.Server.Host, certFile, keyFile, now)
		if genErr != nil {
			return nil, genErr
		}
		cert = *generated
	}

	logCertFingerprint(&cert)
	slog.Warn("self-signed certificate in use, browsers will ask to trust it")

	return &TLSResult{Mode: TLSModeSelfSigned, TLSConfig: newTLSConfig(&cert)}, nil
}

func setupManual(cfg *config.Config) (*TLSResult, error) {
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, errors.New("manual TLS mode requires both --tls-cert-file and --tls-key-file")
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	logCertFingerprint(&cert)

	return &TLSResult{Mode: TLSModeManual, TLSConfig: newTLSConfig(&cert)}, nil
}

// generateSelfSignedCert writes an ECDSA P-256 certificate for host plus the
// loopback names and returns it loaded.
func generateSelfSignedCert(host, certFile, keyFile string, now time.Time) (*tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Hotel Back Office"}, CommonName: host},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = append(template.IPAddresses, ip)
	} else if host != "" {
		template.DNSNames = append(template.DNSNames, host)
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write cert file: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated cert: %w", err)
	}
	return &cert, nil
}

// expiresBefore reports whether the leaf certificate is unusable at t.
func expiresBefore(cert *tls.Certificate, t time.Time) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return leaf.NotAfter.Before(t)
}

func logCertFingerprint(cert *tls.Certificate) {
	if len(cert.Certificate) == 0 {
		return
	}
	sum := sha256.Sum256(cert.Certificate[0])
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	slog.Info("certificate fingerprint", "sha256", strings.Join(parts, ":"))
}

func newTLSConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}
