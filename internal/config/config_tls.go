package config

import (
	"crypto/tls"
	"fmt"
)

const (
	TLSModeDisabled = "disabled"
	TLSModeServer   = "server"
)

var tlsVersions = map[string]uint16{
	"":    tls.VersionTLS12,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Enabled reports whether the server should terminate TLS itself
func (t TLSConfig) Enabled() bool {
	return t.Mode == TLSModeServer
}

// MinVersionID maps MinVersion onto a crypto/tls constant, TLS 1.2 when unset
func (t TLSConfig) MinVersionID() uint16 {
	if v, ok := tlsVersions[t.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

// ValidateTLSConfig checks the mode, the key pair paths and the minimum version
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	switch t.Mode {
	case TLSModeDisabled, "":
	case TLSModeServer:
		if t.CertFile == "" || t.KeyFile == "" {
			return fmt.Errorf("TLS certificate and key files are required for server mode")
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be '%s' or '%s')", t.Mode, TLSModeDisabled, TLSModeServer)
	}

	if _, ok := tlsVersions[t.MinVersion]; !ok {
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
	return nil
}
