package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS loads the key pair into httpServer when TLS is enabled
func (s *Server) configureTLS(httpServer *http.Server) error {
	if !s.TLSConfig.Enabled() {
		fmt.Printf("Starting server on http://%s (TLS disabled)\n", httpServer.Addr)
		return nil
	}

	if s.TLSConfig.CertFile == "" || s.TLSConfig.KeyFile == "" {
		return fmt.Errorf("failed to set up TLS: certificate and key files are required in server mode")
	}
	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to set up TLS: failed to load server cert/key: %w", err)
	}

	httpServer.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   s.TLSConfig.MinVersionID(),
	}
	fmt.Printf("Starting server with HTTPS on https://%s\n", httpServer.Addr)
	return nil
}
