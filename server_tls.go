//go:build !tinygo

package sonar

import (
	"golang.org/x/crypto/acme/autocert"
)

// ServeTLS serves HTTPS for host with certificates from Let's Encrypt
func (s *Server) ServeTLS(host string) error {
	return s.Serve(autocert.NewListener(host))
}
