package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"

	"github.com/dtroode/loginvault/internal/model"
)

// ErrNonLoopback is returned when a cleartext listener is asked to bind an
// address reachable from other hosts.
var ErrNonLoopback = errors.New("cleartext listener must bind a loopback address")

// TLSListener listens with TLS 1.3 using a certificate and key from disk.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
}

// NewTLSListener creates a new TLSListener instance.
func NewTLSListener(certFileName, privateKeyFileName string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

var (
	_ model.SecurityLayer = (*TLSListener)(nil)
	_ model.SecurityLayer = (*PlainListener)(nil)
)

// Listen loads the key pair and returns a TLS listener on addr.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}
	return tls.Listen(protocol, addr, tlsConfig)
}

// PlainListener listens without TLS. Credentials cross its connections in
// cleartext, so it only binds loopback addresses.
type PlainListener struct{}

// NewPlainListener creates a new PlainListener instance.
func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

// Listen returns a TCP listener on addr, which must be a loopback address.
func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if !isLoopback(host) {
		return nil, fmt.Errorf("%w: %q", ErrNonLoopback, addr)
	}
	return net.Listen(protocol, addr)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
