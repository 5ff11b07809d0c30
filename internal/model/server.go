package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener a server accepts connections on.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a transport serving the message protocol: gRPC or HTTP.
type Server interface {
	// Start blocks until the server stops.
	Start(securityLayer SecurityLayer) error
	// Stop drains in-flight requests until ctx ends.
	Stop(ctx context.Context) error
	Address() string
}
