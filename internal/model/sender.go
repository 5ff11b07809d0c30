package model

import "context"

// Surface identifies which kind of execution context sent a message.
type Surface string

const (
	// SurfaceUI is the extension's own configuration UI.
	SurfaceUI Surface = "ui"
	// SurfacePage is an agent injected into a loaded page.
	SurfacePage Surface = "page"
)

// Sender describes the attributed origin of a message. The zero value is an
// unattributed sender.
type Sender struct {
	ExtensionID string
	Surface     Surface
	URL         string
}

// Attributed reports whether the sender carries any extension identity.
func (s Sender) Attributed() bool {
	return s.ExtensionID != ""
}

// SenderContextManager stores and retrieves the attributed sender of a request.
type SenderContextManager interface {
	SetSenderToContext(ctx context.Context, sender Sender) context.Context
	GetSenderFromContext(ctx context.Context) (Sender, bool)
}

// SenderTokenManager mints and verifies sender tokens.
type SenderTokenManager interface {
	GenerateSenderToken(sender Sender) (string, error)
	ParseSenderToken(token string) (Sender, error)
}
