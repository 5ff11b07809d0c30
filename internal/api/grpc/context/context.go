package context

import (
	"context"

	"github.com/dtroode/loginvault/internal/model"
)

type senderKey struct{}

// Manager stores the attributed sender of a gRPC call in its context.
// The sender lives in a private context value rather than in incoming
// metadata, so a client cannot claim a sender by sending a header.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

var _ model.SenderContextManager = (*Manager)(nil)

// SetSenderToContext returns a context carrying sender.
func (m *Manager) SetSenderToContext(ctx context.Context, sender model.Sender) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}

// GetSenderFromContext returns the sender set by SetSenderToContext. The
// boolean is false when the call was never attributed.
func (m *Manager) GetSenderFromContext(ctx context.Context) (model.Sender, bool) {
	sender, ok := ctx.Value(senderKey{}).(model.Sender)
	if !ok || !sender.Attributed() {
		return model.Sender{}, false
	}
	return sender, true
}
