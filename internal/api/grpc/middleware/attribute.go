package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
)

// AttributeSender resolves the sender of a call from its bearer sender token.
type AttributeSender struct {
	tokens         model.SenderTokenManager
	contextManager model.SenderContextManager
	logger         *logger.Logger
}

// NewAttributeSender creates a new AttributeSender middleware instance.
func NewAttributeSender(tokens model.SenderTokenManager, contextManager model.SenderContextManager, logger *logger.Logger) *AttributeSender {
	return &AttributeSender{tokens: tokens, contextManager: contextManager, logger: logger}
}

// AuthFunc never rejects a call. A missing or invalid token leaves the call
// unattributed and the gate answers it with null, the same answer a denied
// sender gets.
func (m *AttributeSender) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return ctx, nil
	}

	sender, err := m.tokens.ParseSenderToken(tokenString)
	if err != nil {
		m.logger.Debug("sender token rejected", "error", err)
		return ctx, nil
	}

	return m.contextManager.SetSenderToContext(ctx, sender), nil
}
