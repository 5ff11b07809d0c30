package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/loginvault/internal/logger"
)

// Recovery turns handler panics into Internal errors.
type Recovery struct {
	logger *logger.Logger
}

// NewRecovery creates a new Recovery handler.
func NewRecovery(logger *logger.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// HandlePanic is a recovery.RecoveryHandlerFuncContext.
func (r *Recovery) HandlePanic(_ context.Context, p any) error {
	r.logger.Error("gRPC handler panicked", "panic", p, "stack", string(debug.Stack()))
	return status.Error(codes.Internal, "internal server error")
}
