// Package messaging routes typed requests from client contexts to handlers
// through an ordered middleware chain.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
)

// Type names a message kind.
type Type string

const (
	GetCredentials   Type = "GET_CREDENTIALS"
	GetSavedCodes    Type = "GET_SAVED_CODES"
	SaveCredentials  Type = "SAVE_CREDENTIALS"
	ClearCredentials Type = "CLEAR_CREDENTIALS"
	CredentialsExist Type = "CREDENTIALS_EXIST"
)

// Request is one message from a client context.
type Request struct {
	ID      uuid.UUID
	Type    Type
	Sender  model.Sender
	Payload json.RawMessage
}

// NewRequest creates a request with a fresh ID.
func NewRequest(t Type, sender model.Sender, payload json.RawMessage) Request {
	return Request{
		ID:      uuid.New(),
		Type:    t,
		Sender:  sender,
		Payload: payload,
	}
}

// Handler serves one request. A nil result is sent to the client as null.
type Handler func(ctx context.Context, req Request) (any, error)

// Middleware wraps a Handler. It may short-circuit without calling next.
type Middleware func(next Handler) Handler

// Router dispatches requests by type.
type Router struct {
	handlers    map[Type]Handler
	middlewares []Middleware
	logger      *logger.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger *logger.Logger) *Router {
	return &Router{
		handlers: make(map[Type]Handler),
		logger:   logger,
	}
}

// Use appends middleware. The first registered middleware runs outermost.
func (r *Router) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Handle registers the handler for a message type.
func (r *Router) Handle(t Type, h Handler) {
	r.handlers[t] = h
}

// Dispatch runs req through the middleware chain and its handler.
func (r *Router) Dispatch(ctx context.Context, req Request) (any, error) {
	h, ok := r.handlers[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMessage, req.Type)
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}

	return h(ctx, req)
}

// Logging logs each request with its outcome and duration.
func Logging(l *logger.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) (any, error) {
			start := time.Now()

			l.Debug("message received",
				"request_id", req.ID,
				"type", req.Type,
				"surface", req.Sender.Surface)

			result, err := next(ctx, req)

			args := []any{
				"request_id", req.ID,
				"type", req.Type,
				"duration_ms", time.Since(start).Milliseconds(),
				"null_result", result == nil,
			}
			if err != nil {
				l.Error("message failed", append(args, "error", err.Error())...)
				return result, err
			}
			l.Info("message handled", args...)

			return result, err
		}
	}
}
