// Package httpapi serves the message protocol over HTTP for client contexts
// that cannot speak gRPC.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/messaging"
	"github.com/dtroode/loginvault/internal/model"
)

// maxBodySize bounds a message body.
const maxBodySize = 64 * 1024

// Dispatcher runs a message through the gate and its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req messaging.Request) (any, error)
}

type messageRequest struct {
	Type    messaging.Type  `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type messageResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler translates HTTP requests into messages.
type Handler struct {
	dispatcher Dispatcher
	tokens     model.SenderTokenManager
	logger     *logger.Logger
}

// NewHandler creates a new message handler.
func NewHandler(dispatcher Dispatcher, tokens model.SenderTokenManager, logger *logger.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, tokens: tokens, logger: logger}
}

// HandleMessage serves POST /v1/messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if body.Type == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message type is required"})
		return
	}

	req := messaging.NewRequest(body.Type, h.sender(r), body.Payload)
	result, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal server error"
		switch {
		case errors.Is(err, model.ErrUnknownMessage):
			status, msg = http.StatusBadRequest, "unknown message type"
		default:
			h.logger.Error("message dispatch failed", "request_id", req.ID, "error", err)
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Result: result})
}

// sender attributes the request from its bearer sender token. Requests
// without a valid token are unattributed, and the gate answers them with null.
func (h *Handler) sender(r *http.Request) model.Sender {
	header := r.Header.Get("Authorization")
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
		return model.Sender{}
	}

	sender, err := h.tokens.ParseSenderToken(tokenString)
	if err != nil {
		h.logger.Debug("sender token rejected", "error", err)
		return model.Sender{}
	}
	return sender
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
