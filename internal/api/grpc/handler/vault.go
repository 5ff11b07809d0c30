package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/loginvault/internal/api/grpc/vaultpb"
	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/messaging"
	"github.com/dtroode/loginvault/internal/model"
)

// Dispatcher runs a message through the gate and its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req messaging.Request) (any, error)
}

// Vault serves vault.v1.Vault by translating each call into a message.
type Vault struct {
	vaultpb.UnimplementedVaultServer

	dispatcher     Dispatcher
	contextManager model.SenderContextManager
	logger         *logger.Logger
}

// NewVault creates a new Vault handler.
func NewVault(dispatcher Dispatcher, contextManager model.SenderContextManager, logger *logger.Logger) *Vault {
	return &Vault{
		dispatcher:     dispatcher,
		contextManager: contextManager,
		logger:         logger,
	}
}

var _ vaultpb.VaultServer = (*Vault)(nil)

// GetCredentials returns the decrypted credentials or null.
func (h *Vault) GetCredentials(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return h.dispatch(ctx, messaging.GetCredentials, nil)
}

// GetSavedCodes returns the stored identifiers or null.
func (h *Vault) GetSavedCodes(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return h.dispatch(ctx, messaging.GetSavedCodes, nil)
}

// SaveCredentials stores the credentials in the request struct. A struct
// that cannot be encoded is dispatched without a payload, so the sender is
// still authorized first and the save then reports false.
func (h *Vault) SaveCredentials(ctx context.Context, in *structpb.Struct) (*structpb.Value, error) {
	var payload json.RawMessage
	if in != nil {
		b, err := protojson.Marshal(in)
		if err != nil {
			h.logger.Warn("failed to encode save payload", "error", err)
		} else {
			payload = b
		}
	}
	return h.dispatch(ctx, messaging.SaveCredentials, payload)
}

// ClearCredentials removes stored credentials and the session key.
func (h *Vault) ClearCredentials(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return h.dispatch(ctx, messaging.ClearCredentials, nil)
}

// CredentialsExist reports whether credentials are currently retrievable.
func (h *Vault) CredentialsExist(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return h.dispatch(ctx, messaging.CredentialsExist, nil)
}

func (h *Vault) dispatch(ctx context.Context, t messaging.Type, payload json.RawMessage) (*structpb.Value, error) {
	// Unattributed calls go through with the zero sender and the gate denies them.
	sender, _ := h.contextManager.GetSenderFromContext(ctx)

	result, err := h.dispatcher.Dispatch(ctx, messaging.NewRequest(t, sender, payload))
	if err != nil {
		return nil, handleError(err)
	}

	value, err := toValue(result)
	if err != nil {
		h.logger.Error("failed to encode result", "type", t, "error", err)
		return nil, handleError(err)
	}

	return value, nil
}

// toValue converts a handler result to a protobuf Value through its JSON
// form, so gRPC and HTTP clients see the same shape.
func toValue(result any) (*structpb.Value, error) {
	if result == nil {
		return structpb.NewNullValue(), nil
	}

	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	value, err := structpb.NewValue(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to build value: %w", err)
	}

	return value, nil
}
