package messaging

import (
	"context"
	"encoding/json"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
)

// VaultService is the vault surface exposed over messages.
type VaultService interface {
	Save(ctx context.Context, creds model.Credentials) error
	Get(ctx context.Context) (model.Credentials, bool)
	GetSavedIdentifiers(ctx context.Context) (model.Identifiers, bool)
	Exists(ctx context.Context) bool
	Clear(ctx context.Context) error
}

// RegisterVault registers handlers for every vault message type.
func RegisterVault(r *Router, vault VaultService, logger *logger.Logger) {
	h := &vaultHandlers{vault: vault, logger: logger}

	r.Handle(GetCredentials, h.getCredentials)
	r.Handle(GetSavedCodes, h.getSavedCodes)
	r.Handle(SaveCredentials, h.saveCredentials)
	r.Handle(ClearCredentials, h.clearCredentials)
	r.Handle(CredentialsExist, h.credentialsExist)
}

type vaultHandlers struct {
	vault  VaultService
	logger *logger.Logger
}

func (h *vaultHandlers) getCredentials(ctx context.Context, _ Request) (any, error) {
	creds, ok := h.vault.Get(ctx)
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

func (h *vaultHandlers) getSavedCodes(ctx context.Context, _ Request) (any, error) {
	ids, ok := h.vault.GetSavedIdentifiers(ctx)
	if !ok {
		return nil, nil
	}
	return &ids, nil
}

func (h *vaultHandlers) saveCredentials(ctx context.Context, req Request) (any, error) {
	var creds model.Credentials
	if err := json.Unmarshal(req.Payload, &creds); err != nil {
		h.logger.Warn("messaging: undecodable save payload", "request_id", req.ID, "error", err)
		return false, nil
	}

	if err := h.vault.Save(ctx, creds); err != nil {
		h.logger.Warn("messaging: save rejected", "request_id", req.ID, "error", err)
		return false, nil
	}
	return true, nil
}

func (h *vaultHandlers) clearCredentials(ctx context.Context, req Request) (any, error) {
	if err := h.vault.Clear(ctx); err != nil {
		h.logger.Warn("messaging: clear failed", "request_id", req.ID, "error", err)
		return false, nil
	}
	return true, nil
}

func (h *vaultHandlers) credentialsExist(ctx context.Context, _ Request) (any, error) {
	return h.vault.Exists(ctx), nil
}
