package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/secret"
)

// KeyProvider supplies the session key to the vault.
type KeyProvider interface {
	GetOrCreateKey(ctx context.Context) (Key, error)
	GetKey(ctx context.Context) (Key, bool, error)
	Clear(ctx context.Context) error
}

// Vault stores login credentials with the password sealed under the session
// key. Password plaintext never reaches the durable store.
type Vault struct {
	durable model.DurableStore
	keys    KeyProvider
	logger  *logger.Logger
}

// NewVault creates a Vault over the given durable store and key provider.
func NewVault(durable model.DurableStore, keys KeyProvider, logger *logger.Logger) *Vault {
	return &Vault{
		durable: durable,
		keys:    keys,
		logger:  logger,
	}
}

// Save validates and stores credentials. The four durable fields are written
// in one call. Save keeps running if the caller goes away.
func (v *Vault) Save(ctx context.Context, creds model.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	key, err := v.keys.GetOrCreateKey(ctx)
	if err != nil {
		v.logger.Error("Vault: failed to obtain session key", "error", err)
		return fmt.Errorf("failed to obtain session key: %w", err)
	}

	password := []byte(creds.Password)
	defer secret.Wipe(password)

	blob, err := key.Seal(password)
	if err != nil {
		v.logger.Error("Vault: failed to seal password", "error", err)
		return fmt.Errorf("failed to seal password: %w", err)
	}

	err = v.durable.Set(ctx, map[string][]byte{
		model.KeyCompanyCode:        []byte(creds.CompanyCode),
		model.KeyEmployeeCode:       []byte(creds.EmployeeCode),
		model.KeyPasswordCiphertext: blob.Ciphertext,
		model.KeyPasswordNonce:      blob.Nonce,
	})
	if err != nil {
		v.logger.Error("Vault: failed to persist credentials", "error", err)
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	v.logger.Info("Vault: credentials saved",
		"company_code", creds.CompanyCode,
		"employee_code", creds.EmployeeCode)

	return nil
}

// Get returns the stored credentials. It reports false when no session key
// is resident, when any field is missing, or when the blob does not open
// under the current key; these cases all call for a fresh Save.
func (v *Vault) Get(ctx context.Context) (model.Credentials, bool) {
	key, ok, err := v.keys.GetKey(ctx)
	if err != nil {
		v.logger.Error("Vault: failed to read session key", "error", err)
		return model.Credentials{}, false
	}
	if !ok {
		v.logger.Debug("Vault: no session key, credentials unavailable")
		return model.Credentials{}, false
	}

	values, err := v.durable.Get(ctx, model.DurableKeys...)
	if err != nil {
		v.logger.Error("Vault: failed to read credentials", "error", err)
		return model.Credentials{}, false
	}
	for _, field := range model.DurableKeys {
		if _, ok := values[field]; !ok {
			v.logger.Debug("Vault: stored credentials incomplete", "missing", field)
			return model.Credentials{}, false
		}
	}

	plaintext, err := key.Open(model.EncryptedBlob{
		Ciphertext: values[model.KeyPasswordCiphertext],
		Nonce:      values[model.KeyPasswordNonce],
	})
	if err != nil {
		v.logger.Debug("Vault: stored password does not open under session key", "error", err)
		return model.Credentials{}, false
	}
	defer secret.Wipe(plaintext)

	return model.Credentials{
		CompanyCode:  string(values[model.KeyCompanyCode]),
		EmployeeCode: string(values[model.KeyEmployeeCode]),
		Password:     string(plaintext),
	}, true
}

// GetSavedIdentifiers returns the plaintext code pair regardless of key state.
func (v *Vault) GetSavedIdentifiers(ctx context.Context) (model.Identifiers, bool) {
	values, err := v.durable.Get(ctx, model.KeyCompanyCode, model.KeyEmployeeCode)
	if err != nil {
		v.logger.Error("Vault: failed to read identifiers", "error", err)
		return model.Identifiers{}, false
	}

	company, ok := values[model.KeyCompanyCode]
	if !ok {
		return model.Identifiers{}, false
	}
	employee, ok := values[model.KeyEmployeeCode]
	if !ok {
		return model.Identifiers{}, false
	}

	return model.Identifiers{
		CompanyCode:  string(company),
		EmployeeCode: string(employee),
	}, true
}

// Exists reports whether Get would currently succeed.
func (v *Vault) Exists(ctx context.Context) bool {
	_, ok := v.Get(ctx)
	return ok
}

// State reports which availability state the vault is observed in.
func (v *Vault) State(ctx context.Context) (model.VaultState, error) {
	if v.Exists(ctx) {
		return model.StateAvailable, nil
	}

	values, err := v.durable.Get(ctx, model.KeyPasswordCiphertext)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	if _, ok := values[model.KeyPasswordCiphertext]; ok {
		return model.StateLocked, nil
	}
	return model.StateNoCredential, nil
}

// LogState logs the observed vault state together with what prompted the
// check.
func (v *Vault) LogState(ctx context.Context, reason string) {
	state, err := v.State(ctx)
	if err != nil {
		v.logger.Error("Vault: failed to read state", "reason", reason, "error", err)
		return
	}
	v.logger.Info("Vault: state observed", "reason", reason, "state", state)
}

// Clear removes the stored fields and the session key. Every removal is
// attempted; any failure is reported.
func (v *Vault) Clear(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	if err := v.durable.Remove(ctx, model.DurableKeys...); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove credentials: %w", err))
	}
	if err := v.keys.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear session key: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		v.logger.Error("Vault: clear failed", "error", err)
		return err
	}

	v.logger.Info("Vault: credentials cleared")
	return nil
}
