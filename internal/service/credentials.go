package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/util"

	"go.uber.org/zap"
)

var (
	// ErrCredentialNotFound means no integration exists for the store/provider.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrIntegrationInactive means the integration exists but is switched off.
	// Treated the same as absence: the run must not reach the provider.
	ErrIntegrationInactive = errors.New("integration is inactive")
)

// CredentialStore provides integration lookup.
type CredentialStore interface {
	GetActiveIntegration(ctx context.Context, storeID int64, providerType string) (*models.Integration, error)
}

// CredentialResolver resolves and decodes the API credential for a
// (store, provider) pair.
type CredentialResolver struct {
	store  CredentialStore
	logger *zap.Logger
}

// NewCredentialResolver creates a new credential resolver
func NewCredentialResolver(store CredentialStore) *CredentialResolver {
	return &CredentialResolver{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Resolve returns the decoded API key for the store's integration.
func (r *CredentialResolver) Resolve(ctx context.Context, storeID int64, providerType string) (string, error) {
	integration, err := r.store.GetActiveIntegration(ctx, storeID, providerType)
	if err != nil {
		return "", fmt.Errorf("failed to look up integration: %w", err)
	}
	if integration == nil {
		return "", ErrCredentialNotFound
	}
	if !integration.Active {
		r.logger.Warn("Integration is inactive, skipping sync",
			zap.Int64("store_id", storeID),
			zap.String("provider_type", providerType))
		return "", ErrIntegrationInactive
	}

	decoded, err := base64.StdEncoding.DecodeString(integration.APIKeyEncrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored credential: %w", err)
	}

	return string(decoded), nil
}
