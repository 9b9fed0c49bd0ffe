package secrets

import "errors"

const secretStoreNotConfiguredMessageConstant = "secret store not configured"

// ErrSecretStoreNotConfigured indicates the vault was built without a secret store.
var ErrSecretStoreNotConfigured = errors.New(secretStoreNotConfiguredMessageConstant)

// TokenVault stores per-account tokens under the tool's own service namespace.
type TokenVault struct {
	secretStore SecretStore
	serviceName string
}

// NewTokenVault constructs a vault bound to the tool's service namespace.
func NewTokenVault(secretStore SecretStore) (*TokenVault, error) {
	if secretStore == nil {
		return nil, ErrSecretStoreNotConfigured
	}
	return &TokenVault{secretStore: secretStore, serviceName: ServiceName}, nil
}

// StoreToken writes the token for the identified account.
func (vault *TokenVault) StoreToken(accountID string, token string) error {
	return vault.secretStore.Set(vault.serviceName, accountID, token)
}

// RetrieveToken reads the token for the identified account.
func (vault *TokenVault) RetrieveToken(accountID string) (string, error) {
	return vault.secretStore.Get(vault.serviceName, accountID)
}

// DeleteToken removes the token for the identified account.
func (vault *TokenVault) DeleteToken(accountID string) error {
	return vault.secretStore.Delete(vault.serviceName, accountID)
}
