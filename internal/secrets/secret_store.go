// Package secrets integrates the platform secret store and resolves usable
// tokens for configured accounts.
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the namespace under which the tool stores its secrets.
	ServiceName = "gho"

	secretNotFoundMessageConstant      = "secret not found"
	secretStoreErrorTemplateConstant   = "secret store failure for %s/%s: %s"
	maskedTokenSeparatorConstant       = "..."
	maskedTokenVisiblePrefixLength     = 4
	maskedTokenVisibleSuffixLength     = 4
	maskedTokenMinimumMaskedLength     = 9
	maskedTokenReplacementRuneConstant = "*"
)

// ErrSecretNotFound indicates no secret exists for the requested key.
var ErrSecretNotFound = errors.New(secretNotFoundMessageConstant)

// SecretStoreError reports an unexpected platform secret store failure.
type SecretStoreError struct {
	Service string
	Key     string
	Cause   error
}

// Error describes the secret store failure.
func (storeError SecretStoreError) Error() string {
	return fmt.Sprintf(secretStoreErrorTemplateConstant, storeError.Service, storeError.Key, storeError.Cause)
}

// Unwrap exposes the underlying cause.
func (storeError SecretStoreError) Unwrap() error {
	return storeError.Cause
}

// SecretStore abstracts a namespaced key/value credential store.
type SecretStore interface {
	Get(service string, key string) (string, error)
	Set(service string, key string, secret string) error
	Delete(service string, key string) error
}

// KeyringSecretStore is a SecretStore backed by the operating system keyring.
type KeyringSecretStore struct{}

// NewKeyringSecretStore constructs a platform keyring secret store.
func NewKeyringSecretStore() KeyringSecretStore {
	return KeyringSecretStore{}
}

// Get retrieves a secret from the platform keyring.
func (KeyringSecretStore) Get(service string, key string) (string, error) {
	secret, lookupError := keyring.Get(service, key)
	if lookupError != nil {
		if errors.Is(lookupError, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", SecretStoreError{Service: service, Key: key, Cause: lookupError}
	}
	return secret, nil
}

// Set stores a secret in the platform keyring.
func (KeyringSecretStore) Set(service string, key string, secret string) error {
	if storeError := keyring.Set(service, key, secret); storeError != nil {
		return SecretStoreError{Service: service, Key: key, Cause: storeError}
	}
	return nil
}

// Delete removes a secret from the platform keyring.
func (KeyringSecretStore) Delete(service string, key string) error {
	if deleteError := keyring.Delete(service, key); deleteError != nil {
		if errors.Is(deleteError, keyring.ErrNotFound) {
			return ErrSecretNotFound
		}
		return SecretStoreError{Service: service, Key: key, Cause: deleteError}
	}
	return nil
}

// MaskToken renders a token safe for display by hiding its middle characters.
func MaskToken(token string) string {
	if len(token) < maskedTokenMinimumMaskedLength {
		masked := ""
		for range token {
			masked += maskedTokenReplacementRuneConstant
		}
		return masked
	}
	return token[:maskedTokenVisiblePrefixLength] + maskedTokenSeparatorConstant + token[len(token)-maskedTokenVisibleSuffixLength:]
}
