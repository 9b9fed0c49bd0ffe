package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/temirov/gho/internal/accounts"
)

// Environment variable names accepted as direct token overrides, in priority order.
const (
	EnvTokenOverridePrimary   = "GH_TOKEN"
	EnvTokenOverrideSecondary = "GITHUB_TOKEN"
)

const noTokenConfiguredMessageConstant = "no token configured"

// ErrNoTokenConfigured indicates no resolution strategy produced a token.
var ErrNoTokenConfigured = errors.New(noTokenConfiguredMessageConstant)

var tokenOverridePreference = []string{
	EnvTokenOverridePrimary,
	EnvTokenOverrideSecondary,
}

// EnvironmentLookup reads one environment variable, mirroring os.LookupEnv.
type EnvironmentLookup func(name string) (string, bool)

// TokenRetriever reads a stored token for an account identifier.
type TokenRetriever interface {
	RetrieveToken(accountID string) (string, error)
}

// ResolverStrategy attempts to produce a token for an account. A false applied
// flag means the strategy does not apply and the next one should be consulted.
type ResolverStrategy interface {
	ResolveToken(account accounts.Account) (token string, applied bool, resolutionError error)
}

// EnvironmentTokenStrategy resolves tokens from override environment
// variables. An override beats every stored credential, letting automation
// inject tokens without touching the secret store.
type EnvironmentTokenStrategy struct {
	environmentLookup EnvironmentLookup
}

// NewEnvironmentTokenStrategy constructs an environment strategy using the provided lookup.
func NewEnvironmentTokenStrategy(environmentLookup EnvironmentLookup) EnvironmentTokenStrategy {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return EnvironmentTokenStrategy{environmentLookup: environmentLookup}
}

// ResolveToken returns the first non-empty override variable value.
func (strategy EnvironmentTokenStrategy) ResolveToken(accounts.Account) (string, bool, error) {
	for _, overrideVariableName := range tokenOverridePreference {
		overrideValue, overridePresent := strategy.environmentLookup(overrideVariableName)
		if !overridePresent {
			continue
		}
		overrideValue = strings.TrimSpace(overrideValue)
		if len(overrideValue) > 0 {
			return overrideValue, true, nil
		}
	}
	return "", false, nil
}

// SecretStoreTokenStrategy resolves tokens stored in the platform secret store.
type SecretStoreTokenStrategy struct {
	tokenRetriever TokenRetriever
}

// NewSecretStoreTokenStrategy constructs a secret store strategy.
func NewSecretStoreTokenStrategy(tokenRetriever TokenRetriever) SecretStoreTokenStrategy {
	return SecretStoreTokenStrategy{tokenRetriever: tokenRetriever}
}

// ResolveToken looks the account's token up by identifier.
func (strategy SecretStoreTokenStrategy) ResolveToken(account accounts.Account) (string, bool, error) {
	if strategy.tokenRetriever == nil {
		return "", false, nil
	}
	storedToken, retrievalError := strategy.tokenRetriever.RetrieveToken(account.ID)
	if retrievalError != nil {
		if errors.Is(retrievalError, ErrSecretNotFound) {
			return "", false, nil
		}
		return "", false, retrievalError
	}
	return storedToken, true, nil
}

// TokenResolver walks an ordered strategy chain until one produces a token.
//
// Resolution is a pure read path; no strategy mutates process-wide state.
type TokenResolver struct {
	strategies []ResolverStrategy
}

// NewTokenResolver constructs a resolver over the provided strategies.
func NewTokenResolver(strategies ...ResolverStrategy) *TokenResolver {
	return &TokenResolver{strategies: strategies}
}

// NewDefaultTokenResolver builds the standard chain: environment override
// first, then the platform secret store.
func NewDefaultTokenResolver(tokenRetriever TokenRetriever) *TokenResolver {
	return NewTokenResolver(
		NewEnvironmentTokenStrategy(nil),
		NewSecretStoreTokenStrategy(tokenRetriever),
	)
}

// ResolveToken returns the first token produced by the strategy chain.
func (resolver *TokenResolver) ResolveToken(account accounts.Account) (string, error) {
	for _, strategy := range resolver.strategies {
		resolvedToken, applied, resolutionError := strategy.ResolveToken(account)
		if resolutionError != nil {
			return "", resolutionError
		}
		if applied {
			return resolvedToken, nil
		}
	}
	return "", ErrNoTokenConfigured
}
