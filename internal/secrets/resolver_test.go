package secrets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/secrets"
)

const (
	testAccountIdentifierConstant        = "personal"
	testEnvironmentTokenConstant         = "env-token"
	testSecondaryEnvironmentTokenValue   = "secondary-env-token"
	testStoredTokenConstant              = "stored-token"
	testRetrieverFailureMessageConstant  = "keyring unavailable"
	testPrimaryOverrideCaseNameConstant  = "primary_override_wins"
	testSecondaryOverrideCaseName        = "secondary_override_used"
	testBlankOverrideSkippedCaseName     = "blank_override_skipped"
	testStoredTokenCaseNameConstant      = "secret_store_fallback"
	testNoTokenCaseNameConstant          = "no_token_configured"
	testRetrieverFailureCaseNameConstant = "secret_store_failure_propagates"
)

type mapEnvironment map[string]string

func (environment mapEnvironment) lookup(name string) (string, bool) {
	value, present := environment[name]
	return value, present
}

type stubTokenRetriever struct {
	storedToken    string
	retrievalError error
}

func (retriever stubTokenRetriever) RetrieveToken(string) (string, error) {
	if retriever.retrievalError != nil {
		return "", retriever.retrievalError
	}
	return retriever.storedToken, nil
}

func TestTokenResolverPrecedence(testInstance *testing.T) {
	retrieverFailure := errors.New(testRetrieverFailureMessageConstant)

	testCases := []struct {
		name          string
		environment   mapEnvironment
		retriever     stubTokenRetriever
		expectedToken string
		expectedError error
	}{
		{
			name: testPrimaryOverrideCaseNameConstant,
			environment: mapEnvironment{
				secrets.EnvTokenOverridePrimary:   testEnvironmentTokenConstant,
				secrets.EnvTokenOverrideSecondary: testSecondaryEnvironmentTokenValue,
			},
			retriever:     stubTokenRetriever{storedToken: testStoredTokenConstant},
			expectedToken: testEnvironmentTokenConstant,
		},
		{
			name: testSecondaryOverrideCaseName,
			environment: mapEnvironment{
				secrets.EnvTokenOverrideSecondary: testSecondaryEnvironmentTokenValue,
			},
			retriever:     stubTokenRetriever{storedToken: testStoredTokenConstant},
			expectedToken: testSecondaryEnvironmentTokenValue,
		},
		{
			name: testBlankOverrideSkippedCaseName,
			environment: mapEnvironment{
				secrets.EnvTokenOverridePrimary: "   ",
			},
			retriever:     stubTokenRetriever{storedToken: testStoredTokenConstant},
			expectedToken: testStoredTokenConstant,
		},
		{
			name:          testStoredTokenCaseNameConstant,
			environment:   mapEnvironment{},
			retriever:     stubTokenRetriever{storedToken: testStoredTokenConstant},
			expectedToken: testStoredTokenConstant,
		},
		{
			name:          testNoTokenCaseNameConstant,
			environment:   mapEnvironment{},
			retriever:     stubTokenRetriever{retrievalError: secrets.ErrSecretNotFound},
			expectedError: secrets.ErrNoTokenConfigured,
		},
		{
			name:          testRetrieverFailureCaseNameConstant,
			environment:   mapEnvironment{},
			retriever:     stubTokenRetriever{retrievalError: retrieverFailure},
			expectedError: retrieverFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := secrets.NewTokenResolver(
				secrets.NewEnvironmentTokenStrategy(testCase.environment.lookup),
				secrets.NewSecretStoreTokenStrategy(testCase.retriever),
			)

			resolvedToken, resolutionError := resolver.ResolveToken(accounts.Account{ID: testAccountIdentifierConstant})

			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolutionError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolutionError)
			require.Equal(testInstance, testCase.expectedToken, resolvedToken)
		})
	}
}

func TestMaskToken(testInstance *testing.T) {
	require.Equal(testInstance, "ghp_...cdef", secrets.MaskToken("ghp_1234567890abcdef"))
	require.Equal(testInstance, "*****", secrets.MaskToken("short"))
	require.Equal(testInstance, "", secrets.MaskToken(""))
}
