package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	repocmd "github.com/temirov/gho/cmd/cli/repo"
	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/gitrepo"
	"github.com/temirov/gho/internal/repoops"
	"github.com/temirov/gho/internal/secrets"
	"github.com/temirov/gho/internal/storage"
)

func TestExitCodeForError(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "success", executionError: nil, expectedExitCode: ExitCodeSuccess},
		{name: "unexpected_failure", executionError: errors.New("boom"), expectedExitCode: ExitCodeUnexpectedFailure},
		{name: "unexpected_status", executionError: githubapi.UnexpectedStatusError{StatusCode: 500}, expectedExitCode: ExitCodeUnexpectedFailure},
		{name: "duplicate_account", executionError: accounts.DuplicateAccountError{AccountID: "personal"}, expectedExitCode: ExitCodeDuplicateAccount},
		{name: "account_not_found", executionError: accounts.AccountNotFoundError{AccountID: "ghost"}, expectedExitCode: ExitCodeAccountNotFound},
		{name: "no_active_account", executionError: accounts.ErrNoActiveAccount, expectedExitCode: ExitCodeNoActiveAccount},
		{name: "no_token_configured", executionError: secrets.ErrNoTokenConfigured, expectedExitCode: ExitCodeNoTokenConfigured},
		{name: "authentication_failed", executionError: githubapi.AuthenticationError{StatusCode: 401}, expectedExitCode: ExitCodeAuthenticationFailed},
		{name: "resource_not_found", executionError: githubapi.NotFoundError{Resource: "repos/acme/ghost"}, expectedExitCode: ExitCodeResourceNotFound},
		{name: "rate_limited", executionError: githubapi.RateLimitError{RetryAfter: time.Minute}, expectedExitCode: ExitCodeRateLimited},
		{name: "repository_context_missing", executionError: gitrepo.ErrRepositoryContextMissing, expectedExitCode: ExitCodeRepositoryContextMissing},
		{name: "persistence_failure", executionError: storage.PersistenceError{Path: "/tmp/accounts.json", Cause: errors.New("denied")}, expectedExitCode: ExitCodePersistenceFailure},
		{name: "clone_failed", executionError: repoops.CloneError{RepositoryName: "widgets", Cause: repoops.ErrDestinationExists}, expectedExitCode: ExitCodeCloneFailed},
		{name: "partial_clone_failure", executionError: repoops.PartialCloneError{FailureCount: 1, AttemptCount: 3}, expectedExitCode: ExitCodeCloneFailed},
		{name: "malformed_repository_spec", executionError: gitrepo.RepositorySpecError{Input: "widgets"}, expectedExitCode: ExitCodeInvalidInput},
		{name: "missing_account_identifier", executionError: accounts.ErrAccountIdentifierRequired, expectedExitCode: ExitCodeInvalidInput},
		{name: "missing_token", executionError: accounts.ErrAccountTokenRequired, expectedExitCode: ExitCodeInvalidInput},
		{name: "organization_required", executionError: repoops.ErrOrganizationRequired, expectedExitCode: ExitCodeInvalidInput},
		{name: "clone_arguments_missing", executionError: repocmd.ErrCloneArgumentsMissing, expectedExitCode: ExitCodeInvalidInput},
		{name: "wrapped_cause_is_unwrapped", executionError: repoops.CloneError{RepositoryName: "widgets", Cause: errors.New("network")}, expectedExitCode: ExitCodeCloneFailed},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, ExitCodeForError(testCase.executionError))
		})
	}
}
