package cli

import (
	"errors"

	repocmd "github.com/temirov/gho/cmd/cli/repo"
	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/gitrepo"
	"github.com/temirov/gho/internal/repoops"
	"github.com/temirov/gho/internal/secrets"
	"github.com/temirov/gho/internal/storage"
)

// Process exit codes reported to the shell. Distinct codes let wrapping
// scripts branch on the failure class without parsing error text.
const (
	ExitCodeSuccess                  = 0
	ExitCodeUnexpectedFailure        = 1
	ExitCodeInvalidInput             = 2
	ExitCodeDuplicateAccount         = 3
	ExitCodeAccountNotFound          = 4
	ExitCodeNoActiveAccount          = 5
	ExitCodeNoTokenConfigured        = 6
	ExitCodeAuthenticationFailed     = 7
	ExitCodeResourceNotFound         = 8
	ExitCodeRateLimited              = 9
	ExitCodeRepositoryContextMissing = 10
	ExitCodePersistenceFailure       = 11
	ExitCodeCloneFailed              = 12
)

// ExitCodeForError maps an execution error to the process exit code.
func ExitCodeForError(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}

	var duplicateAccountError accounts.DuplicateAccountError
	if errors.As(executionError, &duplicateAccountError) {
		return ExitCodeDuplicateAccount
	}
	var accountNotFoundError accounts.AccountNotFoundError
	if errors.As(executionError, &accountNotFoundError) {
		return ExitCodeAccountNotFound
	}
	if errors.Is(executionError, accounts.ErrNoActiveAccount) {
		return ExitCodeNoActiveAccount
	}
	if errors.Is(executionError, secrets.ErrNoTokenConfigured) {
		return ExitCodeNoTokenConfigured
	}

	var authenticationError githubapi.AuthenticationError
	if errors.As(executionError, &authenticationError) {
		return ExitCodeAuthenticationFailed
	}
	var notFoundError githubapi.NotFoundError
	if errors.As(executionError, &notFoundError) {
		return ExitCodeResourceNotFound
	}
	var rateLimitError githubapi.RateLimitError
	if errors.As(executionError, &rateLimitError) {
		return ExitCodeRateLimited
	}

	if errors.Is(executionError, gitrepo.ErrRepositoryContextMissing) {
		return ExitCodeRepositoryContextMissing
	}
	var persistenceError storage.PersistenceError
	if errors.As(executionError, &persistenceError) {
		return ExitCodePersistenceFailure
	}

	var cloneError repoops.CloneError
	if errors.As(executionError, &cloneError) {
		return ExitCodeCloneFailed
	}
	var partialCloneError repoops.PartialCloneError
	if errors.As(executionError, &partialCloneError) {
		return ExitCodeCloneFailed
	}

	if isInvalidInputError(executionError) {
		return ExitCodeInvalidInput
	}

	return ExitCodeUnexpectedFailure
}

func isInvalidInputError(executionError error) bool {
	var repositorySpecError gitrepo.RepositorySpecError
	if errors.As(executionError, &repositorySpecError) {
		return true
	}
	switch {
	case errors.Is(executionError, accounts.ErrAccountIdentifierRequired):
		return true
	case errors.Is(executionError, accounts.ErrAccountUsernameRequired):
		return true
	case errors.Is(executionError, accounts.ErrAccountTokenRequired):
		return true
	case errors.Is(executionError, repoops.ErrOrganizationRequired):
		return true
	case errors.Is(executionError, repocmd.ErrCloneArgumentsMissing):
		return true
	}
	return false
}
