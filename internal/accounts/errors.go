package accounts

import (
	"errors"
	"fmt"
)

const (
	duplicateAccountErrorTemplateConstant = "account %q already exists"
	accountNotFoundErrorTemplateConstant  = "account %q not found"
	noActiveAccountMessageConstant        = "no active account configured"
	identifierRequiredMessageConstant     = "account identifier required"
	usernameRequiredMessageConstant       = "account username required"
	tokenRequiredMessageConstant          = "account token required"
)

// Validation sentinels surfaced before any state is touched.
var (
	// ErrNoActiveAccount indicates no account is currently marked active.
	ErrNoActiveAccount = errors.New(noActiveAccountMessageConstant)
	// ErrAccountIdentifierRequired indicates an empty account identifier was supplied.
	ErrAccountIdentifierRequired = errors.New(identifierRequiredMessageConstant)
	// ErrAccountUsernameRequired indicates an empty username was supplied.
	ErrAccountUsernameRequired = errors.New(usernameRequiredMessageConstant)
	// ErrAccountTokenRequired indicates an empty token was supplied when adding an account.
	ErrAccountTokenRequired = errors.New(tokenRequiredMessageConstant)
)

// DuplicateAccountError reports an attempt to add an account whose identifier is already present.
type DuplicateAccountError struct {
	AccountID string
}

// Error describes the duplicate identifier.
func (duplicateError DuplicateAccountError) Error() string {
	return fmt.Sprintf(duplicateAccountErrorTemplateConstant, duplicateError.AccountID)
}

// AccountNotFoundError reports a lookup for an identifier that is not configured.
type AccountNotFoundError struct {
	AccountID string
}

// Error describes the missing account.
func (notFoundError AccountNotFoundError) Error() string {
	return fmt.Sprintf(accountNotFoundErrorTemplateConstant, notFoundError.AccountID)
}
