package accounts

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	cloneProtocolSSHStringConstant           = "ssh"
	cloneProtocolHTTPSStringConstant         = "https"
	accountKindPersonalStringConstant        = "personal"
	accountKindWorkStringConstant            = "work"
	unsupportedProtocolTemplateConstant      = "unsupported clone protocol: %s"
	unsupportedAccountKindTemplateConstant   = "unsupported account kind: %s"
	cloneProtocolChoicesJoinSeparatorLiteral = "|"
)

// CloneProtocol enumerates supported clone transports.
type CloneProtocol string

// Supported clone protocols.
const (
	CloneProtocolSSH   CloneProtocol = CloneProtocol(cloneProtocolSSHStringConstant)
	CloneProtocolHTTPS CloneProtocol = CloneProtocol(cloneProtocolHTTPSStringConstant)
)

// AccountKind categorizes accounts by their intended use.
type AccountKind string

// Supported account kinds.
const (
	AccountKindPersonal AccountKind = AccountKind(accountKindPersonalStringConstant)
	AccountKindWork     AccountKind = AccountKind(accountKindWorkStringConstant)
)

// ParseCloneProtocol normalizes a textual protocol value, defaulting empty input to SSH.
func ParseCloneProtocol(value string) (CloneProtocol, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch normalizedValue {
	case "":
		return CloneProtocolSSH, nil
	case cloneProtocolSSHStringConstant:
		return CloneProtocolSSH, nil
	case cloneProtocolHTTPSStringConstant:
		return CloneProtocolHTTPS, nil
	default:
		return "", fmt.Errorf(unsupportedProtocolTemplateConstant, value)
	}
}

// ParseAccountKind normalizes a textual account kind, defaulting empty input to personal.
func ParseAccountKind(value string) (AccountKind, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch normalizedValue {
	case "":
		return AccountKindPersonal, nil
	case accountKindPersonalStringConstant:
		return AccountKindPersonal, nil
	case accountKindWorkStringConstant:
		return AccountKindWork, nil
	default:
		return "", fmt.Errorf(unsupportedAccountKindTemplateConstant, value)
	}
}

// CloneProtocolChoices lists accepted protocol values for flag usage strings.
func CloneProtocolChoices() []string {
	return []string{cloneProtocolSSHStringConstant, cloneProtocolHTTPSStringConstant}
}

// AccountKindChoices lists accepted account kind values for flag usage strings.
func AccountKindChoices() []string {
	return []string{accountKindPersonalStringConstant, accountKindWorkStringConstant}
}

// CloneProtocolDecodeHook converts configuration strings into CloneProtocol values during unmarshalling.
func CloneProtocolDecodeHook() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, sourceValue any) (any, error) {
		if targetType != reflect.TypeOf(CloneProtocol("")) {
			return sourceValue, nil
		}
		if sourceType.Kind() != reflect.String {
			return sourceValue, nil
		}
		return ParseCloneProtocol(sourceValue.(string))
	}
}

// Account identifies one GitHub identity configured in the operator tool.
type Account struct {
	ID                  string        `json:"id"`
	Kind                AccountKind   `json:"kind"`
	Username            string        `json:"username"`
	DefaultOrganization string        `json:"default_org,omitempty"`
	CloneProtocol       CloneProtocol `json:"protocol"`
	CloneDirectory      string        `json:"clone_dir,omitempty"`
}

// Collection holds every configured account in insertion order plus the active account identifier.
type Collection struct {
	Accounts        []Account `json:"accounts"`
	ActiveAccountID string    `json:"active_account_id,omitempty"`
}

// FindAccount returns the account with the provided identifier when present.
func (collection Collection) FindAccount(accountID string) (Account, bool) {
	for _, configuredAccount := range collection.Accounts {
		if configuredAccount.ID == accountID {
			return configuredAccount, true
		}
	}
	return Account{}, false
}

// ActiveAccount returns the currently active account when one is configured.
func (collection Collection) ActiveAccount() (Account, bool) {
	if len(collection.ActiveAccountID) == 0 {
		return Account{}, false
	}
	return collection.FindAccount(collection.ActiveAccountID)
}

// IsActive reports whether the provided identifier names the active account.
func (collection Collection) IsActive(accountID string) bool {
	return len(accountID) > 0 && collection.ActiveAccountID == accountID
}
