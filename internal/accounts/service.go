package accounts

import (
	"errors"
	"strings"
)

const (
	collectionStoreNotConfiguredMessageConstant = "account collection store not configured"
	tokenStoreNotConfiguredMessageConstant      = "token store not configured"
)

// Construction sentinels for Service.
var (
	// ErrCollectionStoreNotConfigured indicates the service was built without a collection store.
	ErrCollectionStoreNotConfigured = errors.New(collectionStoreNotConfiguredMessageConstant)
	// ErrTokenStoreNotConfigured indicates the service was built without a token store.
	ErrTokenStoreNotConfigured = errors.New(tokenStoreNotConfiguredMessageConstant)
)

// CollectionStore persists the account collection as a whole document.
type CollectionStore interface {
	LoadAccounts() (Collection, bool, error)
	SaveAccounts(collection Collection) error
}

// TokenStore writes and removes per-account secrets in the platform secret store.
type TokenStore interface {
	StoreToken(accountID string, token string) error
	DeleteToken(accountID string) error
}

// Service owns the configured account set and the active account selection.
//
// Every mutating operation performs a full load-mutate-save cycle so a failed
// save never leaves a partially applied account on disk.
type Service struct {
	collectionStore CollectionStore
	tokenStore      TokenStore
}

// NewService constructs an account service from its collaborators.
func NewService(collectionStore CollectionStore, tokenStore TokenStore) (*Service, error) {
	if collectionStore == nil {
		return nil, ErrCollectionStoreNotConfigured
	}
	if tokenStore == nil {
		return nil, ErrTokenStoreNotConfigured
	}
	return &Service{collectionStore: collectionStore, tokenStore: tokenStore}, nil
}

// AddAccount registers a new account and stores its token in the secret store.
//
// The first account ever added becomes active automatically. When the
// collection save fails the stored token is rolled back so the secret store
// never holds entries for unconfigured accounts.
func (service *Service) AddAccount(account Account, token string) error {
	account.ID = strings.TrimSpace(account.ID)
	account.Username = strings.TrimSpace(account.Username)

	if len(account.ID) == 0 {
		return ErrAccountIdentifierRequired
	}
	if len(account.Username) == 0 {
		return ErrAccountUsernameRequired
	}
	if len(strings.TrimSpace(token)) == 0 {
		return ErrAccountTokenRequired
	}
	if len(account.CloneProtocol) == 0 {
		account.CloneProtocol = CloneProtocolSSH
	}
	if len(account.Kind) == 0 {
		account.Kind = AccountKindPersonal
	}

	collection, _, loadError := service.collectionStore.LoadAccounts()
	if loadError != nil {
		return loadError
	}

	if _, alreadyConfigured := collection.FindAccount(account.ID); alreadyConfigured {
		return DuplicateAccountError{AccountID: account.ID}
	}

	if storeError := service.tokenStore.StoreToken(account.ID, token); storeError != nil {
		return storeError
	}

	collection.Accounts = append(collection.Accounts, account)
	if len(collection.ActiveAccountID) == 0 {
		collection.ActiveAccountID = account.ID
	}

	if saveError := service.collectionStore.SaveAccounts(collection); saveError != nil {
		_ = service.tokenStore.DeleteToken(account.ID)
		return saveError
	}
	return nil
}

// ListAccounts returns the configured collection in insertion order.
func (service *Service) ListAccounts() (Collection, error) {
	collection, _, loadError := service.collectionStore.LoadAccounts()
	if loadError != nil {
		return Collection{}, loadError
	}
	return collection, nil
}

// UseAccount marks the identified account as active.
func (service *Service) UseAccount(accountID string) error {
	trimmedAccountID := strings.TrimSpace(accountID)
	if len(trimmedAccountID) == 0 {
		return ErrAccountIdentifierRequired
	}

	collection, _, loadError := service.collectionStore.LoadAccounts()
	if loadError != nil {
		return loadError
	}

	if _, configured := collection.FindAccount(trimmedAccountID); !configured {
		return AccountNotFoundError{AccountID: trimmedAccountID}
	}

	collection.ActiveAccountID = trimmedAccountID
	return service.collectionStore.SaveAccounts(collection)
}

// ActiveAccount returns the currently active account.
func (service *Service) ActiveAccount() (Account, error) {
	collection, _, loadError := service.collectionStore.LoadAccounts()
	if loadError != nil {
		return Account{}, loadError
	}

	activeAccount, activeConfigured := collection.ActiveAccount()
	if !activeConfigured {
		return Account{}, ErrNoActiveAccount
	}
	return activeAccount, nil
}

// RemoveAccount deletes the identified account and its stored token.
//
// Removing the active account clears the active selection without promoting
// any remaining account; a subsequent UseAccount call is required.
func (service *Service) RemoveAccount(accountID string) error {
	trimmedAccountID := strings.TrimSpace(accountID)
	if len(trimmedAccountID) == 0 {
		return ErrAccountIdentifierRequired
	}

	collection, _, loadError := service.collectionStore.LoadAccounts()
	if loadError != nil {
		return loadError
	}

	removalIndex := -1
	for accountIndex, configuredAccount := range collection.Accounts {
		if configuredAccount.ID == trimmedAccountID {
			removalIndex = accountIndex
			break
		}
	}
	if removalIndex == -1 {
		return AccountNotFoundError{AccountID: trimmedAccountID}
	}

	collection.Accounts = append(collection.Accounts[:removalIndex], collection.Accounts[removalIndex+1:]...)
	if collection.ActiveAccountID == trimmedAccountID {
		collection.ActiveAccountID = ""
	}

	if saveError := service.collectionStore.SaveAccounts(collection); saveError != nil {
		return saveError
	}

	// Token removal is best effort; the account itself is already gone.
	_ = service.tokenStore.DeleteToken(trimmedAccountID)
	return nil
}
