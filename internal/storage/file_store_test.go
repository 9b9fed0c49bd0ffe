package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/state"
	"github.com/temirov/gho/internal/storage"
)

const (
	testPersonalAccountIdentifierConstant = "personal"
	testWorkAccountIdentifierConstant     = "work"
	testAccountUsernameConstant           = "octocat"
	testOrganizationNameConstant          = "acme"
	testCorruptDocumentContentConstant    = "{not json"
	testNestedDirectoryNameConstant       = "nested"
)

func newTestFileStore(testInstance *testing.T) *storage.FileStore {
	testInstance.Helper()
	configDirectory := filepath.Join(testInstance.TempDir(), testNestedDirectoryNameConstant)
	fileStore, creationError := storage.NewFileStore(configDirectory)
	require.NoError(testInstance, creationError)
	return fileStore
}

func TestNewFileStoreRequiresDirectory(testInstance *testing.T) {
	_, creationError := storage.NewFileStore("")
	require.ErrorIs(testInstance, creationError, storage.ErrConfigDirectoryNotConfigured)
}

func TestLoadAccountsMissingDocument(testInstance *testing.T) {
	fileStore := newTestFileStore(testInstance)

	collection, documentPresent, loadError := fileStore.LoadAccounts()
	require.NoError(testInstance, loadError)
	require.False(testInstance, documentPresent)
	require.Empty(testInstance, collection.Accounts)
	require.Empty(testInstance, collection.ActiveAccountID)
}

func TestAccountsRoundTrip(testInstance *testing.T) {
	fileStore := newTestFileStore(testInstance)

	savedCollection := accounts.Collection{
		Accounts: []accounts.Account{
			{
				ID:            testPersonalAccountIdentifierConstant,
				Kind:          accounts.AccountKindPersonal,
				Username:      testAccountUsernameConstant,
				CloneProtocol: accounts.CloneProtocolSSH,
			},
			{
				ID:                  testWorkAccountIdentifierConstant,
				Kind:                accounts.AccountKindWork,
				Username:            testAccountUsernameConstant,
				DefaultOrganization: testOrganizationNameConstant,
				CloneProtocol:       accounts.CloneProtocolHTTPS,
			},
		},
		ActiveAccountID: testWorkAccountIdentifierConstant,
	}

	require.NoError(testInstance, fileStore.SaveAccounts(savedCollection))

	loadedCollection, documentPresent, loadError := fileStore.LoadAccounts()
	require.NoError(testInstance, loadError)
	require.True(testInstance, documentPresent)
	require.Equal(testInstance, savedCollection, loadedCollection)
}

func TestRunStateRoundTrip(testInstance *testing.T) {
	fileStore := newTestFileStore(testInstance)

	savedRunState := state.RunState{LastOrganization: testOrganizationNameConstant}
	require.NoError(testInstance, fileStore.SaveRunState(savedRunState))

	loadedRunState, documentPresent, loadError := fileStore.LoadRunState()
	require.NoError(testInstance, loadError)
	require.True(testInstance, documentPresent)
	require.Equal(testInstance, savedRunState, loadedRunState)
}

func TestLoadAccountsCorruptDocument(testInstance *testing.T) {
	fileStore := newTestFileStore(testInstance)
	require.NoError(testInstance, fileStore.SaveAccounts(accounts.Collection{}))
	require.NoError(testInstance, os.WriteFile(fileStore.AccountsPath(), []byte(testCorruptDocumentContentConstant), 0o600))

	_, _, loadError := fileStore.LoadAccounts()

	var persistenceError storage.PersistenceError
	require.ErrorAs(testInstance, loadError, &persistenceError)
	require.Equal(testInstance, fileStore.AccountsPath(), persistenceError.Path)
}

func TestSaveLeavesNoTemporaryFiles(testInstance *testing.T) {
	fileStore := newTestFileStore(testInstance)
	require.NoError(testInstance, fileStore.SaveAccounts(accounts.Collection{ActiveAccountID: testPersonalAccountIdentifierConstant}))

	directoryEntries, readError := os.ReadDir(filepath.Dir(fileStore.AccountsPath()))
	require.NoError(testInstance, readError)
	require.Len(testInstance, directoryEntries, 1)
	require.Equal(testInstance, filepath.Base(fileStore.AccountsPath()), directoryEntries[0].Name())
}
