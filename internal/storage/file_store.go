// Package storage persists whole-document JSON state under the per-user
// configuration directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/state"
)

const (
	configDirectoryParentConstant         = ".config"
	configDirectoryNameConstant           = "gho"
	accountsFileNameConstant              = "accounts.json"
	runStateFileNameConstant              = "state.json"
	configDirectoryPermissionsConstant    = 0o755
	documentFilePermissionsConstant       = 0o600
	temporaryFilePatternConstant          = "gho-document-*.json"
	persistenceErrorTemplateConstant      = "persistence failure for %s: %s"
	directoryNotConfiguredMessageConstant = "configuration directory not configured"
	documentEncodingIndentConstant        = "  "
	documentEncodingPrefixConstant        = ""
)

// ErrConfigDirectoryNotConfigured indicates the store was built without a directory.
var ErrConfigDirectoryNotConfigured = errors.New(directoryNotConfiguredMessageConstant)

// PersistenceError reports a read or write failure on a persisted document.
type PersistenceError struct {
	Path  string
	Cause error
}

// Error describes the persistence failure.
func (persistenceError PersistenceError) Error() string {
	return fmt.Sprintf(persistenceErrorTemplateConstant, persistenceError.Path, persistenceError.Cause)
}

// Unwrap exposes the underlying cause.
func (persistenceError PersistenceError) Unwrap() error {
	return persistenceError.Cause
}

// FileStore reads and writes account and run state documents as whole JSON files.
//
// Writes land in a temporary file that is renamed over the destination so an
// interrupted save never leaves a half-written document behind.
type FileStore struct {
	configDirectory string
}

// NewFileStore constructs a store rooted at the provided configuration directory.
func NewFileStore(configDirectory string) (*FileStore, error) {
	if len(configDirectory) == 0 {
		return nil, ErrConfigDirectoryNotConfigured
	}
	return &FileStore{configDirectory: configDirectory}, nil
}

// DefaultConfigDirectory resolves the per-user configuration directory.
func DefaultConfigDirectory() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", homeError
	}
	return filepath.Join(homeDirectory, configDirectoryParentConstant, configDirectoryNameConstant), nil
}

// AccountsPath returns the absolute path of the accounts document.
func (store *FileStore) AccountsPath() string {
	return filepath.Join(store.configDirectory, accountsFileNameConstant)
}

// RunStatePath returns the absolute path of the run state document.
func (store *FileStore) RunStatePath() string {
	return filepath.Join(store.configDirectory, runStateFileNameConstant)
}

// LoadAccounts reads the persisted account collection. A missing document
// yields an empty collection and a false presence flag.
func (store *FileStore) LoadAccounts() (accounts.Collection, bool, error) {
	var collection accounts.Collection
	documentPresent, loadError := store.loadDocument(store.AccountsPath(), &collection)
	if loadError != nil {
		return accounts.Collection{}, false, loadError
	}
	return collection, documentPresent, nil
}

// SaveAccounts writes the account collection as a whole document.
func (store *FileStore) SaveAccounts(collection accounts.Collection) error {
	return store.saveDocument(store.AccountsPath(), collection)
}

// LoadRunState reads the persisted run state. A missing document yields the
// zero run state and a false presence flag.
func (store *FileStore) LoadRunState() (state.RunState, bool, error) {
	var runState state.RunState
	documentPresent, loadError := store.loadDocument(store.RunStatePath(), &runState)
	if loadError != nil {
		return state.RunState{}, false, loadError
	}
	return runState, documentPresent, nil
}

// SaveRunState writes the run state as a whole document.
func (store *FileStore) SaveRunState(runState state.RunState) error {
	return store.saveDocument(store.RunStatePath(), runState)
}

func (store *FileStore) loadDocument(documentPath string, target any) (bool, error) {
	documentBytes, readError := os.ReadFile(documentPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return false, nil
		}
		return false, PersistenceError{Path: documentPath, Cause: readError}
	}

	if decodeError := json.Unmarshal(documentBytes, target); decodeError != nil {
		return false, PersistenceError{Path: documentPath, Cause: decodeError}
	}
	return true, nil
}

func (store *FileStore) saveDocument(documentPath string, document any) error {
	if directoryError := os.MkdirAll(store.configDirectory, configDirectoryPermissionsConstant); directoryError != nil {
		return PersistenceError{Path: store.configDirectory, Cause: directoryError}
	}

	documentBytes, encodeError := json.MarshalIndent(document, documentEncodingPrefixConstant, documentEncodingIndentConstant)
	if encodeError != nil {
		return PersistenceError{Path: documentPath, Cause: encodeError}
	}

	temporaryFile, temporaryError := os.CreateTemp(store.configDirectory, temporaryFilePatternConstant)
	if temporaryError != nil {
		return PersistenceError{Path: documentPath, Cause: temporaryError}
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(documentBytes); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return PersistenceError{Path: documentPath, Cause: writeError}
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return PersistenceError{Path: documentPath, Cause: closeError}
	}
	if permissionsError := os.Chmod(temporaryPath, documentFilePermissionsConstant); permissionsError != nil {
		_ = os.Remove(temporaryPath)
		return PersistenceError{Path: documentPath, Cause: permissionsError}
	}

	if renameError := os.Rename(temporaryPath, documentPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return PersistenceError{Path: documentPath, Cause: renameError}
	}
	return nil
}
