// Package state tracks the advisory last-used context persisted between invocations.
package state

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	runStateStoreNotConfiguredMessageConstant = "run state store not configured"
	runStateLoadFailedMessageConstant         = "unable to load run state"
	runStateSaveFailedMessageConstant         = "unable to save run state"
	logFieldLastOrganizationConstant          = "last_org"
	logFieldLastRepositoryConstant            = "last_repo"
)

// ErrRunStateStoreNotConfigured indicates the tracker was built without a store.
var ErrRunStateStoreNotConfigured = errors.New(runStateStoreNotConfiguredMessageConstant)

// RunState captures the last-used browsing context. Losing it is harmless.
type RunState struct {
	LastOrganization string `json:"last_org,omitempty"`
	LastRepository   string `json:"last_repo,omitempty"`
}

// RunStateStore persists the run state as a whole document.
type RunStateStore interface {
	LoadRunState() (RunState, bool, error)
	SaveRunState(runState RunState) error
}

// Tracker records last-used context without ever failing the surrounding
// operation; persistence problems are logged and swallowed.
type Tracker struct {
	runStateStore RunStateStore
	logger        *zap.Logger
}

// NewTracker constructs a run state tracker.
func NewTracker(runStateStore RunStateStore, logger *zap.Logger) (*Tracker, error) {
	if runStateStore == nil {
		return nil, ErrRunStateStoreNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{runStateStore: runStateStore, logger: logger}, nil
}

// RecordOrganization remembers the organization most recently browsed.
func (tracker *Tracker) RecordOrganization(organization string) {
	trimmedOrganization := strings.TrimSpace(organization)
	if len(trimmedOrganization) == 0 {
		return
	}
	tracker.update(func(runState *RunState) {
		runState.LastOrganization = trimmedOrganization
	})
}

// RecordRepository remembers the repository most recently touched.
func (tracker *Tracker) RecordRepository(repository string) {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return
	}
	tracker.update(func(runState *RunState) {
		runState.LastRepository = trimmedRepository
	})
}

// LastUsed returns the persisted run state, or the zero value when unavailable.
func (tracker *Tracker) LastUsed() RunState {
	runState, _, loadError := tracker.runStateStore.LoadRunState()
	if loadError != nil {
		tracker.logger.Warn(runStateLoadFailedMessageConstant, zap.Error(loadError))
		return RunState{}
	}
	return runState
}

func (tracker *Tracker) update(mutate func(runState *RunState)) {
	runState, _, loadError := tracker.runStateStore.LoadRunState()
	if loadError != nil {
		tracker.logger.Warn(runStateLoadFailedMessageConstant, zap.Error(loadError))
		runState = RunState{}
	}

	mutate(&runState)

	if saveError := tracker.runStateStore.SaveRunState(runState); saveError != nil {
		tracker.logger.Warn(
			runStateSaveFailedMessageConstant,
			zap.String(logFieldLastOrganizationConstant, runState.LastOrganization),
			zap.String(logFieldLastRepositoryConstant, runState.LastRepository),
			zap.Error(saveError),
		)
	}
}
