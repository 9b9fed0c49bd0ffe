package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/gho/internal/execshell"
)

const (
	repositoryEnvironmentVariableNameConstant = "GITHUB_REPOSITORY"
	originRemoteNameConstant                  = "origin"
	gitRemoteSubcommandConstant               = "remote"
	gitRemoteGetURLSubcommandConstant         = "get-url"
	repositoryContextMissingMessageConstant   = "repository context missing"
	repositorySpecErrorTemplateConstant       = "%s: expected owner/repository"
	repositorySpecSeparatorConstant           = "/"
	repositorySpecSegmentCountConstant        = 2
)

// ErrRepositoryContextMissing indicates no repository could be determined from
// the environment or the current working tree.
var ErrRepositoryContextMissing = errors.New(repositoryContextMissingMessageConstant)

// RepositoryContext identifies a repository by owner and name.
type RepositoryContext struct {
	Owner string
	Name  string
}

// String renders the context in owner/repository form.
func (repositoryContext RepositoryContext) String() string {
	return repositoryContext.Owner + repositorySpecSeparatorConstant + repositoryContext.Name
}

// RepositorySpecError indicates an owner/repository argument could not be parsed.
type RepositorySpecError struct {
	Input string
}

// Error describes the malformed specification.
func (specError RepositorySpecError) Error() string {
	return fmt.Sprintf(repositorySpecErrorTemplateConstant, specError.Input)
}

// ParseRepositorySpec parses an explicit owner/repository argument.
func ParseRepositorySpec(spec string) (RepositoryContext, error) {
	trimmedSpec := strings.TrimSpace(spec)
	segments := strings.Split(trimmedSpec, repositorySpecSeparatorConstant)
	if len(segments) != repositorySpecSegmentCountConstant {
		return RepositoryContext{}, RepositorySpecError{Input: spec}
	}
	owner := strings.TrimSpace(segments[0])
	repository := strings.TrimSpace(segments[1])
	if len(owner) == 0 || len(repository) == 0 {
		return RepositoryContext{}, RepositorySpecError{Input: spec}
	}
	return RepositoryContext{Owner: owner, Name: repository}, nil
}

// GitExecutor runs git commands on behalf of the detector.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// EnvironmentLookup reads one environment variable, mirroring os.LookupEnv.
type EnvironmentLookup func(name string) (string, bool)

// ContextDetector resolves the repository an invocation refers to. The
// GITHUB_REPOSITORY variable wins over the origin remote of the working tree.
type ContextDetector struct {
	environmentLookup EnvironmentLookup
	gitExecutor       GitExecutor
}

// NewContextDetector constructs a detector. A nil lookup falls back to os.LookupEnv.
func NewContextDetector(environmentLookup EnvironmentLookup, gitExecutor GitExecutor) *ContextDetector {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &ContextDetector{environmentLookup: environmentLookup, gitExecutor: gitExecutor}
}

// DetectContext determines the current repository context. A populated but
// malformed GITHUB_REPOSITORY value is reported as a spec error rather than
// silently falling through to remote detection.
func (detector *ContextDetector) DetectContext(executionContext context.Context) (RepositoryContext, error) {
	environmentValue, environmentPresent := detector.environmentLookup(repositoryEnvironmentVariableNameConstant)
	if environmentPresent && len(strings.TrimSpace(environmentValue)) > 0 {
		return ParseRepositorySpec(environmentValue)
	}

	if detector.gitExecutor == nil {
		return RepositoryContext{}, ErrRepositoryContextMissing
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, originRemoteNameConstant},
	}
	executionResult, executionError := detector.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryContext{}, ErrRepositoryContextMissing
	}

	remoteURL, parseError := ParseRemoteURL(strings.TrimSpace(executionResult.StandardOutput))
	if parseError != nil {
		return RepositoryContext{}, ErrRepositoryContextMissing
	}
	return RepositoryContext{Owner: remoteURL.Owner, Name: remoteURL.Repository}, nil
}
