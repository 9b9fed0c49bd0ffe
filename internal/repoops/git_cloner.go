package repoops

import (
	"context"

	"github.com/temirov/gho/internal/execshell"
)

const gitCloneSubcommandConstant = "clone"

// GitExecutor exposes the subset of shell execution used for cloning.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ShellGitCloner clones repositories by shelling out to git, inheriting the
// user's SSH and credential configuration.
type ShellGitCloner struct {
	gitExecutor GitExecutor
}

// NewShellGitCloner constructs a cloner backed by the provided executor.
func NewShellGitCloner(gitExecutor GitExecutor) *ShellGitCloner {
	return &ShellGitCloner{gitExecutor: gitExecutor}
}

// CloneRepository clones the remote at cloneURL into destinationPath.
func (cloner *ShellGitCloner) CloneRepository(executionContext context.Context, cloneURL string, destinationPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, cloneURL, destinationPath},
	}
	_, executionError := cloner.gitExecutor.ExecuteGit(executionContext, commandDetails)
	return executionError
}
