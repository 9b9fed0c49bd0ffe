// Package repoops implements repository listing and cloning on behalf of the
// active account.
package repoops

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/gitrepo"
	pathutils "github.com/temirov/gho/internal/utils/path"
)

const (
	gitHubHostNameConstant             = "github.com"
	currentDirectoryConstant           = "."
	cloneRootPermissionsConstant       = 0o755
	cloneStartedLogMessageConstant     = "cloning repository"
	cloneFailedLogMessageConstant      = "clone failed"
	repositoryLogFieldNameConstant     = "repository"
	destinationLogFieldNameConstant    = "destination"
	organizationLogFieldNameConstant   = "organization"
	organizationListLogMessageConstant = "listing organization repositories"
)

// TokenResolver produces an API token for an account.
type TokenResolver interface {
	ResolveToken(account accounts.Account) (string, error)
}

// RepositoryLister lists repositories visible to an authenticated client.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, owner string) ([]githubapi.Repository, error)
	ListOrganizationRepositories(executionContext context.Context, organization string) ([]githubapi.Repository, error)
}

// ClientFactory builds an authenticated repository lister from a token.
type ClientFactory func(token string) (RepositoryLister, error)

// RepositoryCloner clones one remote repository into a local destination.
type RepositoryCloner interface {
	CloneRepository(executionContext context.Context, cloneURL string, destinationPath string) error
}

// PathExpander resolves user home shortcuts in configured paths.
type PathExpander interface {
	Expand(candidatePath string) string
}

// OrganizationRecorder remembers the organization most recently operated on.
type OrganizationRecorder interface {
	RecordOrganization(organization string)
}

// CloneOutcome reports the result of cloning a single repository. A nil
// Failure means the clone succeeded.
type CloneOutcome struct {
	Repository  string
	Destination string
	Failure     error
}

// CloneReport aggregates per-repository outcomes of a bulk clone. It always
// holds one entry per repository attempted, in listing order.
type CloneReport []CloneOutcome

// SuccessCount returns the number of successful clones.
func (report CloneReport) SuccessCount() int {
	successCount := 0
	for _, outcome := range report {
		if outcome.Failure == nil {
			successCount++
		}
	}
	return successCount
}

// FailureCount returns the number of failed clones.
func (report CloneReport) FailureCount() int {
	return len(report) - report.SuccessCount()
}

// Dependencies enumerates the collaborators used by Service.
type Dependencies struct {
	TokenResolver        TokenResolver
	ClientFactory        ClientFactory
	Cloner               RepositoryCloner
	FileSystem           FileSystem
	PathExpander         PathExpander
	OrganizationRecorder OrganizationRecorder
	Logger               *zap.Logger
}

// Service exposes repository operations scoped to one account.
type Service struct {
	dependencies Dependencies
}

// NewDefaultClientFactory returns a factory producing real API clients.
func NewDefaultClientFactory() ClientFactory {
	return func(token string) (RepositoryLister, error) {
		return githubapi.NewClient(token)
	}
}

// NewService constructs a Service, applying defaults for optional collaborators.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.TokenResolver == nil {
		return nil, ErrTokenResolverNotConfigured
	}
	if dependencies.ClientFactory == nil {
		return nil, ErrClientFactoryNotConfigured
	}
	if dependencies.Cloner == nil {
		return nil, ErrClonerNotConfigured
	}
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = OSFileSystem{}
	}
	if dependencies.PathExpander == nil {
		dependencies.PathExpander = pathutils.NewHomeExpander()
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}, nil
}

// ListRepositories lists the repositories the account can see. A non-empty
// organization override, or the account's default organization, switches the
// listing to that organization.
func (service *Service) ListRepositories(executionContext context.Context, account accounts.Account, organizationOverride string) ([]githubapi.Repository, error) {
	apiClient, clientError := service.buildClient(account)
	if clientError != nil {
		return nil, clientError
	}

	organization := service.selectOrganization(account, organizationOverride)
	if len(organization) > 0 {
		service.dependencies.Logger.Debug(organizationListLogMessageConstant,
			zap.String(organizationLogFieldNameConstant, organization))
		repositories, listError := apiClient.ListOrganizationRepositories(executionContext, organization)
		if listError != nil {
			return nil, listError
		}
		service.recordOrganization(organization)
		return repositories, nil
	}

	return apiClient.ListRepositories(executionContext, account.Username)
}

// CloneRepository clones a single repository identified by an owner/repository
// specification, using the account's preferred protocol, and returns the
// destination path.
func (service *Service) CloneRepository(executionContext context.Context, account accounts.Account, repositorySpec string, destinationOverride string) (string, error) {
	repositoryContext, specError := gitrepo.ParseRepositorySpec(repositorySpec)
	if specError != nil {
		return "", specError
	}

	cloneURL, formatError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{
		Protocol:   remoteProtocolForAccount(account),
		Host:       gitHubHostNameConstant,
		Owner:      repositoryContext.Owner,
		Repository: repositoryContext.Name,
	})
	if formatError != nil {
		return "", formatError
	}

	destinationPath, destinationError := service.resolveCloneDestination(account, repositoryContext.Name, destinationOverride)
	if destinationError != nil {
		return "", destinationError
	}
	if _, statError := service.dependencies.FileSystem.Stat(destinationPath); statError == nil {
		return "", CloneError{RepositoryName: repositoryContext.Name, Cause: ErrDestinationExists}
	}

	service.dependencies.Logger.Info(cloneStartedLogMessageConstant,
		zap.String(repositoryLogFieldNameConstant, repositoryContext.String()),
		zap.String(destinationLogFieldNameConstant, destinationPath))

	if cloneError := service.dependencies.Cloner.CloneRepository(executionContext, cloneURL, destinationPath); cloneError != nil {
		return "", CloneError{RepositoryName: repositoryContext.Name, Cause: cloneError}
	}
	return destinationPath, nil
}

// CloneOrganization clones every repository of an organization sequentially.
// Individual failures are recorded in the report and never abort the walk;
// the returned report holds one outcome per listed repository.
func (service *Service) CloneOrganization(executionContext context.Context, account accounts.Account, organizationOverride string, targetDirectory string) (CloneReport, error) {
	organization := service.selectOrganization(account, organizationOverride)
	if len(organization) == 0 {
		return nil, ErrOrganizationRequired
	}

	apiClient, clientError := service.buildClient(account)
	if clientError != nil {
		return nil, clientError
	}

	repositories, listError := apiClient.ListOrganizationRepositories(executionContext, organization)
	if listError != nil {
		return nil, listError
	}
	service.recordOrganization(organization)

	cloneRoot := service.resolveCloneRoot(account, targetDirectory)
	if directoryError := service.dependencies.FileSystem.MkdirAll(cloneRoot, cloneRootPermissionsConstant); directoryError != nil {
		return nil, directoryError
	}

	report := make(CloneReport, 0, len(repositories))
	for _, repository := range repositories {
		report = append(report, service.cloneOneRepository(executionContext, account, repository, cloneRoot))
	}
	return report, nil
}

func (service *Service) cloneOneRepository(executionContext context.Context, account accounts.Account, repository githubapi.Repository, cloneRoot string) CloneOutcome {
	outcome := CloneOutcome{
		Repository:  repository.Name,
		Destination: filepath.Join(cloneRoot, repository.Name),
	}

	cloneURL, urlError := selectCloneURL(repository, account.CloneProtocol)
	if urlError != nil {
		outcome.Failure = CloneError{RepositoryName: repository.Name, Cause: urlError}
		return outcome
	}

	if _, statError := service.dependencies.FileSystem.Stat(outcome.Destination); statError == nil {
		outcome.Failure = CloneError{RepositoryName: repository.Name, Cause: ErrDestinationExists}
		return outcome
	}

	if cloneError := service.dependencies.Cloner.CloneRepository(executionContext, cloneURL, outcome.Destination); cloneError != nil {
		service.dependencies.Logger.Warn(cloneFailedLogMessageConstant,
			zap.String(repositoryLogFieldNameConstant, repository.Name),
			zap.Error(cloneError))
		outcome.Failure = CloneError{RepositoryName: repository.Name, Cause: cloneError}
	}
	return outcome
}

func (service *Service) buildClient(account accounts.Account) (RepositoryLister, error) {
	resolvedToken, resolutionError := service.dependencies.TokenResolver.ResolveToken(account)
	if resolutionError != nil {
		return nil, resolutionError
	}
	return service.dependencies.ClientFactory(resolvedToken)
}

func (service *Service) selectOrganization(account accounts.Account, organizationOverride string) string {
	trimmedOverride := strings.TrimSpace(organizationOverride)
	if len(trimmedOverride) > 0 {
		return trimmedOverride
	}
	return strings.TrimSpace(account.DefaultOrganization)
}

func (service *Service) recordOrganization(organization string) {
	if service.dependencies.OrganizationRecorder != nil {
		service.dependencies.OrganizationRecorder.RecordOrganization(organization)
	}
}

func (service *Service) resolveCloneDestination(account accounts.Account, repositoryName string, destinationOverride string) (string, error) {
	trimmedOverride := strings.TrimSpace(destinationOverride)
	if len(trimmedOverride) > 0 {
		return service.dependencies.PathExpander.Expand(trimmedOverride), nil
	}

	cloneRoot := service.resolveCloneRoot(account, "")
	if cloneRoot != currentDirectoryConstant {
		if directoryError := service.dependencies.FileSystem.MkdirAll(cloneRoot, cloneRootPermissionsConstant); directoryError != nil {
			return "", directoryError
		}
	}
	return filepath.Join(cloneRoot, repositoryName), nil
}

func (service *Service) resolveCloneRoot(account accounts.Account, targetDirectory string) string {
	trimmedTarget := strings.TrimSpace(targetDirectory)
	if len(trimmedTarget) > 0 {
		return service.dependencies.PathExpander.Expand(trimmedTarget)
	}
	trimmedCloneDirectory := strings.TrimSpace(account.CloneDirectory)
	if len(trimmedCloneDirectory) > 0 {
		return service.dependencies.PathExpander.Expand(trimmedCloneDirectory)
	}
	return currentDirectoryConstant
}

func remoteProtocolForAccount(account accounts.Account) gitrepo.RemoteProtocol {
	if account.CloneProtocol == accounts.CloneProtocolHTTPS {
		return gitrepo.RemoteProtocolHTTPS
	}
	return gitrepo.RemoteProtocolSSH
}

func selectCloneURL(repository githubapi.Repository, protocol accounts.CloneProtocol) (string, error) {
	preferredURL := repository.SSHURL
	fallbackURL := repository.HTTPSURL
	if protocol == accounts.CloneProtocolHTTPS {
		preferredURL, fallbackURL = repository.HTTPSURL, repository.SSHURL
	}
	if len(strings.TrimSpace(preferredURL)) > 0 {
		return preferredURL, nil
	}
	if len(strings.TrimSpace(fallbackURL)) > 0 {
		return fallbackURL, nil
	}
	return "", ErrCloneURLUnavailable
}
