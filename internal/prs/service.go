// Package prs lists open pull requests for the repository an invocation
// refers to.
package prs

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/gitrepo"
)

const (
	tokenResolverNotConfiguredMessageConstant   = "token resolver not configured"
	clientFactoryNotConfiguredMessageConstant   = "client factory not configured"
	contextDetectorNotConfiguredMessageConstant = "repository context detector not configured"
	pullRequestListLogMessageConstant           = "listing open pull requests"
	repositoryLogFieldNameConstant              = "repository"
)

// Configuration errors reported by NewService.
var (
	ErrTokenResolverNotConfigured   = errors.New(tokenResolverNotConfiguredMessageConstant)
	ErrClientFactoryNotConfigured   = errors.New(clientFactoryNotConfiguredMessageConstant)
	ErrContextDetectorNotConfigured = errors.New(contextDetectorNotConfiguredMessageConstant)
)

// TokenResolver produces an API token for an account.
type TokenResolver interface {
	ResolveToken(account accounts.Account) (string, error)
}

// PullRequestLister lists open pull requests of one repository.
type PullRequestLister interface {
	ListOpenPullRequests(executionContext context.Context, owner string, repository string) ([]githubapi.PullRequest, error)
}

// ClientFactory builds an authenticated pull request lister from a token.
type ClientFactory func(token string) (PullRequestLister, error)

// RepositoryContextDetector resolves the repository an invocation refers to.
type RepositoryContextDetector interface {
	DetectContext(executionContext context.Context) (gitrepo.RepositoryContext, error)
}

// RepositoryRecorder remembers the repository most recently operated on.
type RepositoryRecorder interface {
	RecordRepository(repository string)
}

// Dependencies enumerates the collaborators used by Service.
type Dependencies struct {
	TokenResolver      TokenResolver
	ClientFactory      ClientFactory
	ContextDetector    RepositoryContextDetector
	RepositoryRecorder RepositoryRecorder
	Logger             *zap.Logger
}

// Service lists open pull requests scoped to one account.
type Service struct {
	dependencies Dependencies
}

// NewDefaultClientFactory returns a factory producing real API clients.
func NewDefaultClientFactory() ClientFactory {
	return func(token string) (PullRequestLister, error) {
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
	if dependencies.ContextDetector == nil {
		return nil, ErrContextDetectorNotConfigured
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}, nil
}

// ListOpenPullRequests lists the open pull requests of the repository named by
// repositorySpec, or of the detected repository context when the spec is
// empty. Results are ordered by ascending pull request number.
func (service *Service) ListOpenPullRequests(executionContext context.Context, account accounts.Account, repositorySpec string) ([]githubapi.PullRequest, error) {
	repositoryContext, contextError := service.resolveRepositoryContext(executionContext, repositorySpec)
	if contextError != nil {
		return nil, contextError
	}

	resolvedToken, resolutionError := service.dependencies.TokenResolver.ResolveToken(account)
	if resolutionError != nil {
		return nil, resolutionError
	}
	apiClient, clientError := service.dependencies.ClientFactory(resolvedToken)
	if clientError != nil {
		return nil, clientError
	}

	service.dependencies.Logger.Debug(pullRequestListLogMessageConstant,
		zap.String(repositoryLogFieldNameConstant, repositoryContext.String()))

	pullRequests, listError := apiClient.ListOpenPullRequests(executionContext, repositoryContext.Owner, repositoryContext.Name)
	if listError != nil {
		return nil, listError
	}

	sort.Slice(pullRequests, func(firstIndex int, secondIndex int) bool {
		return pullRequests[firstIndex].Number < pullRequests[secondIndex].Number
	})

	if service.dependencies.RepositoryRecorder != nil {
		service.dependencies.RepositoryRecorder.RecordRepository(repositoryContext.String())
	}
	return pullRequests, nil
}

func (service *Service) resolveRepositoryContext(executionContext context.Context, repositorySpec string) (gitrepo.RepositoryContext, error) {
	trimmedSpec := strings.TrimSpace(repositorySpec)
	if len(trimmedSpec) > 0 {
		return gitrepo.ParseRepositorySpec(trimmedSpec)
	}
	return service.dependencies.ContextDetector.DetectContext(executionContext)
}
