// Package githubapi wraps the GitHub REST endpoints needed for repository and
// pull request browsing behind domain models and translated errors.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	listPageSizeConstant            = 100
	maximumPageCountConstant        = 50
	defaultRequestTimeoutConstant   = 30 * time.Second
	repositorySortFieldConstant     = "pushed"
	repositorySortDirectionConstant = "desc"
	pullRequestOpenStateConstant    = "open"
	retryAfterHeaderNameConstant    = "Retry-After"
	ownerRepositoryLabelTemplate    = "%s/%s"

	mergeableStateCleanAPIValueConstant   = "clean"
	mergeableStateDirtyAPIValueConstant   = "dirty"
	mergeableStateBlockedAPIValueConstant = "blocked"
	mergeableStateBehindAPIValueConstant  = "behind"
)

// MergeableState classifies whether a pull request can currently be merged.
type MergeableState string

// Mergeable state classifications.
const (
	MergeableStateClean   MergeableState = MergeableState(mergeableStateCleanAPIValueConstant)
	MergeableStateDirty   MergeableState = MergeableState(mergeableStateDirtyAPIValueConstant)
	MergeableStateBlocked MergeableState = MergeableState(mergeableStateBlockedAPIValueConstant)
	MergeableStateUnknown MergeableState = "unknown"
)

// Repository is the transient domain view of a remote repository.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	SSHURL        string `json:"ssh_url"`
	HTTPSURL      string `json:"https_url"`
	BrowserURL    string `json:"browser_url"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
}

// PullRequest is the transient domain view of an open pull request.
type PullRequest struct {
	Number         int            `json:"number"`
	Title          string         `json:"title"`
	Author         string         `json:"author"`
	HeadRef        string         `json:"head_ref"`
	BaseRef        string         `json:"base_ref"`
	MergeableState MergeableState `json:"mergeable_state"`
	URL            string         `json:"url"`
}

// Client issues authenticated REST calls and drains paginated listings.
type Client struct {
	restClient *github.Client
}

// NewClient constructs a client authenticating with the provided bearer token.
//
// The secondary rate limit round tripper is configured with a zero sleep
// budget so limited responses surface immediately instead of blocking.
func NewClient(token string) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenRequired
	}

	rateLimitDetector, detectorError := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(0, nil))
	if detectorError != nil {
		return nil, fmt.Errorf(transportErrorCreationTemplateConstant, detectorError)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	httpClient := &http.Client{
		Timeout: defaultRequestTimeoutConstant,
		Transport: &oauth2.Transport{
			Base:   rateLimitDetector,
			Source: tokenSource,
		},
	}

	return &Client{restClient: github.NewClient(httpClient)}, nil
}

// ListRepositories returns every repository visible to the token for the
// provided owner, draining pagination in server order.
func (client *Client) ListRepositories(executionContext context.Context, owner string) ([]Repository, error) {
	listOptions := &github.RepositoryListOptions{
		Sort:        repositorySortFieldConstant,
		Direction:   repositorySortDirectionConstant,
		ListOptions: github.ListOptions{PerPage: listPageSizeConstant},
	}

	var repositories []Repository
	for pageCount := 0; ; pageCount++ {
		if pageCount >= maximumPageCountConstant {
			return nil, PageLimitError{PageLimit: maximumPageCountConstant}
		}

		pageRepositories, pageResponse, listError := client.restClient.Repositories.List(executionContext, owner, listOptions)
		if listError != nil {
			return nil, translateError(listError, owner)
		}
		for _, repositoryEntry := range pageRepositories {
			repositories = append(repositories, mapRepository(repositoryEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}
	return repositories, nil
}

// ListOrganizationRepositories returns every repository of an organization
// visible to the token, draining pagination in server order.
func (client *Client) ListOrganizationRepositories(executionContext context.Context, organization string) ([]Repository, error) {
	listOptions := &github.RepositoryListByOrgOptions{
		Sort:        repositorySortFieldConstant,
		Direction:   repositorySortDirectionConstant,
		ListOptions: github.ListOptions{PerPage: listPageSizeConstant},
	}

	var repositories []Repository
	for pageCount := 0; ; pageCount++ {
		if pageCount >= maximumPageCountConstant {
			return nil, PageLimitError{PageLimit: maximumPageCountConstant}
		}

		pageRepositories, pageResponse, listError := client.restClient.Repositories.ListByOrg(executionContext, organization, listOptions)
		if listError != nil {
			return nil, translateError(listError, organization)
		}
		for _, repositoryEntry := range pageRepositories {
			repositories = append(repositories, mapRepository(repositoryEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}
	return repositories, nil
}

// ListOpenPullRequests returns the open pull requests of a repository with a
// mergeable state classification attached, draining pagination.
func (client *Client) ListOpenPullRequests(executionContext context.Context, owner string, repository string) ([]PullRequest, error) {
	resourceLabel := fmt.Sprintf(ownerRepositoryLabelTemplate, owner, repository)
	listOptions := &github.PullRequestListOptions{
		State:       pullRequestOpenStateConstant,
		ListOptions: github.ListOptions{PerPage: listPageSizeConstant},
	}

	var pullRequests []PullRequest
	for pageCount := 0; ; pageCount++ {
		if pageCount >= maximumPageCountConstant {
			return nil, PageLimitError{PageLimit: maximumPageCountConstant}
		}

		pagePullRequests, pageResponse, listError := client.restClient.PullRequests.List(executionContext, owner, repository, listOptions)
		if listError != nil {
			return nil, translateError(listError, resourceLabel)
		}
		for _, pullRequestEntry := range pagePullRequests {
			pullRequests = append(pullRequests, mapPullRequest(pullRequestEntry))
		}
		if pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}
	return pullRequests, nil
}

func mapRepository(repositoryEntry *github.Repository) Repository {
	return Repository{
		Owner:         repositoryEntry.GetOwner().GetLogin(),
		Name:          repositoryEntry.GetName(),
		FullName:      repositoryEntry.GetFullName(),
		DefaultBranch: repositoryEntry.GetDefaultBranch(),
		SSHURL:        repositoryEntry.GetSSHURL(),
		HTTPSURL:      repositoryEntry.GetCloneURL(),
		BrowserURL:    repositoryEntry.GetHTMLURL(),
		Private:       repositoryEntry.GetPrivate(),
		Fork:          repositoryEntry.GetFork(),
	}
}

func mapPullRequest(pullRequestEntry *github.PullRequest) PullRequest {
	return PullRequest{
		Number:         pullRequestEntry.GetNumber(),
		Title:          pullRequestEntry.GetTitle(),
		Author:         pullRequestEntry.GetUser().GetLogin(),
		HeadRef:        pullRequestEntry.GetHead().GetRef(),
		BaseRef:        pullRequestEntry.GetBase().GetRef(),
		MergeableState: classifyMergeableState(pullRequestEntry),
		URL:            pullRequestEntry.GetHTMLURL(),
	}
}

func classifyMergeableState(pullRequestEntry *github.PullRequest) MergeableState {
	switch strings.ToLower(pullRequestEntry.GetMergeableState()) {
	case mergeableStateCleanAPIValueConstant:
		return MergeableStateClean
	case mergeableStateDirtyAPIValueConstant:
		return MergeableStateDirty
	case mergeableStateBlockedAPIValueConstant, mergeableStateBehindAPIValueConstant:
		return MergeableStateBlocked
	}

	if pullRequestEntry.Mergeable != nil {
		if pullRequestEntry.GetMergeable() {
			return MergeableStateClean
		}
		return MergeableStateDirty
	}
	return MergeableStateUnknown
}

func translateError(operationError error, resourceLabel string) error {
	var primaryRateLimitError *github.RateLimitError
	if errors.As(operationError, &primaryRateLimitError) {
		retryAfter := time.Until(primaryRateLimitError.Rate.Reset.Time)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return RateLimitError{RetryAfter: retryAfter}
	}

	var secondaryRateLimitError *github.AbuseRateLimitError
	if errors.As(operationError, &secondaryRateLimitError) {
		return RateLimitError{RetryAfter: secondaryRateLimitError.GetRetryAfter()}
	}

	var errorResponse *github.ErrorResponse
	if errors.As(operationError, &errorResponse) {
		statusCode := 0
		if errorResponse.Response != nil {
			statusCode = errorResponse.Response.StatusCode
		}
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return AuthenticationError{StatusCode: statusCode}
		case http.StatusNotFound:
			return NotFoundError{Resource: resourceLabel}
		case http.StatusTooManyRequests:
			return RateLimitError{RetryAfter: retryAfterFromResponse(errorResponse.Response)}
		default:
			return UnexpectedStatusError{StatusCode: statusCode, Body: errorResponse.Message}
		}
	}

	return operationError
}

func retryAfterFromResponse(response *http.Response) time.Duration {
	if response == nil {
		return 0
	}
	retryAfterSeconds, parseError := strconv.Atoi(response.Header.Get(retryAfterHeaderNameConstant))
	if parseError != nil || retryAfterSeconds < 0 {
		return 0
	}
	return time.Duration(retryAfterSeconds) * time.Second
}
