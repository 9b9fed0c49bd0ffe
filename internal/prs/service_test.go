package prs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
	"github.com/temirov/gho/internal/gitrepo"
	"github.com/temirov/gho/internal/prs"
)

const (
	testAccountIdentifierConstant       = "personal"
	testResolvedTokenConstant           = "resolved-token"
	testRepositorySpecConstant          = "octocat/widgets"
	testDetectedOwnerConstant           = "acme"
	testDetectedRepositoryConstant      = "tools"
	testExplicitSpecCaseNameConstant    = "explicit_spec_skips_detection"
	testDetectedContextCaseNameConstant = "detected_context_used"
)

type stubTokenResolver struct {
	resolvedToken   string
	resolutionError error
}

func (resolver stubTokenResolver) ResolveToken(accounts.Account) (string, error) {
	return resolver.resolvedToken, resolver.resolutionError
}

type stubPullRequestLister struct {
	pullRequests     []githubapi.PullRequest
	listError        error
	recordedContexts []gitrepo.RepositoryContext
}

func (lister *stubPullRequestLister) ListOpenPullRequests(executionContext context.Context, owner string, repository string) ([]githubapi.PullRequest, error) {
	lister.recordedContexts = append(lister.recordedContexts, gitrepo.RepositoryContext{Owner: owner, Name: repository})
	return lister.pullRequests, lister.listError
}

type stubContextDetector struct {
	detectedContext gitrepo.RepositoryContext
	detectionError  error
	invocationCount int
}

func (detector *stubContextDetector) DetectContext(context.Context) (gitrepo.RepositoryContext, error) {
	detector.invocationCount++
	return detector.detectedContext, detector.detectionError
}

type recordingRepositoryRecorder struct {
	recordedRepositories []string
}

func (recorder *recordingRepositoryRecorder) RecordRepository(repository string) {
	recorder.recordedRepositories = append(recorder.recordedRepositories, repository)
}

func newTestService(testInstance *testing.T, lister *stubPullRequestLister, detector *stubContextDetector, recorder *recordingRepositoryRecorder) *prs.Service {
	testInstance.Helper()

	dependencies := prs.Dependencies{
		TokenResolver: stubTokenResolver{resolvedToken: testResolvedTokenConstant},
		ClientFactory: func(token string) (prs.PullRequestLister, error) {
			require.Equal(testInstance, testResolvedTokenConstant, token)
			return lister, nil
		},
		ContextDetector: detector,
	}
	if recorder != nil {
		dependencies.RepositoryRecorder = recorder
	}
	service, creationError := prs.NewService(dependencies)
	require.NoError(testInstance, creationError)
	return service
}

func TestServiceConstructionValidation(testInstance *testing.T) {
	_, missingResolverError := prs.NewService(prs.Dependencies{
		ClientFactory:   func(string) (prs.PullRequestLister, error) { return nil, nil },
		ContextDetector: &stubContextDetector{},
	})
	require.ErrorIs(testInstance, missingResolverError, prs.ErrTokenResolverNotConfigured)

	_, missingFactoryError := prs.NewService(prs.Dependencies{
		TokenResolver:   stubTokenResolver{},
		ContextDetector: &stubContextDetector{},
	})
	require.ErrorIs(testInstance, missingFactoryError, prs.ErrClientFactoryNotConfigured)

	_, missingDetectorError := prs.NewService(prs.Dependencies{
		TokenResolver: stubTokenResolver{},
		ClientFactory: func(string) (prs.PullRequestLister, error) { return nil, nil },
	})
	require.ErrorIs(testInstance, missingDetectorError, prs.ErrContextDetectorNotConfigured)
}

func TestListOpenPullRequestsContextResolution(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		repositorySpec          string
		expectedContext         gitrepo.RepositoryContext
		expectedDetectionCount  int
		expectedRecordedContext string
	}{
		{
			name:                    testExplicitSpecCaseNameConstant,
			repositorySpec:          testRepositorySpecConstant,
			expectedContext:         gitrepo.RepositoryContext{Owner: "octocat", Name: "widgets"},
			expectedDetectionCount:  0,
			expectedRecordedContext: testRepositorySpecConstant,
		},
		{
			name:                    testDetectedContextCaseNameConstant,
			repositorySpec:          "",
			expectedContext:         gitrepo.RepositoryContext{Owner: testDetectedOwnerConstant, Name: testDetectedRepositoryConstant},
			expectedDetectionCount:  1,
			expectedRecordedContext: "acme/tools",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lister := &stubPullRequestLister{}
			detector := &stubContextDetector{
				detectedContext: gitrepo.RepositoryContext{Owner: testDetectedOwnerConstant, Name: testDetectedRepositoryConstant},
			}
			recorder := &recordingRepositoryRecorder{}
			service := newTestService(testInstance, lister, detector, recorder)

			_, listError := service.ListOpenPullRequests(context.Background(), accounts.Account{ID: testAccountIdentifierConstant}, testCase.repositorySpec)
			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedDetectionCount, detector.invocationCount)
			require.Equal(testInstance, []gitrepo.RepositoryContext{testCase.expectedContext}, lister.recordedContexts)
			require.Equal(testInstance, []string{testCase.expectedRecordedContext}, recorder.recordedRepositories)
		})
	}
}

func TestListOpenPullRequestsSortsByNumber(testInstance *testing.T) {
	lister := &stubPullRequestLister{
		pullRequests: []githubapi.PullRequest{
			{Number: 41, Title: "later"},
			{Number: 7, Title: "earlier"},
			{Number: 23, Title: "middle"},
		},
	}
	service := newTestService(testInstance, lister, &stubContextDetector{}, nil)

	pullRequests, listError := service.ListOpenPullRequests(context.Background(), accounts.Account{ID: testAccountIdentifierConstant}, testRepositorySpecConstant)
	require.NoError(testInstance, listError)

	pullRequestNumbers := make([]int, 0, len(pullRequests))
	for _, pullRequestEntry := range pullRequests {
		pullRequestNumbers = append(pullRequestNumbers, pullRequestEntry.Number)
	}
	require.Equal(testInstance, []int{7, 23, 41}, pullRequestNumbers)
}

func TestListOpenPullRequestsPropagatesMissingContext(testInstance *testing.T) {
	detector := &stubContextDetector{detectionError: gitrepo.ErrRepositoryContextMissing}
	service := newTestService(testInstance, &stubPullRequestLister{}, detector, nil)

	_, listError := service.ListOpenPullRequests(context.Background(), accounts.Account{ID: testAccountIdentifierConstant}, "")
	require.ErrorIs(testInstance, listError, gitrepo.ErrRepositoryContextMissing)
}
