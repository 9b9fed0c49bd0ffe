package pr_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	prcmd "github.com/temirov/gho/cmd/cli/pr"
	"github.com/temirov/gho/internal/accounts"
	"github.com/temirov/gho/internal/githubapi"
)

const (
	testAccountIdentifierConstant = "personal"
	testRepositorySpecConstant    = "octocat/widgets"
)

type recordingPullRequestService struct {
	pullRequests  []githubapi.PullRequest
	listError     error
	recordedSpecs []string
}

func (service *recordingPullRequestService) ListOpenPullRequests(_ context.Context, _ accounts.Account, repositorySpec string) ([]githubapi.PullRequest, error) {
	service.recordedSpecs = append(service.recordedSpecs, repositorySpec)
	return service.pullRequests, service.listError
}

func buildTestCommand(testInstance *testing.T, service *recordingPullRequestService) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()

	builder := prcmd.CommandBuilder{
		ServiceProvider: func() (prcmd.Service, error) {
			return service, nil
		},
		AccountProvider: func() (accounts.Account, error) {
			return accounts.Account{ID: testAccountIdentifierConstant}, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	return command, outputBuffer
}

func TestCommandBuilderValidation(testInstance *testing.T) {
	_, missingServiceError := (&prcmd.CommandBuilder{
		AccountProvider: func() (accounts.Account, error) { return accounts.Account{}, nil },
	}).Build()
	require.ErrorIs(testInstance, missingServiceError, prcmd.ErrServiceProviderNotConfigured)

	_, missingAccountError := (&prcmd.CommandBuilder{
		ServiceProvider: func() (prcmd.Service, error) { return nil, nil },
	}).Build()
	require.ErrorIs(testInstance, missingAccountError, prcmd.ErrAccountProviderNotConfigured)
}

func TestListCommandRendersTable(testInstance *testing.T) {
	service := &recordingPullRequestService{
		pullRequests: []githubapi.PullRequest{
			{Number: 7, Title: "Fix flaky test", Author: "octocat", HeadRef: "fix/test", BaseRef: "main", MergeableState: githubapi.MergeableStateClean},
			{Number: 23, Title: "Add caching", Author: "hubber", HeadRef: "feat/cache", BaseRef: "main", MergeableState: githubapi.MergeableStateDirty},
		},
	}
	command, outputBuffer := buildTestCommand(testInstance, service)
	command.SetArgs([]string{"list", testRepositorySpecConstant})

	require.NoError(testInstance, command.Execute())
	renderedOutput := outputBuffer.String()
	require.Equal(testInstance, []string{testRepositorySpecConstant}, service.recordedSpecs)
	require.Contains(testInstance, renderedOutput, "#7")
	require.Contains(testInstance, renderedOutput, "Fix flaky test")
	require.Contains(testInstance, renderedOutput, "fix/test -> main")
	require.Contains(testInstance, renderedOutput, string(githubapi.MergeableStateDirty))
}

func TestListCommandWithoutArgumentsUsesDetection(testInstance *testing.T) {
	service := &recordingPullRequestService{}
	command, outputBuffer := buildTestCommand(testInstance, service)
	command.SetArgs([]string{"list"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{""}, service.recordedSpecs)
	require.Contains(testInstance, outputBuffer.String(), "No open pull requests.")
}

func TestListCommandEmitsJSON(testInstance *testing.T) {
	service := &recordingPullRequestService{
		pullRequests: []githubapi.PullRequest{
			{Number: 41, Title: "Bump dependencies", MergeableState: githubapi.MergeableStateUnknown},
		},
	}
	command, outputBuffer := buildTestCommand(testInstance, service)
	command.SetArgs([]string{"list", testRepositorySpecConstant, "--json"})

	require.NoError(testInstance, command.Execute())
	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, `"number": 41`)
	require.Contains(testInstance, renderedOutput, `"mergeable_state": "unknown"`)
}
