package gitcli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposet/internal/execshell"
	"github.com/temirov/reposet/internal/vcs"
	"github.com/temirov/reposet/internal/vcs/gitcli"
)

const (
	testRepositoryPathConstant    = "/tmp/projects/svc-a"
	testSourceURLConstant         = "https://github.com/acme/svc-a"
	testBranchConstant            = "develop"
	testTerminalPromptKeyConstant = "GIT_TERMINAL_PROMPT"
)

type stubGitExecutor struct {
	results         []execshell.ExecutionResult
	errors          []error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	index := len(executor.recordedDetails)
	executor.recordedDetails = append(executor.recordedDetails, details)

	var result execshell.ExecutionResult
	if index < len(executor.results) {
		result = executor.results[index]
	}
	var executionError error
	if index < len(executor.errors) {
		executionError = executor.errors[index]
	}
	return result, executionError
}

func TestNewProviderRequiresExecutor(testInstance *testing.T) {
	provider, creationError := gitcli.NewProvider(nil)
	require.ErrorIs(testInstance, creationError, gitcli.ErrExecutorNotConfigured)
	require.Nil(testInstance, provider)
}

func TestCloneFromBuildsArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		request           vcs.CloneRequest
		expectedArguments []string
	}{
		{
			name:              "default_branch_without_progress",
			request:           vcs.CloneRequest{SourceURL: testSourceURLConstant, DestinationPath: testRepositoryPathConstant},
			expectedArguments: []string{"clone", testSourceURLConstant, testRepositoryPathConstant},
		},
		{
			name: "branch_with_progress",
			request: vcs.CloneRequest{
				SourceURL:       testSourceURLConstant,
				DestinationPath: testRepositoryPathConstant,
				Branch:          testBranchConstant,
				Progress:        &bytes.Buffer{},
			},
			expectedArguments: []string{"clone", "--progress", "--branch", testBranchConstant, testSourceURLConstant, testRepositoryPathConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{}
			provider, creationError := gitcli.NewProvider(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, provider.CloneFrom(context.Background(), testCase.request))
			require.Len(testInstance, executor.recordedDetails, 1)
			recorded := executor.recordedDetails[0]
			require.Equal(testInstance, testCase.expectedArguments, recorded.Arguments)
			require.Equal(testInstance, "0", recorded.EnvironmentVariables[testTerminalPromptKeyConstant])
			require.Equal(testInstance, testCase.request.Progress, recorded.ProgressWriter)
		})
	}
}

func TestCloneFromPropagatesFailure(testInstance *testing.T) {
	failure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128, StandardError: "repository not found"}}
	executor := &stubGitExecutor{errors: []error{failure}}
	provider, creationError := gitcli.NewProvider(executor)
	require.NoError(testInstance, creationError)

	cloneError := provider.CloneFrom(context.Background(), vcs.CloneRequest{SourceURL: testSourceURLConstant, DestinationPath: testRepositoryPathConstant})
	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, cloneError, &failedError)
	require.Equal(testInstance, 128, failedError.Result.ExitCode)
}

func TestOpenRejectsEmptyPath(testInstance *testing.T) {
	provider, creationError := gitcli.NewProvider(&stubGitExecutor{})
	require.NoError(testInstance, creationError)

	handle, openError := provider.Open("  ")
	require.ErrorIs(testInstance, openError, gitcli.ErrRepositoryPathRequired)
	require.Nil(testInstance, handle)
}

func TestHandleCheckoutAndPullFromPrimaryRemote(testInstance *testing.T) {
	executor := &stubGitExecutor{
		results: []execshell.ExecutionResult{
			{},
			{StandardOutput: "remote.origin.url https://github.com/acme/svc-a\nremote.backup.url /srv/mirror/svc-a\nremote.origin.url git@github.com:acme/svc-a\n"},
			{},
		},
	}
	provider, creationError := gitcli.NewProvider(executor)
	require.NoError(testInstance, creationError)

	handle, openError := provider.Open(testRepositoryPathConstant)
	require.NoError(testInstance, openError)

	require.NoError(testInstance, handle.Checkout(context.Background(), testBranchConstant))

	remote, remoteError := handle.PrimaryRemote(context.Background())
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, "origin", remote.Name())

	require.NoError(testInstance, remote.Pull(context.Background()))

	require.Len(testInstance, executor.recordedDetails, 3)
	require.Equal(testInstance, []string{"checkout", testBranchConstant}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, []string{"config", "--get-regexp", `^remote\..*\.url$`}, executor.recordedDetails[1].Arguments)
	require.Equal(testInstance, []string{"pull", "origin"}, executor.recordedDetails[2].Arguments)
	for _, recorded := range executor.recordedDetails {
		require.Equal(testInstance, testRepositoryPathConstant, recorded.WorkingDirectory)
	}
}

func TestPrimaryRemoteFailures(testInstance *testing.T) {
	listingFailure := errors.New("not a git repository")

	testCases := []struct {
		name          string
		executor      *stubGitExecutor
		expectedError error
	}{
		{
			name:          "no_remotes",
			executor:      &stubGitExecutor{results: []execshell.ExecutionResult{{StandardOutput: "\n"}}},
			expectedError: vcs.ErrNoRemotes,
		},
		{
			name: "no_matching_configuration",
			executor: &stubGitExecutor{errors: []error{
				execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}},
			}},
			expectedError: vcs.ErrNoRemotes,
		},
		{
			name:          "listing_fails",
			executor:      &stubGitExecutor{errors: []error{listingFailure}},
			expectedError: listingFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider, creationError := gitcli.NewProvider(testCase.executor)
			require.NoError(testInstance, creationError)

			handle, openError := provider.Open(testRepositoryPathConstant)
			require.NoError(testInstance, openError)

			remote, remoteError := handle.PrimaryRemote(context.Background())
			require.ErrorIs(testInstance, remoteError, testCase.expectedError)
			require.Nil(testInstance, remote)
		})
	}
}
