package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/execshell"
	"github.com/temirov/reposet/internal/repos/dependencies"
	"github.com/temirov/reposet/internal/repos/filesystem"
	"github.com/temirov/reposet/internal/vcs"
	"github.com/temirov/reposet/internal/vcs/gitcli"
	"github.com/temirov/reposet/internal/vcs/gogit"
)

type stubProvider struct{}

func (stubProvider) CloneFrom(context.Context, vcs.CloneRequest) error { return nil }

func (stubProvider) Open(string) (vcs.Handle, error) { return nil, nil }

type stubGitExecutor struct{}

func (stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveDefaults(testInstance *testing.T) {
	require.NotNil(testInstance, dependencies.ResolveLogger(nil))
	require.IsType(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
	require.IsType(testInstance, &envfile.Parser{}, dependencies.ResolveTemplateParser(nil))

	executor, executorError := dependencies.ResolveGitExecutor(nil, zap.NewNop(), true)
	require.NoError(testInstance, executorError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, executor)
}

func TestResolveProvider(testInstance *testing.T) {
	testCases := []struct {
		name          string
		existing      vcs.Provider
		kind          vcs.ProviderKind
		expectedType  any
		expectedError error
	}{
		{name: "existing_wins", existing: stubProvider{}, kind: vcs.ProviderKindGoGit, expectedType: stubProvider{}},
		{name: "command_line", kind: vcs.ProviderKindCommandLine, expectedType: &gitcli.Provider{}},
		{name: "empty_kind", kind: "", expectedType: &gitcli.Provider{}},
		{name: "go_git", kind: vcs.ProviderKindGoGit, expectedType: &gogit.Provider{}},
		{name: "unknown", kind: vcs.ProviderKind("svn"), expectedError: vcs.ErrUnknownProviderKind},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider, resolveError := dependencies.ResolveProvider(testCase.existing, testCase.kind, stubGitExecutor{}, nil, false)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.IsType(testInstance, testCase.expectedType, provider)
		})
	}
}
