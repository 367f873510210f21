package repos_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposet/cmd/cli/repos"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	testMainGitURLConstant = "https://github.com/UCLH-DHCT"
	testRemoteNameConstant = "origin"
)

// stubProvider creates destination directories on clone and records each call in order.
type stubProvider struct {
	calls         []string
	cloneRequests []vcs.CloneRequest
	failures      map[string]error
}

func newStubProvider() *stubProvider {
	return &stubProvider{failures: map[string]error{}}
}

func (provider *stubProvider) record(call string) error {
	provider.calls = append(provider.calls, call)
	return provider.failures[call]
}

func (provider *stubProvider) CloneFrom(_ context.Context, request vcs.CloneRequest) error {
	provider.cloneRequests = append(provider.cloneRequests, request)
	if failure := provider.record("clone:" + filepath.Base(request.DestinationPath)); failure != nil {
		return failure
	}
	return os.MkdirAll(request.DestinationPath, 0o755)
}

func (provider *stubProvider) Open(repositoryPath string) (vcs.Handle, error) {
	repositoryName := filepath.Base(repositoryPath)
	if failure := provider.record("open:" + repositoryName); failure != nil {
		return nil, failure
	}
	return stubHandle{provider: provider, repositoryName: repositoryName}, nil
}

type stubHandle struct {
	provider       *stubProvider
	repositoryName string
}

func (handle stubHandle) Checkout(_ context.Context, branch string) error {
	return handle.provider.record("checkout:" + handle.repositoryName + ":" + branch)
}

func (handle stubHandle) PrimaryRemote(context.Context) (vcs.Remote, error) {
	return stubRemote{provider: handle.provider, repositoryName: handle.repositoryName}, nil
}

type stubRemote struct {
	provider       *stubProvider
	repositoryName string
}

func (remote stubRemote) Name() string {
	return testRemoteNameConstant
}

func (remote stubRemote) Pull(context.Context) error {
	return remote.provider.record("pull:" + remote.repositoryName)
}

func newTestDependencies(provider vcs.Provider, configuration repos.Configuration) repos.CommandDependencies {
	return repos.CommandDependencies{
		Provider: provider,
		ConfigurationProvider: func() repos.Configuration {
			return configuration
		},
	}
}

func newTestConfiguration(root string, entries ...repos.RepositoryEntry) repos.Configuration {
	configuration := repos.DefaultConfiguration()
	configuration.Root = root
	configuration.MainGitURL = testMainGitURLConstant
	configuration.Repositories = entries
	return configuration
}

// executeCommand runs command with arguments and returns captured standard output.
func executeCommand(testInstance *testing.T, command *cobra.Command, arguments ...string) (string, error) {
	testInstance.Helper()
	standardOutput, _, executionError := executeCommandCapturingStreams(testInstance, command, arguments...)
	return standardOutput, executionError
}

func executeCommandCapturingStreams(testInstance *testing.T, command *cobra.Command, arguments ...string) (string, string, error) {
	testInstance.Helper()

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	command.SetOut(&standardOutput)
	command.SetErr(&standardError)
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	executionError := command.Execute()
	return standardOutput.String(), standardError.String(), executionError
}

func createDirectories(testInstance *testing.T, root string, names ...string) {
	testInstance.Helper()
	for _, name := range names {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(root, name), 0o755))
	}
}
