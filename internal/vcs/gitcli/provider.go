// Package gitcli implements vcs.Provider by invoking the git executable.
package gitcli

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/reposet/internal/execshell"
	"github.com/temirov/reposet/internal/repos/shared"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	gitCloneSubcommandConstant            = "clone"
	gitCheckoutSubcommandConstant         = "checkout"
	gitConfigSubcommandConstant           = "config"
	gitGetRegexpFlagConstant              = "--get-regexp"
	remoteURLKeyPatternConstant           = `^remote\..*\.url$`
	remoteKeyPrefixConstant               = "remote."
	remoteURLKeySuffixConstant            = ".url"
	noMatchingConfigExitCode              = 1
	gitPullSubcommandConstant             = "pull"
	gitProgressFlagConstant               = "--progress"
	gitBranchFlagConstant                 = "--branch"
	gitTerminalPromptEnvironmentKey       = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue        = "0"
	executorNotConfiguredMessageConstant  = "git executor not configured"
	repositoryPathRequiredMessageConstant = "repository path required"
)

// ErrExecutorNotConfigured indicates the provider was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrRepositoryPathRequired indicates Open was called with an empty path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// Provider clones and opens repositories through the git executable.
type Provider struct {
	executor shared.GitExecutor
}

// NewProvider constructs a Provider backed by executor.
func NewProvider(executor shared.GitExecutor) (*Provider, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Provider{executor: executor}, nil
}

// CloneFrom runs git clone, streaming progress when a sink is supplied.
func (provider *Provider) CloneFrom(executionContext context.Context, request vcs.CloneRequest) error {
	arguments := []string{gitCloneSubcommandConstant}
	if request.Progress != nil {
		arguments = append(arguments, gitProgressFlagConstant)
	}
	if branch := strings.TrimSpace(request.Branch); len(branch) > 0 {
		arguments = append(arguments, gitBranchFlagConstant, branch)
	}
	arguments = append(arguments, request.SourceURL, request.DestinationPath)

	_, executionError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: nonInteractiveEnvironment(),
		ProgressWriter:       request.Progress,
	})
	return executionError
}

// Open returns a handle rooted at repositoryPath. The path is not validated until a command runs.
func (provider *Provider) Open(repositoryPath string) (vcs.Handle, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	return &repositoryHandle{executor: provider.executor, repositoryPath: repositoryPath}, nil
}

type repositoryHandle struct {
	executor       shared.GitExecutor
	repositoryPath string
}

func (handle *repositoryHandle) Checkout(executionContext context.Context, branch string) error {
	_, executionError := handle.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, branch},
		WorkingDirectory: handle.repositoryPath,
	})
	return executionError
}

// PrimaryRemote reads remote URL keys in configuration order; git config exits with 1 when none match.
func (handle *repositoryHandle) PrimaryRemote(executionContext context.Context) (vcs.Remote, error) {
	result, executionError := handle.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitGetRegexpFlagConstant, remoteURLKeyPatternConstant},
		WorkingDirectory: handle.repositoryPath,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) && failedError.Result.ExitCode == noMatchingConfigExitCode {
			return nil, vcs.ErrNoRemotes
		}
		return nil, executionError
	}

	remoteName, selectionError := vcs.SelectPrimaryRemoteName(parseRemoteNames(result.StandardOutput))
	if selectionError != nil {
		return nil, selectionError
	}
	return &repositoryRemote{handle: handle, name: remoteName}, nil
}

type repositoryRemote struct {
	handle *repositoryHandle
	name   string
}

func (remote *repositoryRemote) Name() string {
	return remote.name
}

func (remote *repositoryRemote) Pull(executionContext context.Context) error {
	_, executionError := remote.handle.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitPullSubcommandConstant, remote.name},
		WorkingDirectory:     remote.handle.repositoryPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	return executionError
}

// parseRemoteNames extracts remote names from "remote.<name>.url <value>" lines, keeping first occurrences.
func parseRemoteNames(configurationOutput string) []string {
	remoteNames := make([]string, 0)
	seenNames := make(map[string]struct{})
	for _, line := range strings.Split(configurationOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		key := fields[0]
		if !strings.HasPrefix(key, remoteKeyPrefixConstant) || !strings.HasSuffix(key, remoteURLKeySuffixConstant) {
			continue
		}
		remoteName := strings.TrimSuffix(strings.TrimPrefix(key, remoteKeyPrefixConstant), remoteURLKeySuffixConstant)
		if _, seen := seenNames[remoteName]; seen || len(remoteName) == 0 {
			continue
		}
		seenNames[remoteName] = struct{}{}
		remoteNames = append(remoteNames, remoteName)
	}
	return remoteNames
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentKey: gitTerminalPromptDisabledValue}
}
