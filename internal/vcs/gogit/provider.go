// Package gogit implements vcs.Provider in process with go-git.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/reposet/internal/vcs"
)

const (
	branchNotFoundMessageConstant       = "branch not found locally or on the primary remote"
	branchNotFoundErrorTemplateConstant = "%w: %s"
	openRepositoryErrorTemplateConstant = "open repository %s: %w"
	listRemotesErrorTemplateConstant    = "list remotes: %w"
	readWorktreeErrorTemplateConstant   = "read worktree: %w"
	readHeadErrorTemplateConstant       = "read HEAD: %w"
	remoteSectionNameConstant           = "remote"
)

// ErrBranchNotFound indicates Checkout could not resolve the requested branch.
var ErrBranchNotFound = errors.New(branchNotFoundMessageConstant)

// Provider clones and opens repositories with go-git.
type Provider struct{}

// NewProvider constructs a Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// CloneFrom clones request.SourceURL into request.DestinationPath.
func (provider *Provider) CloneFrom(executionContext context.Context, request vcs.CloneRequest) error {
	cloneOptions := &git.CloneOptions{URL: request.SourceURL}
	if request.Progress != nil {
		cloneOptions.Progress = request.Progress
	}
	if branch := strings.TrimSpace(request.Branch); len(branch) > 0 {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	_, cloneError := git.PlainCloneContext(executionContext, request.DestinationPath, false, cloneOptions)
	return cloneError
}

// Open opens the working copy at repositoryPath.
func (provider *Provider) Open(repositoryPath string) (vcs.Handle, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}
	return &repositoryHandle{repository: repository}, nil
}

type repositoryHandle struct {
	repository *git.Repository
}

// Checkout switches to branch, creating it from the primary remote's tracking branch when only that exists.
func (handle *repositoryHandle) Checkout(executionContext context.Context, branch string) error {
	worktree, worktreeError := handle.repository.Worktree()
	if worktreeError != nil {
		return fmt.Errorf(readWorktreeErrorTemplateConstant, worktreeError)
	}

	localReferenceName := plumbing.NewBranchReferenceName(branch)
	if _, referenceError := handle.repository.Reference(localReferenceName, true); referenceError == nil {
		return worktree.Checkout(&git.CheckoutOptions{Branch: localReferenceName})
	}

	remoteName, remoteError := handle.primaryRemoteName()
	if remoteError != nil {
		return remoteError
	}

	remoteReference, referenceError := handle.repository.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if referenceError != nil {
		return fmt.Errorf(branchNotFoundErrorTemplateConstant, ErrBranchNotFound, branch)
	}

	return worktree.Checkout(&git.CheckoutOptions{
		Branch: localReferenceName,
		Hash:   remoteReference.Hash(),
		Create: true,
	})
}

func (handle *repositoryHandle) PrimaryRemote(executionContext context.Context) (vcs.Remote, error) {
	remoteName, remoteError := handle.primaryRemoteName()
	if remoteError != nil {
		return nil, remoteError
	}
	return &repositoryRemote{repository: handle.repository, name: remoteName}, nil
}

func (handle *repositoryHandle) primaryRemoteName() (string, error) {
	configuration, configurationError := handle.repository.Config()
	if configurationError != nil {
		return "", fmt.Errorf(listRemotesErrorTemplateConstant, configurationError)
	}
	return vcs.SelectPrimaryRemoteName(declaredRemoteNames(configuration))
}

// declaredRemoteNames lists remotes in the order their sections appear in .git/config. Remotes known only
// to the parsed map, which go-git has not marshaled yet, follow in name order.
func declaredRemoteNames(configuration *config.Config) []string {
	remoteNames := make([]string, 0, len(configuration.Remotes))
	seen := make(map[string]struct{}, len(configuration.Remotes))
	for _, subsection := range configuration.Raw.Section(remoteSectionNameConstant).Subsections {
		if _, known := configuration.Remotes[subsection.Name]; !known {
			continue
		}
		if _, duplicate := seen[subsection.Name]; duplicate {
			continue
		}
		seen[subsection.Name] = struct{}{}
		remoteNames = append(remoteNames, subsection.Name)
	}

	remaining := make([]string, 0, len(configuration.Remotes))
	for remoteName := range configuration.Remotes {
		if _, listed := seen[remoteName]; !listed {
			remaining = append(remaining, remoteName)
		}
	}
	sort.Strings(remaining)
	return append(remoteNames, remaining...)
}

type repositoryRemote struct {
	repository *git.Repository
	name       string
}

func (remote *repositoryRemote) Name() string {
	return remote.name
}

// Pull fast-forwards the checked-out branch from the remote branch of the same name.
func (remote *repositoryRemote) Pull(executionContext context.Context) error {
	worktree, worktreeError := remote.repository.Worktree()
	if worktreeError != nil {
		return fmt.Errorf(readWorktreeErrorTemplateConstant, worktreeError)
	}

	pullOptions := &git.PullOptions{RemoteName: remote.name}
	head, headError := remote.repository.Head()
	if headError != nil {
		return fmt.Errorf(readHeadErrorTemplateConstant, headError)
	}
	if head.Name().IsBranch() {
		pullOptions.ReferenceName = head.Name()
	}

	pullError := worktree.PullContext(executionContext, pullOptions)
	if pullError != nil && !errors.Is(pullError, git.NoErrAlreadyUpToDate) {
		return pullError
	}
	return nil
}
