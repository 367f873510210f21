package vcs

import (
	"context"
	"errors"
	"io"
	"strings"
)

const (
	noRemotesMessageConstant           = "repository has no remotes configured"
	providerKindCommandLineConstant    = "cli"
	providerKindGoGitConstant          = "go-git"
	unknownProviderKindMessageConstant = "unsupported version control provider"
)

// ErrNoRemotes indicates an opened repository has no remote to pull from.
var ErrNoRemotes = errors.New(noRemotesMessageConstant)

// ErrUnknownProviderKind indicates a configured provider name is not recognized.
var ErrUnknownProviderKind = errors.New(unknownProviderKindMessageConstant)

// ProviderKind names a provider implementation selectable from configuration.
type ProviderKind string

// Supported provider kinds.
const (
	ProviderKindCommandLine ProviderKind = ProviderKind(providerKindCommandLineConstant)
	ProviderKindGoGit       ProviderKind = ProviderKind(providerKindGoGitConstant)
)

// ParseProviderKind normalizes a configured provider name. Empty input selects the command line provider.
func ParseProviderKind(raw string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", providerKindCommandLineConstant:
		return ProviderKindCommandLine, nil
	case providerKindGoGitConstant:
		return ProviderKindGoGit, nil
	default:
		return "", ErrUnknownProviderKind
	}
}

// CloneRequest describes a single clone.
type CloneRequest struct {
	SourceURL       string
	DestinationPath string
	// Branch is optional; the provider's default branch is used when empty.
	Branch string
	// Progress is optional and receives best-effort transfer output.
	Progress io.Writer
}

// Provider clones new working copies and opens existing ones.
type Provider interface {
	CloneFrom(executionContext context.Context, request CloneRequest) error
	Open(repositoryPath string) (Handle, error)
}

// Handle acts on an existing local repository.
type Handle interface {
	Checkout(executionContext context.Context, branch string) error
	PrimaryRemote(executionContext context.Context) (Remote, error)
}

// Remote is a configured remote of an opened repository.
type Remote interface {
	Name() string
	Pull(executionContext context.Context) error
}

// SelectPrimaryRemoteName returns the first non-blank remote name. Callers pass names in the order
// the remotes are declared in the repository configuration, so a clone's origin wins over remotes
// added later.
func SelectPrimaryRemoteName(remoteNames []string) (string, error) {
	for _, remoteName := range remoteNames {
		trimmed := strings.TrimSpace(remoteName)
		if len(trimmed) > 0 {
			return trimmed, nil
		}
	}
	return "", ErrNoRemotes
}
