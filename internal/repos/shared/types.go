package shared

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/execshell"
)

const (
	repositoryNameRequiredMessageConstant = "repository name required"
	repositoryNameInvalidMessageConstant  = "repository name must be a single path segment"
	repositoryNameErrorTemplateConstant   = "%w: %q"
	pathSeparatorCharactersConstant       = `/\`
	currentDirectoryNameConstant          = "."
	parentDirectoryNameConstant           = ".."
	lineBreakCharactersConstant           = "\r\n"
)

// ErrRepositoryNameRequired indicates a blank repository name.
var ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

// ErrRepositoryNameInvalid indicates a repository name that cannot be used as a directory name.
var ErrRepositoryNameInvalid = errors.New(repositoryNameInvalidMessageConstant)

// RepositoryName is a validated repository identifier. It doubles as the on-disk directory name
// and the final segment of the remote URL.
type RepositoryName string

// NewRepositoryName trims and validates raw.
func NewRepositoryName(raw string) (RepositoryName, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrRepositoryNameRequired
	}
	if strings.ContainsAny(trimmed, pathSeparatorCharactersConstant+lineBreakCharactersConstant) ||
		trimmed == currentDirectoryNameConstant || trimmed == parentDirectoryNameConstant {
		return "", fmt.Errorf(repositoryNameErrorTemplateConstant, ErrRepositoryNameInvalid, raw)
	}
	return RepositoryName(trimmed), nil
}

// String returns the name.
func (name RepositoryName) String() string {
	return string(name)
}

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	RemoveAll(path string) error
	MkdirAll(path string, permissions fs.FileMode) error
	WriteFile(path string, content []byte, permissions fs.FileMode) error
}

// GitExecutor exposes the subset of shell execution used by the git command line provider.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TemplateParser turns a discovered template path into a parsed template.
type TemplateParser interface {
	ParseTemplate(templatePath string) (envfile.Template, error)
}
