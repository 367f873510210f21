package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/repos/dependencies"
	"github.com/temirov/reposet/internal/repos/shared"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	defaultBranchPlaceholderConstant  = "default"
	repositoryStringTemplateConstant  = "Repository(%s, branch=%s)"
	cloningRepositoryMessageConstant  = "Cloning repository"
	updatingRepositoryMessageConstant = "Updating repository"
	pullingRepositoryMessageConstant  = "Pulling from primary remote"
	removedRepositoryMessageConstant  = "Removed repository"
	missingRepositoryMessageConstant  = "Repository directory did not exist; nothing to remove"
	removeFailedMessageConstant       = "Failed to remove repository directory"
	inspectFailedMessageConstant      = "Failed to inspect repository directory"
	logFieldRepositoryConstant        = "repository"
	logFieldBranchConstant            = "branch"
	logFieldSourceURLConstant         = "source_url"
	logFieldPathConstant              = "path"
	logFieldRemoteConstant            = "remote"
)

// RepositoryDefinition configures one managed repository.
type RepositoryDefinition struct {
	Name          string
	MainRemoteURL string
	// Branch is optional; the provider's default branch applies when empty.
	Branch string
}

// Dependencies supplies collaborators shared by every repository in a set.
// Only Provider is required.
type Dependencies struct {
	Provider       vcs.Provider
	FileSystem     shared.FileSystem
	TemplateParser shared.TemplateParser
	Logger         *zap.Logger
	// Progress receives clone transfer output when set.
	Progress io.Writer
}

// CleanOutcome describes what Clean did with LocalPath.
type CleanOutcome string

// Clean outcomes.
const (
	CleanOutcomeRemoved CleanOutcome = "removed"
	CleanOutcomeAbsent  CleanOutcome = "absent"
	CleanOutcomeFailed  CleanOutcome = "failed"
)

// CloneOptions tunes a clone.
type CloneOptions struct {
	UseSSH bool
}

// Repository is one managed repository rooted at <rootDirectory>/<name>.
type Repository struct {
	name           shared.RepositoryName
	branch         string
	address        remoteAddress
	rootDirectory  string
	provider       vcs.Provider
	fileSystem     shared.FileSystem
	templateParser shared.TemplateParser
	logger         *zap.Logger
	progress       io.Writer
}

// NewRepository validates definition and binds it to rootDirectory.
func NewRepository(rootDirectory string, definition RepositoryDefinition, repositoryDependencies Dependencies) (*Repository, error) {
	trimmedRoot := strings.TrimSpace(rootDirectory)
	if len(trimmedRoot) == 0 {
		return nil, ErrRootDirectoryRequired
	}
	if repositoryDependencies.Provider == nil {
		return nil, ErrProviderNotConfigured
	}

	repositoryName, nameError := shared.NewRepositoryName(definition.Name)
	if nameError != nil {
		return nil, nameError
	}

	address, addressError := parseRemoteAddress(definition.MainRemoteURL)
	if addressError != nil {
		return nil, addressError
	}

	return &Repository{
		name:           repositoryName,
		branch:         strings.TrimSpace(definition.Branch),
		address:        address,
		rootDirectory:  filepath.Clean(trimmedRoot),
		provider:       repositoryDependencies.Provider,
		fileSystem:     dependencies.ResolveFileSystem(repositoryDependencies.FileSystem),
		templateParser: dependencies.ResolveTemplateParser(repositoryDependencies.TemplateParser),
		logger:         dependencies.ResolveLogger(repositoryDependencies.Logger),
		progress:       repositoryDependencies.Progress,
	}, nil
}

// Name returns the repository name.
func (repository *Repository) Name() string {
	return repository.name.String()
}

// Branch returns the configured branch, or an empty string when unset.
func (repository *Repository) Branch() string {
	return repository.branch
}

// BaseRemoteHost returns the shared remote location without its scheme.
func (repository *Repository) BaseRemoteHost() string {
	return repository.address.baseRemoteHost
}

// LocalPath returns <rootDirectory>/<name>.
func (repository *Repository) LocalPath() string {
	return filepath.Join(repository.rootDirectory, repository.name.String())
}

// HTTPSURL returns https://<baseRemoteHost>/<name>.
func (repository *Repository) HTTPSURL() string {
	return repository.address.httpsURL(repository.name.String())
}

// SSHURL returns git@<host>:<ownerPath>/<name>.
func (repository *Repository) SSHURL() string {
	return repository.address.sshURL(repository.name.String())
}

// Exists reports whether anything is present at LocalPath. A path that cannot be inspected
// is reported as present.
func (repository *Repository) Exists() bool {
	present, statError := repository.presence()
	return present || statError != nil
}

// presence distinguishes a missing LocalPath from one whose state is unknown.
func (repository *Repository) presence() (bool, error) {
	_, statError := repository.fileSystem.Stat(repository.LocalPath())
	switch {
	case statError == nil:
		return true, nil
	case errors.Is(statError, fs.ErrNotExist):
		return false, nil
	default:
		return false, statError
	}
}

// String renders the repository as Repository(<name>, branch=<branch>).
func (repository *Repository) String() string {
	return fmt.Sprintf(repositoryStringTemplateConstant, repository.name, repository.branchLabel())
}

// Clone fetches the repository into LocalPath. It refuses to touch an existing directory.
func (repository *Repository) Clone(executionContext context.Context, options CloneOptions) error {
	localPath := repository.LocalPath()
	present, statError := repository.presence()
	if statError != nil {
		return repository.operationError(OperationClone, statError)
	}
	if present {
		return AlreadyExistsError{RepositoryName: repository.Name(), LocalPath: localPath}
	}

	sourceURL := repository.HTTPSURL()
	if options.UseSSH {
		sourceURL = repository.SSHURL()
	}

	repository.logger.Info(cloningRepositoryMessageConstant,
		zap.String(logFieldRepositoryConstant, repository.Name()),
		zap.String(logFieldBranchConstant, repository.branchLabel()),
		zap.String(logFieldSourceURLConstant, sourceURL),
		zap.String(logFieldPathConstant, localPath),
	)

	cloneError := repository.provider.CloneFrom(executionContext, vcs.CloneRequest{
		SourceURL:       sourceURL,
		DestinationPath: localPath,
		Branch:          repository.branch,
		Progress:        repository.progress,
	})
	if cloneError != nil {
		return repository.operationError(OperationClone, cloneError)
	}
	return nil
}

// Update checks out the configured branch and pulls from the primary remote.
// Checkout is skipped when no branch is configured.
func (repository *Repository) Update(executionContext context.Context) error {
	repository.logger.Info(updatingRepositoryMessageConstant,
		zap.String(logFieldRepositoryConstant, repository.Name()),
		zap.String(logFieldBranchConstant, repository.branchLabel()),
	)

	handle, openError := repository.provider.Open(repository.LocalPath())
	if openError != nil {
		return repository.operationError(OperationUpdate, openError)
	}

	if len(repository.branch) > 0 {
		if checkoutError := handle.Checkout(executionContext, repository.branch); checkoutError != nil {
			return repository.operationError(OperationUpdate, checkoutError)
		}
	}

	remote, remoteError := handle.PrimaryRemote(executionContext)
	if remoteError != nil {
		return repository.operationError(OperationUpdate, remoteError)
	}

	repository.logger.Debug(pullingRepositoryMessageConstant,
		zap.String(logFieldRepositoryConstant, repository.Name()),
		zap.String(logFieldRemoteConstant, remote.Name()),
	)

	if pullError := remote.Pull(executionContext); pullError != nil {
		return repository.operationError(OperationUpdate, pullError)
	}
	return nil
}

// Clean removes LocalPath and reports what happened. It never returns an error: a missing
// directory is logged as a warning, inspection and removal failures at error level.
func (repository *Repository) Clean() CleanOutcome {
	localPath := repository.LocalPath()
	fields := []zap.Field{
		zap.String(logFieldRepositoryConstant, repository.Name()),
		zap.String(logFieldPathConstant, localPath),
	}

	present, statError := repository.presence()
	if statError != nil {
		repository.logger.Error(inspectFailedMessageConstant, append(fields, zap.Error(statError))...)
		return CleanOutcomeFailed
	}
	if !present {
		repository.logger.Warn(missingRepositoryMessageConstant, fields...)
		return CleanOutcomeAbsent
	}

	if removeError := repository.fileSystem.RemoveAll(localPath); removeError != nil {
		repository.logger.Error(removeFailedMessageConstant, append(fields, zap.Error(removeError))...)
		return CleanOutcomeFailed
	}

	repository.logger.Info(removedRepositoryMessageConstant, fields...)
	return CleanOutcomeRemoved
}

// ListEnvironmentFileTemplates returns the paths of regular files directly inside LocalPath
// whose names end with -envs.EXAMPLE, in directory listing order.
func (repository *Repository) ListEnvironmentFileTemplates() ([]string, error) {
	localPath := repository.LocalPath()
	entries, readError := repository.fileSystem.ReadDir(localPath)
	if readError != nil {
		return nil, repository.operationError(OperationListEnvironmentTemplates, readError)
	}

	templatePaths := make([]string, 0)
	for _, entry := range entries {
		if !envfile.IsTemplateFileName(entry.Name()) {
			continue
		}
		entryPath := filepath.Join(localPath, entry.Name())
		if !repository.isRegularFile(entry, entryPath) {
			continue
		}
		templatePaths = append(templatePaths, entryPath)
	}
	return templatePaths, nil
}

// EnvironmentFiles parses every discovered template.
func (repository *Repository) EnvironmentFiles() ([]envfile.Template, error) {
	templatePaths, listError := repository.ListEnvironmentFileTemplates()
	if listError != nil {
		return nil, listError
	}

	templates := make([]envfile.Template, 0, len(templatePaths))
	for _, templatePath := range templatePaths {
		template, parseError := repository.templateParser.ParseTemplate(templatePath)
		if parseError != nil {
			return nil, repository.operationError(OperationParseEnvironmentFiles, parseError)
		}
		templates = append(templates, template)
	}
	return templates, nil
}

// isRegularFile follows symbolic links so a linked template counts as a file.
func (repository *Repository) isRegularFile(entry fs.DirEntry, entryPath string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, statError := repository.fileSystem.Stat(entryPath)
	if statError != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (repository *Repository) branchLabel() string {
	if len(repository.branch) == 0 {
		return defaultBranchPlaceholderConstant
	}
	return repository.branch
}

func (repository *Repository) operationError(operation Operation, cause error) error {
	return &OperationError{Operation: operation, RepositoryName: repository.Name(), Cause: cause}
}
