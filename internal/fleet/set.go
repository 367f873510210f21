package fleet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/reposet/internal/envfile"
)

const (
	configDirectoryNameConstant = "config"
	sequentialParallelism       = 1
)

// MemberObserver is notified after each member operation succeeds.
// With parallelism above one it is called from multiple goroutines.
type MemberObserver interface {
	RepositoryCompleted(operation Operation, repository *Repository)
}

// SetOption customizes a Set.
type SetOption func(*Set)

// WithParallelism bounds how many members clone or update concurrently. Values below two keep
// the sequential loop.
func WithParallelism(limit int) SetOption {
	return func(set *Set) {
		if limit < sequentialParallelism {
			limit = sequentialParallelism
		}
		set.parallelism = limit
	}
}

// WithMemberObserver registers observer for per-member completions.
func WithMemberObserver(observer MemberObserver) SetOption {
	return func(set *Set) {
		set.observer = observer
	}
}

// Set is an ordered, fixed collection of repositories sharing one root directory.
type Set struct {
	rootDirectory string
	repositories  []*Repository
	parallelism   int
	observer      MemberObserver
}

// NewSet builds repositories from definitions in order. Names must be unique.
func NewSet(rootDirectory string, definitions []RepositoryDefinition, repositoryDependencies Dependencies, options ...SetOption) (*Set, error) {
	trimmedRoot := strings.TrimSpace(rootDirectory)
	if len(trimmedRoot) == 0 {
		return nil, ErrRootDirectoryRequired
	}

	repositories := make([]*Repository, 0, len(definitions))
	seenNames := make(map[string]struct{}, len(definitions))
	for _, definition := range definitions {
		repository, repositoryError := NewRepository(trimmedRoot, definition, repositoryDependencies)
		if repositoryError != nil {
			return nil, repositoryError
		}
		if _, duplicate := seenNames[repository.Name()]; duplicate {
			return nil, fmt.Errorf(duplicateRepositoryErrorTemplateConstant, ErrDuplicateRepositoryName, repository.Name())
		}
		seenNames[repository.Name()] = struct{}{}
		repositories = append(repositories, repository)
	}

	set := &Set{
		rootDirectory: filepath.Clean(trimmedRoot),
		repositories:  repositories,
		parallelism:   sequentialParallelism,
	}
	for _, option := range options {
		option(set)
	}
	return set, nil
}

// Repositories returns the members in configuration order.
func (set *Set) Repositories() []*Repository {
	return append([]*Repository(nil), set.repositories...)
}

// Len returns the member count.
func (set *Set) Len() int {
	return len(set.repositories)
}

// ConfigDirectoryPath returns <rootDirectory>/config, the destination for harvested environment files.
func (set *Set) ConfigDirectoryPath() string {
	return filepath.Join(set.rootDirectory, configDirectoryNameConstant)
}

// Clone clones every member, stopping at the first failure.
func (set *Set) Clone(executionContext context.Context, options CloneOptions) error {
	return set.runForAll(executionContext, OperationClone, func(memberContext context.Context, repository *Repository) error {
		return repository.Clone(memberContext, options)
	})
}

// Update updates every member, stopping at the first failure.
func (set *Set) Update(executionContext context.Context) error {
	return set.runForAll(executionContext, OperationUpdate, func(memberContext context.Context, repository *Repository) error {
		return repository.Update(memberContext)
	})
}

// Clean removes every member's directory and returns each member's outcome in member order.
// It never fails; the observer hears only about members whose directory was removed.
func (set *Set) Clean() []CleanOutcome {
	outcomes := make([]CleanOutcome, 0, len(set.repositories))
	for _, repository := range set.repositories {
		outcome := repository.Clean()
		outcomes = append(outcomes, outcome)
		if outcome == CleanOutcomeRemoved {
			set.notify(OperationClean, repository)
		}
	}
	return outcomes
}

// ListAllEnvironmentFileTemplates concatenates member template paths in member order.
func (set *Set) ListAllEnvironmentFileTemplates() ([]string, error) {
	templatePaths := make([]string, 0)
	for index, repository := range set.repositories {
		repositoryTemplates, listError := repository.ListEnvironmentFileTemplates()
		if listError != nil {
			return nil, set.bulkError(OperationListEnvironmentTemplates, repository, index+1, listError)
		}
		templatePaths = append(templatePaths, repositoryTemplates...)
	}
	return templatePaths, nil
}

// EnvironmentFiles parses every member's templates in member order.
func (set *Set) EnvironmentFiles() ([]envfile.Template, error) {
	templates := make([]envfile.Template, 0)
	for index, repository := range set.repositories {
		repositoryTemplates, parseError := repository.EnvironmentFiles()
		if parseError != nil {
			var operationError *OperationError
			operation := OperationParseEnvironmentFiles
			if errors.As(parseError, &operationError) {
				operation = operationError.Operation
			}
			return nil, set.bulkError(operation, repository, index+1, parseError)
		}
		templates = append(templates, repositoryTemplates...)
	}
	return templates, nil
}

type memberAction func(memberContext context.Context, repository *Repository) error

type memberFailure struct {
	repository *Repository
	cause      error
}

func (failure memberFailure) Error() string {
	return failure.cause.Error()
}

func (set *Set) runForAll(executionContext context.Context, operation Operation, action memberAction) error {
	if set.parallelism <= sequentialParallelism || len(set.repositories) <= 1 {
		return set.runSequentially(executionContext, operation, action)
	}
	return set.runInParallel(executionContext, operation, action)
}

func (set *Set) runSequentially(executionContext context.Context, operation Operation, action memberAction) error {
	for index, repository := range set.repositories {
		if actionError := action(executionContext, repository); actionError != nil {
			return set.bulkError(operation, repository, index+1, actionError)
		}
		set.notify(operation, repository)
	}
	return nil
}

// runInParallel cancels in-flight siblings on the first failure and never starts the remaining members.
func (set *Set) runInParallel(executionContext context.Context, operation Operation, action memberAction) error {
	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(set.parallelism)

	var attempted atomic.Int64
	for _, repository := range set.repositories {
		if groupContext.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupContext.Err() != nil {
				return nil
			}
			attempted.Add(1)
			if actionError := action(groupContext, repository); actionError != nil {
				return memberFailure{repository: repository, cause: actionError}
			}
			set.notify(operation, repository)
			return nil
		})
	}

	waitError := group.Wait()
	attemptedCount := int(attempted.Load())
	if waitError == nil {
		if attemptedCount < len(set.repositories) {
			return executionContext.Err()
		}
		return nil
	}

	var failure memberFailure
	if !errors.As(waitError, &failure) {
		return waitError
	}
	return set.bulkError(operation, failure.repository, attemptedCount, failure.cause)
}

func (set *Set) bulkError(operation Operation, repository *Repository, attempted int, cause error) error {
	return &BulkOperationError{
		Operation:      operation,
		RepositoryName: repository.Name(),
		Attempted:      attempted,
		NotAttempted:   len(set.repositories) - attempted,
		Cause:          cause,
	}
}

func (set *Set) notify(operation Operation, repository *Repository) {
	if set.observer == nil {
		return
	}
	set.observer.RepositoryCompleted(operation, repository)
}
