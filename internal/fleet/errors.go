package fleet

import (
	"errors"
	"fmt"
)

const (
	invalidRemoteURLMessageConstant          = "invalid remote url"
	alreadyExistsMessageConstant             = "repository already exists locally"
	repoOperationFailureMessageConstant      = "repository operation failed"
	duplicateRepositoryNameMessageConstant   = "duplicate repository name"
	rootDirectoryRequiredMessageConstant     = "root directory required"
	providerNotConfiguredMessageConstant     = "version control provider not configured"
	invalidRemoteURLErrorTemplateConstant    = "%s: %q must contain %s"
	alreadyExistsErrorTemplateConstant       = "cannot clone %s: %s already exists"
	operationErrorTemplateConstant           = "%s %s failed: %v"
	bulkOperationErrorTemplateConstant       = "%s stopped at %s after %d of %d repositories (%d not attempted): %v"
	duplicateRepositoryErrorTemplateConstant = "%w: %s"
)

// ErrInvalidRemoteURL indicates the shared remote URL lacks the https:// scheme marker.
var ErrInvalidRemoteURL = errors.New(invalidRemoteURLMessageConstant)

// ErrAlreadyExists indicates a clone was attempted over an existing local directory.
var ErrAlreadyExists = errors.New(alreadyExistsMessageConstant)

// ErrRepoOperationFailure matches every OperationError.
var ErrRepoOperationFailure = errors.New(repoOperationFailureMessageConstant)

// ErrDuplicateRepositoryName indicates two set members share a name and therefore a local path.
var ErrDuplicateRepositoryName = errors.New(duplicateRepositoryNameMessageConstant)

// ErrRootDirectoryRequired indicates a blank root directory.
var ErrRootDirectoryRequired = errors.New(rootDirectoryRequiredMessageConstant)

// ErrProviderNotConfigured indicates repositories were constructed without a provider.
var ErrProviderNotConfigured = errors.New(providerNotConfiguredMessageConstant)

// Operation names a repository operation for diagnostics.
type Operation string

// Repository operations.
const (
	OperationClone                    Operation = "clone"
	OperationUpdate                   Operation = "update"
	OperationClean                    Operation = "clean"
	OperationListEnvironmentTemplates Operation = "list-environment-templates"
	OperationParseEnvironmentFiles    Operation = "parse-environment-files"
)

// InvalidRemoteURLError reports the rejected remote URL.
type InvalidRemoteURLError struct {
	RemoteURL string
}

// Error describes the rejected URL.
func (urlError InvalidRemoteURLError) Error() string {
	return fmt.Sprintf(invalidRemoteURLErrorTemplateConstant, invalidRemoteURLMessageConstant, urlError.RemoteURL, httpsSchemeMarkerConstant)
}

// Unwrap exposes ErrInvalidRemoteURL.
func (urlError InvalidRemoteURLError) Unwrap() error {
	return ErrInvalidRemoteURL
}

// AlreadyExistsError reports the repository whose local directory blocked a clone.
type AlreadyExistsError struct {
	RepositoryName string
	LocalPath      string
}

// Error describes the conflict.
func (existsError AlreadyExistsError) Error() string {
	return fmt.Sprintf(alreadyExistsErrorTemplateConstant, existsError.RepositoryName, existsError.LocalPath)
}

// Unwrap exposes ErrAlreadyExists.
func (existsError AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// OperationError wraps a provider or filesystem failure for one repository.
type OperationError struct {
	Operation      Operation
	RepositoryName string
	Cause          error
}

// Error describes the failed operation and its cause.
func (operationError *OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.RepositoryName, operationError.Cause)
}

// Unwrap exposes the originating cause.
func (operationError *OperationError) Unwrap() error {
	return operationError.Cause
}

// Is reports ErrRepoOperationFailure as a match.
func (operationError *OperationError) Is(target error) bool {
	return target == ErrRepoOperationFailure
}

// BulkOperationError reports the member that stopped a set-wide operation.
type BulkOperationError struct {
	Operation      Operation
	RepositoryName string
	// Attempted counts members whose operation was started, including the failing one.
	Attempted    int
	NotAttempted int
	Cause        error
}

// Error describes where the bulk operation stopped.
func (bulkError *BulkOperationError) Error() string {
	total := bulkError.Attempted + bulkError.NotAttempted
	return fmt.Sprintf(bulkOperationErrorTemplateConstant, bulkError.Operation, bulkError.RepositoryName, bulkError.Attempted, total, bulkError.NotAttempted, bulkError.Cause)
}

// Unwrap exposes the member failure.
func (bulkError *BulkOperationError) Unwrap() error {
	return bulkError.Cause
}
