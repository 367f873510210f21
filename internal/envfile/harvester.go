package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/temirov/reposet/internal/repos/filesystem"
)

const (
	configurationDirectoryPermissions       = 0o755
	environmentFilePermissions              = 0o644
	environmentFileTerminatorConstant       = "\n"
	duplicateTemplateNameMessageConstant    = "duplicate environment file name"
	duplicateTemplateNameTemplateConstant   = "%w: %s from %s and %s"
	encodeEnvironmentErrorTemplateConstant  = "encode environment file %s: %w"
	destinationExistsMessageConstant        = "environment file already exists"
	destinationExistsErrorTemplateConstant  = "%w: %s"
	createDirectoryErrorTemplateConstant    = "create configuration directory %s: %w"
	inspectDestinationErrorTemplateConstant = "inspect %s: %w"
	writeEnvironmentErrorTemplateConstant   = "write environment file %s: %w"
	harvestedLogMessageConstant             = "Wrote environment file"
	logFieldSourceConstant                  = "source"
	logFieldDestinationConstant             = "destination"
)

// ErrDestinationExists indicates a harvested file would replace an existing one.
var ErrDestinationExists = errors.New(destinationExistsMessageConstant)

// ErrDuplicateTemplateName indicates two templates would be written to the same destination.
var ErrDuplicateTemplateName = errors.New(duplicateTemplateNameMessageConstant)

// FileSystem is the file access the harvester needs.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	WriteFile(path string, content []byte, permissions fs.FileMode) error
}

// Harvester writes templates into a configuration directory.
//
// Written files hold the parsed key/value pairs only: template comments and key order are
// dropped, keys are sorted and values are re-quoted.
type Harvester struct {
	logger     *zap.Logger
	fileSystem FileSystem
	// Overwrite allows existing environment files to be replaced.
	Overwrite bool
}

// NewHarvester constructs a Harvester. A nil logger disables logging; a nil file system uses the
// operating system.
func NewHarvester(logger *zap.Logger, fileSystem FileSystem, overwrite bool) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &Harvester{logger: logger, fileSystem: fileSystem, Overwrite: overwrite}
}

// Harvest writes every template to <configurationDirectory>/<Name> and returns the written paths.
// Templates sharing a Name are rejected before anything is written. Otherwise it stops at the
// first failure; files written before it remain.
func (harvester *Harvester) Harvest(templates []Template, configurationDirectory string) ([]string, error) {
	if len(templates) == 0 {
		return nil, nil
	}

	if duplicateError := checkDistinctNames(templates); duplicateError != nil {
		return nil, duplicateError
	}

	if mkdirError := harvester.fileSystem.MkdirAll(configurationDirectory, configurationDirectoryPermissions); mkdirError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplateConstant, configurationDirectory, mkdirError)
	}

	writtenPaths := make([]string, 0, len(templates))
	for _, template := range templates {
		destinationPath := filepath.Join(configurationDirectory, template.Name)

		if !harvester.Overwrite {
			_, statError := harvester.fileSystem.Stat(destinationPath)
			if statError == nil {
				return writtenPaths, fmt.Errorf(destinationExistsErrorTemplateConstant, ErrDestinationExists, destinationPath)
			}
			if !errors.Is(statError, fs.ErrNotExist) {
				return writtenPaths, fmt.Errorf(inspectDestinationErrorTemplateConstant, destinationPath, statError)
			}
		}

		content, encodeError := godotenv.Marshal(template.Values)
		if encodeError != nil {
			return writtenPaths, fmt.Errorf(encodeEnvironmentErrorTemplateConstant, destinationPath, encodeError)
		}
		if writeError := harvester.fileSystem.WriteFile(destinationPath, []byte(content+environmentFileTerminatorConstant), environmentFilePermissions); writeError != nil {
			return writtenPaths, fmt.Errorf(writeEnvironmentErrorTemplateConstant, destinationPath, writeError)
		}

		harvester.logger.Info(harvestedLogMessageConstant,
			zap.String(logFieldSourceConstant, template.SourcePath),
			zap.String(logFieldDestinationConstant, destinationPath),
		)
		writtenPaths = append(writtenPaths, destinationPath)
	}

	return writtenPaths, nil
}

func checkDistinctNames(templates []Template) error {
	sources := make(map[string]string, len(templates))
	for _, template := range templates {
		if firstSource, duplicate := sources[template.Name]; duplicate {
			return fmt.Errorf(duplicateTemplateNameTemplateConstant, ErrDuplicateTemplateName, template.Name, firstSource, template.SourcePath)
		}
		sources[template.Name] = template.SourcePath
	}
	return nil
}
