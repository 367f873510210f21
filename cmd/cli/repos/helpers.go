// Package repos builds the Cobra commands that operate on the configured repository set.
package repos

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposet/internal/fleet"
	"github.com/temirov/reposet/internal/repos/dependencies"
	"github.com/temirov/reposet/internal/repos/shared"
	"github.com/temirov/reposet/internal/utils"
	flagutils "github.com/temirov/reposet/internal/utils/flags"
	pathutils "github.com/temirov/reposet/internal/utils/path"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	missingRepositoriesErrorMessageConstant = "no repositories configured; list them under fleet.repositories"
	unsupportedProviderErrorTemplate        = "invalid provider: %w"
	parallelFlagNameConstant                = "parallel"
	parallelFlagUsageConstant               = "Number of repositories processed concurrently; 1 processes them in order."
	providerFlagNameConstant                = "provider"
	providerFlagDescriptionConstant         = "Git implementation used for clone and update."
	outcomeLineTemplateConstant             = "%s: %s -> %s\n"
	clonedOutcomeLabelConstant              = "CLONED"
	updatedOutcomeLabelConstant             = "UPDATED"
	removedOutcomeLabelConstant             = "REMOVED"
)

// ErrNoRepositoriesConfigured indicates the configuration lists no repositories.
var ErrNoRepositoriesConfigured = errors.New(missingRepositoriesErrorMessageConstant)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

var supportedProviderKinds = []string{string(vcs.ProviderKindCommandLine), string(vcs.ProviderKindGoGit)}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandDependencies carries collaborators shared by the repository set commands.
// Nil collaborators are replaced with production defaults.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	Provider                     vcs.Provider
	GitExecutor                  shared.GitExecutor
	FileSystem                   shared.FileSystem
	TemplateParser               shared.TemplateParser
}

type executionFlagValues struct {
	parallelism int
	provider    string
}

func addExecutionFlags(command *cobra.Command, values *executionFlagValues) {
	defaults := DefaultConfiguration()
	command.Flags().IntVar(&values.parallelism, parallelFlagNameConstant, defaults.Parallelism, parallelFlagUsageConstant)
	command.Flags().StringVar(&values.provider, providerFlagNameConstant, defaults.Provider, flagutils.FormatChoiceUsage(defaults.Provider, supportedProviderKinds, providerFlagDescriptionConstant))
}

func (values executionFlagValues) apply(command *cobra.Command, configuration Configuration) Configuration {
	applied := configuration
	if command.Flags().Changed(parallelFlagNameConstant) {
		applied.Parallelism = values.parallelism
	}
	if command.Flags().Changed(providerFlagNameConstant) {
		applied.Provider = values.provider
	}
	return applied.Sanitize()
}

func (commandDependencies CommandDependencies) resolveConfiguration() Configuration {
	if commandDependencies.ConfigurationProvider == nil {
		return DefaultConfiguration().Sanitize()
	}
	return commandDependencies.ConfigurationProvider().Sanitize()
}

func (commandDependencies CommandDependencies) humanReadableLogging() bool {
	if commandDependencies.HumanReadableLoggingProvider == nil {
		return false
	}
	return commandDependencies.HumanReadableLoggingProvider()
}

// buildSet wires the configured repositories to their collaborators. Clone progress is streamed only
// when members run one at a time so transfer output stays readable.
func (commandDependencies CommandDependencies) buildSet(command *cobra.Command, configuration Configuration, observer fleet.MemberObserver) (*fleet.Set, error) {
	if len(configuration.Repositories) == 0 {
		return nil, ErrNoRepositoriesConfigured
	}

	logger := resolveLogger(commandDependencies.LoggerProvider)

	providerChoice, choiceError := flagutils.ParseChoice(configuration.Provider, string(vcs.ProviderKindCommandLine), supportedProviderKinds)
	if choiceError != nil {
		return nil, fmt.Errorf(unsupportedProviderErrorTemplate, choiceError)
	}
	providerKind, kindError := vcs.ParseProviderKind(providerChoice)
	if kindError != nil {
		return nil, fmt.Errorf(unsupportedProviderErrorTemplate, kindError)
	}

	provider, providerError := dependencies.ResolveProvider(commandDependencies.Provider, providerKind, commandDependencies.GitExecutor, logger, commandDependencies.humanReadableLogging())
	if providerError != nil {
		return nil, providerError
	}

	var progress io.Writer
	if configuration.Parallelism <= 1 {
		progress = utils.NewFlushingWriter(command.ErrOrStderr())
	}

	setDependencies := fleet.Dependencies{
		Provider:       provider,
		FileSystem:     dependencies.ResolveFileSystem(commandDependencies.FileSystem),
		TemplateParser: dependencies.ResolveTemplateParser(commandDependencies.TemplateParser),
		Logger:         logger,
		Progress:       progress,
	}

	options := []fleet.SetOption{fleet.WithParallelism(configuration.Parallelism)}
	if observer != nil {
		options = append(options, fleet.WithMemberObserver(observer))
	}
	return fleet.NewSet(configuration.Root, configuration.Definitions(), setDependencies, options...)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	return dependencies.ResolveLogger(provider())
}

// outcomeReporter prints one line per completed repository.
type outcomeReporter struct {
	reporter shared.Reporter
	label    string
}

func newOutcomeReporter(command *cobra.Command, label string) outcomeReporter {
	return outcomeReporter{reporter: shared.NewWriterReporter(command.OutOrStdout()), label: label}
}

func (outcome outcomeReporter) RepositoryCompleted(_ fleet.Operation, repository *fleet.Repository) {
	outcome.reporter.Printf(outcomeLineTemplateConstant, outcome.label, repository.Name(), repository.LocalPath())
}
