package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/repos/dependencies"
	"github.com/temirov/reposet/internal/repos/shared"
	flagutils "github.com/temirov/reposet/internal/utils/flags"
)

const (
	envsUseConstant            = "envs"
	envsShortDescription       = "List environment file templates across repositories"
	envsLongDescription        = "envs prints every *-envs.EXAMPLE file found at the top level of each repository. With --write the templates are parsed and written into <root>/config. Written files keep only the key/value pairs: comments and key order are dropped, keys are sorted and values are re-quoted."
	writeFlagNameConstant      = "write"
	writeFlagUsageConstant     = "Write parsed templates into the configuration directory (comments and key order are not preserved)."
	overwriteFlagNameConstant  = "overwrite"
	overwriteFlagUsageConstant = "Replace environment files that already exist."
	templateLineTemplate       = "%s\n"
	writtenLineTemplate        = "WROTE: %s\n"
)

// EnvironmentCommandBuilder assembles the envs command.
type EnvironmentCommandBuilder struct {
	CommandDependencies
}

// Build constructs the envs command.
func (builder *EnvironmentCommandBuilder) Build() (*cobra.Command, error) {
	var writeFiles bool
	var overwrite bool

	command := &cobra.Command{
		Use:           envsUseConstant,
		Short:         envsShortDescription,
		Long:          envsLongDescription,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, writeFiles, overwrite)
		},
	}

	flagutils.AddToggleFlag(command.Flags(), &writeFiles, writeFlagNameConstant, "w", false, writeFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &overwrite, overwriteFlagNameConstant, "", false, overwriteFlagUsageConstant)

	return command, nil
}

func (builder *EnvironmentCommandBuilder) run(command *cobra.Command, writeFiles bool, overwrite bool) error {
	repositorySet, setError := builder.buildSet(command, builder.resolveConfiguration(), nil)
	if setError != nil {
		return setError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	if !writeFiles {
		templatePaths, listError := repositorySet.ListAllEnvironmentFileTemplates()
		if listError != nil {
			return listError
		}
		for _, templatePath := range templatePaths {
			reporter.Printf(templateLineTemplate, templatePath)
		}
		return nil
	}

	templates, parseError := repositorySet.EnvironmentFiles()
	if parseError != nil {
		return parseError
	}

	harvester := envfile.NewHarvester(resolveLogger(builder.LoggerProvider), dependencies.ResolveFileSystem(builder.FileSystem), overwrite)
	writtenPaths, harvestError := harvester.Harvest(templates, repositorySet.ConfigDirectoryPath())
	for _, writtenPath := range writtenPaths {
		reporter.Printf(writtenLineTemplate, writtenPath)
	}
	return harvestError
}
