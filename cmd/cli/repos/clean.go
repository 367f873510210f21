package repos

import "github.com/spf13/cobra"

const (
	cleanUseConstant      = "clean"
	cleanShortDescription = "Remove every repository directory"
	cleanLongDescription  = "clean deletes <root>/<name> for each configured repository. Only removed directories are reported; missing directories and removal failures are logged."
)

// CleanCommandBuilder assembles the clean command.
type CleanCommandBuilder struct {
	CommandDependencies
}

// Build constructs the clean command.
func (builder *CleanCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           cleanUseConstant,
		Short:         cleanShortDescription,
		Long:          cleanLongDescription,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(command *cobra.Command, arguments []string) error {
			repositorySet, setError := builder.buildSet(command, builder.resolveConfiguration(), newOutcomeReporter(command, removedOutcomeLabelConstant))
			if setError != nil {
				return setError
			}
			repositorySet.Clean()
			return nil
		},
	}

	return command, nil
}
