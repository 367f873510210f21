package repos

import "github.com/spf13/cobra"

const (
	updateUseConstant      = "update"
	updateShortDescription = "Check out the configured branch and pull every repository"
	updateLongDescription  = "update checks out each repository's configured branch and pulls from its primary remote, stopping at the first failure."
)

// UpdateCommandBuilder assembles the update command.
type UpdateCommandBuilder struct {
	CommandDependencies
}

// Build constructs the update command.
func (builder *UpdateCommandBuilder) Build() (*cobra.Command, error) {
	var executionFlags executionFlagValues

	command := &cobra.Command{
		Use:           updateUseConstant,
		Short:         updateShortDescription,
		Long:          updateLongDescription,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := executionFlags.apply(command, builder.resolveConfiguration())
			repositorySet, setError := builder.buildSet(command, configuration, newOutcomeReporter(command, updatedOutcomeLabelConstant))
			if setError != nil {
				return setError
			}
			return repositorySet.Update(command.Context())
		},
	}

	addExecutionFlags(command, &executionFlags)

	return command, nil
}
