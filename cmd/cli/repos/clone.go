package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposet/internal/fleet"
	flagutils "github.com/temirov/reposet/internal/utils/flags"
)

const (
	cloneUseConstant      = "clone"
	cloneShortDescription = "Clone every configured repository into the root directory"
	cloneLongDescription  = "clone fetches each configured repository into <root>/<name> in configuration order, stopping at the first failure."
	sshFlagNameConstant   = "ssh"
	sshFlagUsageConstant  = "Clone over SSH instead of HTTPS."
)

// CloneCommandBuilder assembles the clone command.
type CloneCommandBuilder struct {
	CommandDependencies
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	var executionFlags executionFlagValues
	var useSSH bool

	command := &cobra.Command{
		Use:           cloneUseConstant,
		Short:         cloneShortDescription,
		Long:          cloneLongDescription,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := executionFlags.apply(command, builder.resolveConfiguration())
			if command.Flags().Changed(sshFlagNameConstant) {
				configuration.UseSSH = useSSH
			}
			return builder.run(command, configuration)
		},
	}

	addExecutionFlags(command, &executionFlags)
	flagutils.AddToggleFlag(command.Flags(), &useSSH, sshFlagNameConstant, "", false, sshFlagUsageConstant)

	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, configuration Configuration) error {
	repositorySet, setError := builder.buildSet(command, configuration, newOutcomeReporter(command, clonedOutcomeLabelConstant))
	if setError != nil {
		return setError
	}
	return repositorySet.Clone(command.Context(), fleet.CloneOptions{UseSSH: configuration.UseSSH})
}
