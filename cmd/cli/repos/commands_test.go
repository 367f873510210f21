package repos_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposet/cmd/cli/repos"
	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/fleet"
)

func TestCloneCommandClonesEveryRepository(testInstance *testing.T) {
	testCases := []struct {
		name         string
		arguments    []string
		useSSH       bool
		expectedURLs []string
	}{
		{
			name:         "https_by_default",
			expectedURLs: []string{"https://github.com/UCLH-DHCT/emap-star", "https://github.com/UCLH-DHCT/hl7-reader"},
		},
		{
			name:         "ssh_flag",
			arguments:    []string{"--ssh"},
			expectedURLs: []string{"git@github.com:UCLH-DHCT/emap-star", "git@github.com:UCLH-DHCT/hl7-reader"},
		},
		{
			name:         "ssh_configuration",
			useSSH:       true,
			expectedURLs: []string{"git@github.com:UCLH-DHCT/emap-star", "git@github.com:UCLH-DHCT/hl7-reader"},
		},
		{
			name:         "ssh_flag_overrides_configuration",
			arguments:    []string{"--ssh=no"},
			useSSH:       true,
			expectedURLs: []string{"https://github.com/UCLH-DHCT/emap-star", "https://github.com/UCLH-DHCT/hl7-reader"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			root := testInstance.TempDir()
			provider := newStubProvider()
			configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"}, repos.RepositoryEntry{Name: "hl7-reader", Branch: "develop"})
			configuration.UseSSH = testCase.useSSH

			builder := repos.CloneCommandBuilder{CommandDependencies: newTestDependencies(provider, configuration)}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, testCase.arguments...)
			require.NoError(testInstance, executionError)

			require.Len(testInstance, provider.cloneRequests, 2)
			for index, request := range provider.cloneRequests {
				require.Equal(testInstance, testCase.expectedURLs[index], request.SourceURL)
				require.NotNil(testInstance, request.Progress)
			}
			require.Equal(testInstance, "develop", provider.cloneRequests[1].Branch)

			expectedOutput := fmt.Sprintf("CLONED: emap-star -> %s\nCLONED: hl7-reader -> %s\n", filepath.Join(root, "emap-star"), filepath.Join(root, "hl7-reader"))
			require.Equal(testInstance, expectedOutput, output)
		})
	}
}

func TestCloneCommandDisablesProgressWhenParallel(testInstance *testing.T) {
	root := testInstance.TempDir()
	provider := newStubProvider()
	configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"})

	builder := repos.CloneCommandBuilder{CommandDependencies: newTestDependencies(provider, configuration)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "--parallel", "4")
	require.NoError(testInstance, executionError)
	require.Len(testInstance, provider.cloneRequests, 1)
	require.Nil(testInstance, provider.cloneRequests[0].Progress)
}

func TestCloneCommandRejectsExistingDirectory(testInstance *testing.T) {
	root := testInstance.TempDir()
	createDirectories(testInstance, root, "emap-star")
	provider := newStubProvider()
	configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"}, repos.RepositoryEntry{Name: "hl7-reader"})

	builder := repos.CloneCommandBuilder{CommandDependencies: newTestDependencies(provider, configuration)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command)
	require.ErrorIs(testInstance, executionError, fleet.ErrAlreadyExists)

	var bulkError *fleet.BulkOperationError
	require.ErrorAs(testInstance, executionError, &bulkError)
	require.Equal(testInstance, "emap-star", bulkError.RepositoryName)
	require.Equal(testInstance, 1, bulkError.NotAttempted)
	require.Empty(testInstance, provider.calls)
	require.Empty(testInstance, output)
}

func TestCloneCommandRejectsUnknownProvider(testInstance *testing.T) {
	configuration := newTestConfiguration(testInstance.TempDir(), repos.RepositoryEntry{Name: "emap-star"})

	builder := repos.CloneCommandBuilder{CommandDependencies: repos.CommandDependencies{
		ConfigurationProvider: func() repos.Configuration { return configuration },
	}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, "--provider", "svn")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "svn")
}

func TestCommandsRequireRepositories(testInstance *testing.T) {
	configuration := newTestConfiguration(testInstance.TempDir())
	commandDependencies := newTestDependencies(newStubProvider(), configuration)

	cloneBuilder := repos.CloneCommandBuilder{CommandDependencies: commandDependencies}
	updateBuilder := repos.UpdateCommandBuilder{CommandDependencies: commandDependencies}
	cleanBuilder := repos.CleanCommandBuilder{CommandDependencies: commandDependencies}
	environmentBuilder := repos.EnvironmentCommandBuilder{CommandDependencies: commandDependencies}

	cloneCommand, _ := cloneBuilder.Build()
	updateCommand, _ := updateBuilder.Build()
	cleanCommand, _ := cleanBuilder.Build()
	environmentCommand, _ := environmentBuilder.Build()

	for _, command := range []*cobra.Command{cloneCommand, updateCommand, cleanCommand, environmentCommand} {
		standardOutput, standardError, executionError := executeCommandCapturingStreams(testInstance, command)
		require.ErrorIs(testInstance, executionError, repos.ErrNoRepositoriesConfigured)
		require.Empty(testInstance, standardOutput, command.Name())
		require.Empty(testInstance, standardError, command.Name())
	}
}

func TestUpdateCommandStopsAtFirstFailure(testInstance *testing.T) {
	root := testInstance.TempDir()
	provider := newStubProvider()
	pullFailure := errors.New("merge conflict")
	provider.failures["pull:hl7-reader"] = pullFailure

	configuration := newTestConfiguration(root,
		repos.RepositoryEntry{Name: "emap-star"},
		repos.RepositoryEntry{Name: "hl7-reader"},
		repos.RepositoryEntry{Name: "interchange"},
	)
	configuration.DefaultBranch = "main"

	builder := repos.UpdateCommandBuilder{CommandDependencies: newTestDependencies(provider, configuration)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command)
	require.ErrorIs(testInstance, executionError, pullFailure)

	var bulkError *fleet.BulkOperationError
	require.ErrorAs(testInstance, executionError, &bulkError)
	require.Equal(testInstance, "hl7-reader", bulkError.RepositoryName)
	require.Equal(testInstance, 1, bulkError.NotAttempted)

	require.Equal(testInstance, []string{
		"open:emap-star", "checkout:emap-star:main", "pull:emap-star",
		"open:hl7-reader", "checkout:hl7-reader:main", "pull:hl7-reader",
	}, provider.calls)
	require.Equal(testInstance, fmt.Sprintf("UPDATED: emap-star -> %s\n", filepath.Join(root, "emap-star")), output)
}

func TestCleanCommandRemovesRepositories(testInstance *testing.T) {
	root := testInstance.TempDir()
	createDirectories(testInstance, root, "emap-star")
	configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"}, repos.RepositoryEntry{Name: "hl7-reader"})

	builder := repos.CleanCommandBuilder{CommandDependencies: newTestDependencies(newStubProvider(), configuration)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command)
	require.NoError(testInstance, executionError)
	require.NoDirExists(testInstance, filepath.Join(root, "emap-star"))
	require.Equal(testInstance, fmt.Sprintf("REMOVED: emap-star -> %s\n", filepath.Join(root, "emap-star")), output)
}

func TestCleanCommandSkipsNeverClonedRepositories(testInstance *testing.T) {
	root := testInstance.TempDir()
	configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"}, repos.RepositoryEntry{Name: "hl7-reader"})

	builder := repos.CleanCommandBuilder{CommandDependencies: newTestDependencies(newStubProvider(), configuration)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command)
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, output)
}

func TestEnvironmentCommandListsAndWritesTemplates(testInstance *testing.T) {
	root := testInstance.TempDir()
	createDirectories(testInstance, root, "emap-star", "hl7-reader")
	templatePath := filepath.Join(root, "emap-star", "star-envs.EXAMPLE")
	require.NoError(testInstance, os.WriteFile(templatePath, []byte("UDS_HOST=localhost\nUDS_PORT=5432\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(root, "hl7-reader", "notes.txt"), []byte("ignored"), 0o644))

	configuration := newTestConfiguration(root, repos.RepositoryEntry{Name: "emap-star"}, repos.RepositoryEntry{Name: "hl7-reader"})

	builder := repos.EnvironmentCommandBuilder{CommandDependencies: newTestDependencies(newStubProvider(), configuration)}
	listCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, listCommand)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, templatePath+"\n", output)

	writeCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError = executeCommand(testInstance, writeCommand, "--write")
	require.NoError(testInstance, executionError)

	destinationPath := filepath.Join(root, "config", "star-envs")
	require.Equal(testInstance, "WROTE: "+destinationPath+"\n", output)

	written, readError := godotenv.Read(destinationPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, map[string]string{"UDS_HOST": "localhost", "UDS_PORT": "5432"}, written)

	repeatCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	_, executionError = executeCommand(testInstance, repeatCommand, "--write")
	require.ErrorIs(testInstance, executionError, envfile.ErrDestinationExists)

	overwriteCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	_, executionError = executeCommand(testInstance, overwriteCommand, "--write", "--overwrite")
	require.NoError(testInstance, executionError)
}

func TestEnvironmentCommandDocumentsLossyWrite(testInstance *testing.T) {
	builder := repos.EnvironmentCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.Contains(testInstance, command.Long, "comments and key order are dropped")
	writeFlag := command.Flags().Lookup("write")
	require.NotNil(testInstance, writeFlag)
	require.Contains(testInstance, writeFlag.Usage, "comments and key order are not preserved")
}
