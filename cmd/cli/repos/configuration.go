package repos

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/reposet/internal/fleet"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	configurationRootKeyConstant          = "root"
	configurationMainGitURLKeyConstant    = "main_git_url"
	configurationDefaultBranchKeyConstant = "default_branch"
	configurationUseSSHKeyConstant        = "use_ssh"
	configurationProviderKeyConstant      = "provider"
	configurationParallelismKeyConstant   = "parallelism"
	defaultRootDirectoryConstant          = "."
	defaultParallelismConstant            = 1
	configurationKeySeparatorConstant     = "."
)

// Configuration describes the managed repository set and how commands operate on it.
type Configuration struct {
	Root          string            `mapstructure:"root"`
	MainGitURL    string            `mapstructure:"main_git_url"`
	DefaultBranch string            `mapstructure:"default_branch"`
	UseSSH        bool              `mapstructure:"use_ssh"`
	Provider      string            `mapstructure:"provider"`
	Parallelism   int               `mapstructure:"parallelism"`
	Repositories  []RepositoryEntry `mapstructure:"repositories"`
}

// RepositoryEntry names one member of the set. Branch falls back to Configuration.DefaultBranch.
type RepositoryEntry struct {
	Name   string `mapstructure:"name"`
	Branch string `mapstructure:"branch"`
}

// DefaultConfiguration returns baseline values for the fleet commands.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:        defaultRootDirectoryConstant,
		Provider:    string(vcs.ProviderKindCommandLine),
		Parallelism: defaultParallelismConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootKeyConstant:          defaults.Root,
		prefix + configurationMainGitURLKeyConstant:    defaults.MainGitURL,
		prefix + configurationDefaultBranchKeyConstant: defaults.DefaultBranch,
		prefix + configurationUseSSHKeyConstant:        defaults.UseSSH,
		prefix + configurationProviderKeyConstant:      defaults.Provider,
		prefix + configurationParallelismKeyConstant:   defaults.Parallelism,
	}
}

// RepositoryEntryDecodeHook lets a repository entry be written as a bare name instead of a mapping.
func RepositoryEntryDecodeHook() mapstructure.DecodeHookFunc {
	entryType := reflect.TypeOf(RepositoryEntry{})
	return mapstructure.DecodeHookFuncType(func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String || targetType != entryType {
			return data, nil
		}
		return RepositoryEntry{Name: reflect.ValueOf(data).String()}, nil
	})
}

// Sanitize trims values, expands the root directory, and restores defaults for blank settings.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Root = strings.TrimSpace(configuration.Root)
	if len(sanitized.Root) == 0 {
		sanitized.Root = defaults.Root
	}
	sanitized.Root = repositoryHomeDirectoryExpander.Expand(sanitized.Root)

	sanitized.MainGitURL = strings.TrimSpace(configuration.MainGitURL)
	sanitized.DefaultBranch = strings.TrimSpace(configuration.DefaultBranch)
	sanitized.Provider = strings.TrimSpace(configuration.Provider)
	if len(sanitized.Provider) == 0 {
		sanitized.Provider = defaults.Provider
	}
	if sanitized.Parallelism < defaultParallelismConstant {
		sanitized.Parallelism = defaultParallelismConstant
	}

	sanitized.Repositories = make([]RepositoryEntry, 0, len(configuration.Repositories))
	for _, entry := range configuration.Repositories {
		sanitized.Repositories = append(sanitized.Repositories, RepositoryEntry{
			Name:   strings.TrimSpace(entry.Name),
			Branch: strings.TrimSpace(entry.Branch),
		})
	}
	return sanitized
}

// Definitions converts the configured entries into repository definitions in configuration order.
func (configuration Configuration) Definitions() []fleet.RepositoryDefinition {
	definitions := make([]fleet.RepositoryDefinition, 0, len(configuration.Repositories))
	for _, entry := range configuration.Repositories {
		branch := entry.Branch
		if len(branch) == 0 {
			branch = configuration.DefaultBranch
		}
		definitions = append(definitions, fleet.RepositoryDefinition{
			Name:          entry.Name,
			MainRemoteURL: configuration.MainGitURL,
			Branch:        branch,
		})
	}
	return definitions
}
