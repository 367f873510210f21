package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/reposet/internal/envfile"
	"github.com/temirov/reposet/internal/execshell"
	"github.com/temirov/reposet/internal/repos/filesystem"
	"github.com/temirov/reposet/internal/repos/shared"
	"github.com/temirov/reposet/internal/ui"
	"github.com/temirov/reposet/internal/vcs"
	"github.com/temirov/reposet/internal/vcs/gitcli"
	"github.com/temirov/reposet/internal/vcs/gogit"
)

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(existing *zap.Logger) *zap.Logger {
	if existing != nil {
		return existing
	}
	return zap.NewNop()
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveTemplateParser returns the provided parser or a dotenv-backed default.
func ResolveTemplateParser(existing shared.TemplateParser) shared.TemplateParser {
	if existing != nil {
		return existing
	}
	return envfile.NewParser()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that narrates each git command.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadable bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if humanReadable {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveProvider returns the provided version control provider or builds the one named by kind.
func ResolveProvider(existing vcs.Provider, kind vcs.ProviderKind, executor shared.GitExecutor, logger *zap.Logger, humanReadable bool) (vcs.Provider, error) {
	if existing != nil {
		return existing, nil
	}

	switch kind {
	case vcs.ProviderKindGoGit:
		return gogit.NewProvider(), nil
	case vcs.ProviderKindCommandLine, "":
		gitExecutor, executorError := ResolveGitExecutor(executor, ResolveLogger(logger), humanReadable)
		if executorError != nil {
			return nil, executorError
		}
		provider, providerError := gitcli.NewProvider(gitExecutor)
		if providerError != nil {
			return nil, providerError
		}
		return provider, nil
	default:
		return nil, vcs.ErrUnknownProviderKind
	}
}
