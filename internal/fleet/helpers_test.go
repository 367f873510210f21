package fleet_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposet/internal/fleet"
	"github.com/temirov/reposet/internal/repos/filesystem"
	"github.com/temirov/reposet/internal/vcs"
)

const (
	testMainRemoteURLConstant = "https://github.com/org/group"
	testPrimaryRemoteConstant = "origin"
)

// recordingProvider records every delegated call as "<operation>:<repository>[:<detail>]".
type recordingProvider struct {
	mutex               sync.Mutex
	calls               []string
	cloneRequests       []vcs.CloneRequest
	failures            map[string]error
	blockUntilCancelled map[string]bool
	createDirectories   bool
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{failures: map[string]error{}, blockUntilCancelled: map[string]bool{}}
}

func (provider *recordingProvider) record(call string) error {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.calls = append(provider.calls, call)
	return provider.failures[call]
}

func (provider *recordingProvider) recordedCalls() []string {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	return append([]string(nil), provider.calls...)
}

func (provider *recordingProvider) CloneFrom(executionContext context.Context, request vcs.CloneRequest) error {
	repositoryName := filepath.Base(request.DestinationPath)
	provider.mutex.Lock()
	provider.cloneRequests = append(provider.cloneRequests, request)
	blocking := provider.blockUntilCancelled[repositoryName]
	provider.mutex.Unlock()

	if failure := provider.record("clone:" + repositoryName); failure != nil {
		return failure
	}
	if blocking {
		<-executionContext.Done()
		return executionContext.Err()
	}
	if provider.createDirectories {
		return os.MkdirAll(request.DestinationPath, 0o755)
	}
	return nil
}

func (provider *recordingProvider) Open(repositoryPath string) (vcs.Handle, error) {
	repositoryName := filepath.Base(repositoryPath)
	if failure := provider.record("open:" + repositoryName); failure != nil {
		return nil, failure
	}
	return &recordingHandle{provider: provider, repositoryName: repositoryName}, nil
}

type recordingHandle struct {
	provider       *recordingProvider
	repositoryName string
}

func (handle *recordingHandle) Checkout(_ context.Context, branch string) error {
	return handle.provider.record("checkout:" + handle.repositoryName + ":" + branch)
}

func (handle *recordingHandle) PrimaryRemote(context.Context) (vcs.Remote, error) {
	if failure := handle.provider.record("remote:" + handle.repositoryName); failure != nil {
		return nil, failure
	}
	return &recordingRemote{handle: handle}, nil
}

type recordingRemote struct {
	handle *recordingHandle
}

func (remote *recordingRemote) Name() string {
	return testPrimaryRemoteConstant
}

func (remote *recordingRemote) Pull(context.Context) error {
	return remote.handle.provider.record("pull:" + remote.handle.repositoryName + ":" + testPrimaryRemoteConstant)
}

type recordingMemberObserver struct {
	mutex     sync.Mutex
	completed []string
}

func (memberObserver *recordingMemberObserver) RepositoryCompleted(operation fleet.Operation, repository *fleet.Repository) {
	memberObserver.mutex.Lock()
	defer memberObserver.mutex.Unlock()
	memberObserver.completed = append(memberObserver.completed, string(operation)+":"+repository.Name())
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	return zap.New(observerCore), observerLogs
}

func writeFiles(testInstance *testing.T, directory string, fileNames ...string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	for _, fileName := range fileNames {
		require.NoError(testInstance, os.WriteFile(filepath.Join(directory, fileName), []byte("KEY=value\n"), 0o644))
	}
}

type recordingWriter struct {
	mutex   sync.Mutex
	written []byte
}

func (writer *recordingWriter) Write(payload []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()
	writer.written = append(writer.written, payload...)
	return len(payload), nil
}

type osFileSystem = filesystem.OSFileSystem
