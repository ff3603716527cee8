package taskgraph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/engine/taskgraph"
)

func buildSingle(t *testing.T, spec domain.TaskSpec) *taskgraph.ExecutableTask {
	t.Helper()

	ws := singleEnvWorkspace(t, map[string]domain.TaskSpec{"task": spec})
	graph, err := taskgraph.FromCmdArgs(ws, decline(), []string{"task"}, taskgraph.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, graph.Len())
	return graph.ExecutableTasks()[0]
}

func TestExecutableTask_WorkingDirectoryDefaultsToRoot(t *testing.T) {
	task := buildSingle(t, domain.TaskSpec{Cmd: "true"})

	workdir, err := task.WorkingDirectory()
	require.NoError(t, err)
	assert.Equal(t, task.RunEnvironment().Root(), workdir)
}

func TestExecutableTask_WorkingDirectoryResolvesRelative(t *testing.T) {
	task := buildSingle(t, domain.TaskSpec{Cmd: "true", Cwd: "sub"})
	require.NoError(t, os.MkdirAll(filepath.Join(task.RunEnvironment().Root(), "sub"), 0o755))

	workdir, err := task.WorkingDirectory()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(task.RunEnvironment().Root(), "sub"), workdir)
}

func TestExecutableTask_WorkingDirectoryMustExist(t *testing.T) {
	task := buildSingle(t, domain.TaskSpec{Cmd: "true", Cwd: "missing"})

	_, err := task.WorkingDirectory()
	assert.ErrorIs(t, err, domain.ErrInvalidWorkingDirectory)
}

func TestExecutableTask_WorkingDirectoryMustStayWithinRoot(t *testing.T) {
	task := buildSingle(t, domain.TaskSpec{Cmd: "true", Cwd: "../outside"})

	_, err := task.WorkingDirectory()
	assert.ErrorIs(t, err, domain.ErrInvalidWorkingDirectory)
}
