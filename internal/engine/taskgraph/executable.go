package taskgraph

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

// ExecutableTask is the execution-facing view of one graph node: the node
// plus the environment it runs in.
type ExecutableTask struct {
	node  *domain.TaskNode
	env   ports.Environment
	graph *Graph
}

// Task returns the underlying graph node.
func (t *ExecutableTask) Task() *domain.TaskNode {
	return t.node
}

// Name returns the task name, or the rendered command for ad hoc tasks.
func (t *ExecutableTask) Name() string {
	if name := t.node.Name.String(); name != "" {
		return name
	}
	return t.node.FullCommand()
}

// RunEnvironment returns the environment the task executes in.
func (t *ExecutableTask) RunEnvironment() ports.Environment {
	return t.env
}

// IsExecutable reports whether the task carries a command of its own.
func (t *ExecutableTask) IsExecutable() bool {
	return t.node.IsExecutable()
}

// IsCustom reports whether the task is an ad hoc command rather than a named
// manifest task.
func (t *ExecutableTask) IsCustom() bool {
	return t.node.Custom
}

// Inputs returns the task's input patterns.
func (t *ExecutableTask) Inputs() []string {
	return t.node.Inputs
}

// DisplayCommand renders the command as it will be handed to the shell.
func (t *ExecutableTask) DisplayCommand() string {
	return t.node.FullCommand()
}

// WorkingDirectory resolves the task's working directory against the
// environment root. The directory must exist and stay within the root.
func (t *ExecutableTask) WorkingDirectory() (string, error) {
	root := t.env.Root()
	if t.node.Cwd == "" {
		return root, nil
	}

	dir := filepath.Join(root, t.node.Cwd)
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.With(domain.ErrInvalidWorkingDirectory,
			"cwd", t.node.Cwd,
		), "reason", "escapes the workspace root")
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", zerr.With(domain.ErrInvalidWorkingDirectory, "cwd", t.node.Cwd)
	}
	return dir, nil
}

// cacheKey assembles the full cache identity of the task.
func (t *ExecutableTask) cacheKey(workdir string, lock *domain.LockFile) ports.CacheKey {
	return ports.CacheKey{
		TaskName:    t.Name(),
		Environment: t.env.Name(),
		Command:     t.node.FullCommand(),
		WorkingDir:  workdir,
		Inputs:      t.node.Inputs,
		LockDigest:  lock.Digest,
	}
}

// CanSkip asks the cache gate whether the task's inputs are unchanged since
// the last successful run. Tasks without inputs always run.
func (t *ExecutableTask) CanSkip(
	ctx context.Context,
	gate ports.CacheGate,
	lock *domain.LockFile,
) (ports.CacheDecision, error) {
	if len(t.node.Inputs) == 0 || t.node.Custom {
		return ports.CacheDecision{}, nil
	}

	workdir, err := t.WorkingDirectory()
	if err != nil {
		return ports.CacheDecision{}, err
	}
	return gate.Check(ctx, t.cacheKey(workdir, lock))
}

// SaveCache persists the fingerprint of a completed run.
func (t *ExecutableTask) SaveCache(
	ctx context.Context,
	gate ports.CacheGate,
	lock *domain.LockFile,
	decision ports.CacheDecision,
) error {
	if len(t.node.Inputs) == 0 || t.node.Custom {
		return nil
	}

	workdir, err := t.WorkingDirectory()
	if err != nil {
		return err
	}
	return gate.Save(ctx, t.cacheKey(workdir, lock), decision)
}
