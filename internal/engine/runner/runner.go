// Package runner executes a built task graph sequentially in dependency
// order.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/pax/internal/engine/taskgraph"
	"go.trai.ch/zerr"
)

// InterruptGuard suppresses the process's immediate exit-on-interrupt while a
// child command is running, so the signal reaches the child first.
type InterruptGuard interface {
	Suppress()
	Allow()
}

type noopGuard struct{}

func (noopGuard) Suppress() {}
func (noopGuard) Allow()    {}

// Runner executes the tasks of a graph one at a time.
type Runner struct {
	eval      ports.Evaluator
	gate      ports.CacheGate
	telemetry ports.Telemetry
	logger    ports.Logger
	guard     InterruptGuard
	out       io.Writer
}

// New creates a Runner. A nil guard disables interrupt suppression.
func New(
	eval ports.Evaluator,
	gate ports.CacheGate,
	telemetry ports.Telemetry,
	logger ports.Logger,
	guard InterruptGuard,
) *Runner {
	if guard == nil {
		guard = noopGuard{}
	}
	return &Runner{
		eval:      eval,
		gate:      gate,
		telemetry: telemetry,
		logger:    logger,
		guard:     guard,
		out:       os.Stdout,
	}
}

// SetOutput redirects the task headers, which go to stdout otherwise.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// Options configure one graph execution.
type Options struct {
	// Lock is the workspace lock-file state the run is pinned to.
	Lock *domain.LockFile

	// CleanEnv strips the parent shell environment for every task.
	CleanEnv bool

	// DryRun prints the execution plan without evaluating anything or
	// touching the cache.
	DryRun bool

	// NoCache forces execution even when the cache gate would skip. The
	// fresh fingerprint is still persisted after success.
	NoCache bool

	// Stop, when non-nil, requests cooperative termination of the task that
	// is currently evaluating.
	Stop *domain.StopToken
}

// Stats summarizes one graph execution.
type Stats struct {
	// Executed counts the tasks that were evaluated (dry runs included).
	Executed int

	// Skipped counts the tasks the cache gate skipped.
	Skipped int
}

// Run executes the graph in topological order. The first non-zero exit code
// stops the run and is returned as a *domain.ExitError.
func (r *Runner) Run(ctx context.Context, graph *taskgraph.Graph, opts Options) (Stats, error) {
	activations := make(map[string]map[string]string)

	var stats Stats
	for _, task := range graph.ExecutableTasks() {
		if !task.IsExecutable() {
			continue
		}
		skipped, err := r.runTask(ctx, task, opts, activations)
		if err != nil {
			return stats, err
		}
		if skipped {
			stats.Skipped++
			continue
		}
		stats.Executed++
	}
	return stats, nil
}

func (r *Runner) runTask(
	ctx context.Context,
	task *taskgraph.ExecutableTask,
	opts Options,
	activations map[string]map[string]string,
) (bool, error) {
	env := task.RunEnvironment()
	fmt.Fprintf(r.out, "✨ task (%s in %s): %s\n", task.Name(), env.Name(), task.DisplayCommand())

	if opts.DryRun {
		return false, nil
	}

	decision, err := task.CanSkip(ctx, r.gate, opts.Lock)
	if err != nil {
		return false, err
	}
	if opts.NoCache {
		decision.Skip = false
	}

	ctx, vertex := r.telemetry.Record(ctx, task.Name())
	if decision.Skip {
		vertex.Cached()
		vertex.Complete(nil)
		r.logger.Info(fmt.Sprintf("task %q skipped, inputs unchanged", task.Name()))
		return true, nil
	}

	clean := opts.CleanEnv || task.Task().CleanEnv
	vars, err := r.activationFor(ctx, env, clean, opts.Lock, activations)
	if err != nil {
		vertex.Complete(err)
		return false, err
	}

	workdir, err := task.WorkingDirectory()
	if err != nil {
		vertex.Complete(err)
		return false, err
	}

	r.guard.Suppress()
	code, err := r.eval.Evaluate(ctx, ports.EvalRequest{
		Script:     task.DisplayCommand(),
		Env:        vars,
		WorkingDir: workdir,
		Stop:       opts.Stop,
		Stdout:     vertex.Stdout(),
		Stderr:     vertex.Stderr(),
	})
	r.guard.Allow()
	if err != nil {
		vertex.Complete(err)
		return false, zerr.With(err, "task", task.Name())
	}

	if code != 0 {
		exitErr := &domain.ExitError{Code: code}
		vertex.Complete(exitErr)
		return false, exitErr
	}
	vertex.Complete(nil)

	if err := task.SaveCache(ctx, r.gate, opts.Lock, decision); err != nil {
		return false, err
	}
	return false, nil
}

// activationFor memoizes the per-environment activation variables across the
// tasks of one run. Tasks that request a clean environment never share the
// memoized set.
func (r *Runner) activationFor(
	ctx context.Context,
	env ports.Environment,
	clean bool,
	lock *domain.LockFile,
	activations map[string]map[string]string,
) (map[string]string, error) {
	if !clean {
		if vars, ok := activations[env.Name()]; ok {
			return vars, nil
		}
	}

	if err := env.EnsurePrefix(ctx, lock); err != nil {
		return nil, err
	}
	vars, err := env.ActivationEnv(ctx, clean, lock)
	if err != nil {
		return nil, err
	}
	if !clean {
		activations[env.Name()] = vars
	}
	return vars, nil
}
