// Package app implements the application layer for pax.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/pax/internal/engine/runner"
	"go.trai.ch/pax/internal/engine/taskgraph"
	"go.trai.ch/pax/internal/engine/watch"
	"go.trai.ch/zerr"
)

// errWatchUpToDate ends a watch session whose first run was skipped
// entirely by the cache gate.
var errWatchUpToDate = zerr.New("watched task is up to date")

// App wires the task engine to its external collaborators.
type App struct {
	ws            ports.Workspace
	eval          ports.Evaluator
	gate          ports.CacheGate
	telemetry     ports.Telemetry
	logger        ports.Logger
	newWatcher    ports.WatcherFactory
	disambiguator ports.Disambiguator
	coordinator   *watch.Coordinator
	guard         *watch.Guard

	out    io.Writer
	errOut io.Writer
}

// New creates a new App instance.
func New(
	ws ports.Workspace,
	eval ports.Evaluator,
	gate ports.CacheGate,
	telemetry ports.Telemetry,
	logger ports.Logger,
	newWatcher ports.WatcherFactory,
) *App {
	return &App{
		ws:            ws,
		eval:          eval,
		gate:          gate,
		telemetry:     telemetry,
		logger:        logger,
		newWatcher:    newWatcher,
		disambiguator: declineAll{},
		coordinator:   watch.NewCoordinator(logger),
		guard:         watch.NewGuard(),
		out:           os.Stdout,
		errOut:        os.Stderr,
	}
}

// declineAll is the non-interactive default: an ambiguous task fails instead
// of prompting.
type declineAll struct{}

func (declineAll) Disambiguate(*ports.AmbiguousTask) (int, bool) {
	return 0, false
}

// SetDisambiguator replaces the ambiguity strategy, e.g. with an interactive
// prompt or a deterministic test chooser.
func (a *App) SetDisambiguator(d ports.Disambiguator) {
	a.disambiguator = d
}

// SetOutput redirects the app's user-facing streams. Used for testing.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.out = out
	a.errOut = errOut
}

// RunOptions configure a run or watch invocation.
type RunOptions struct {
	// Environment explicitly selects the environment; empty falls back to
	// PAX_ENVIRONMENT and then the default.
	Environment string

	// CleanEnv strips the parent shell environment for every task.
	CleanEnv bool

	// SkipDeps runs only the requested task, ignoring its dependencies.
	SkipDeps bool

	// DryRun prints the resolved commands, executing and caching nothing.
	DryRun bool
}

// Run resolves the task graph for the given CLI tokens and executes it in
// dependency order.
func (a *App) Run(ctx context.Context, tokens []string, opts RunOptions) error {
	explicit, err := a.explicitEnvironment(opts)
	if err != nil {
		return err
	}

	if len(tokens) == 0 {
		a.listTasks(a.out, explicit)
		return nil
	}

	graph, lock, err := a.buildGraph(ctx, tokens, explicit, opts)
	if err != nil {
		return err
	}

	a.guard.Install()
	run := runner.New(a.eval, a.gate, a.telemetry, a.logger, a.guard)
	run.SetOutput(a.out)

	_, err = run.Run(ctx, graph, runner.Options{
		Lock:     lock,
		CleanEnv: opts.CleanEnv,
		DryRun:   opts.DryRun,
	})
	return a.reportCommandNotFound(err, explicit)
}

// Watch resolves the task graph and re-runs its single task whenever the
// task's inputs change.
func (a *App) Watch(ctx context.Context, tokens []string, opts RunOptions) error {
	explicit, err := a.explicitEnvironment(opts)
	if err != nil {
		return err
	}

	if len(tokens) == 0 {
		a.listTasks(a.out, explicit)
		return nil
	}

	graph, lock, err := a.buildGraph(ctx, tokens, explicit, opts)
	if err != nil {
		return err
	}

	task, ok := a.singleWatchTask(graph)
	if !ok {
		return nil
	}

	if opts.DryRun {
		fmt.Fprintf(a.out, "✨ task (%s in %s): %s\n",
			task.Name(), task.RunEnvironment().Name(), task.DisplayCommand())
		return nil
	}

	workdir, err := task.WorkingDirectory()
	if err != nil {
		return err
	}

	run := runner.New(a.eval, a.gate, a.telemetry, a.logger, nil)
	run.SetOutput(a.out)

	session := watch.NewSession(watch.Config{
		TaskName: task.Name(),
		Workdir:  workdir,
		Patterns: task.Inputs(),
		Run: func(ctx context.Context, stop *domain.StopToken, restart bool) error {
			stats, err := run.Run(ctx, graph, runner.Options{
				Lock:     lock,
				CleanEnv: opts.CleanEnv,
				NoCache:  restart,
				Stop:     stop,
			})
			if err != nil {
				return err
			}
			if !restart && stats.Executed == 0 && stats.Skipped > 0 {
				return errWatchUpToDate
			}
			return nil
		},
		NewWatcher:  a.newWatcher,
		Logger:      a.logger,
		Coordinator: a.coordinator,
		Out:         a.out,
	})

	err = session.Run(ctx)
	if errors.Is(err, errWatchUpToDate) {
		fmt.Fprintf(a.out, "task %q is up to date, nothing to watch\n", task.Name())
		return nil
	}
	return a.reportCommandNotFound(err, explicit)
}

func (a *App) explicitEnvironment(opts RunOptions) (ports.Environment, error) {
	if opts.Environment == "" {
		return nil, nil
	}
	env, err := a.ws.EnvironmentFromNameOrEnvVar(opts.Environment)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (a *App) buildGraph(
	ctx context.Context,
	tokens []string,
	explicit ports.Environment,
	opts RunOptions,
) (*taskgraph.Graph, *domain.LockFile, error) {
	lock, err := a.ws.LockFile(ctx)
	if err != nil {
		return nil, nil, err
	}

	graph, err := taskgraph.FromCmdArgs(a.ws, a.disambiguator, tokens, taskgraph.BuildOptions{
		Explicit: explicit,
		SkipDeps: opts.SkipDeps,
	})
	if err != nil {
		return nil, nil, err
	}
	return graph, lock, nil
}

// singleWatchTask extracts the one task a watch session supports. Alias
// nodes count against the limit; any other shape is reported to the user
// without an error.
func (a *App) singleWatchTask(graph *taskgraph.Graph) (*taskgraph.ExecutableTask, bool) {
	tasks := graph.ExecutableTasks()
	if len(tasks) > 1 {
		fmt.Fprintf(a.errOut,
			"watch supports a single task, but %d tasks resolved; re-run with --skip-deps to watch just one\n",
			len(tasks))
		return nil, false
	}
	if len(tasks) == 1 && tasks[0].IsExecutable() {
		return tasks[0], true
	}
	fmt.Fprintln(a.errOut, "nothing to watch: the task has no command of its own")
	return nil, false
}

// reportCommandNotFound emits the available-task listing when a command
// exited with the shell's command-not-found code. The error still propagates
// so the process reports the same code.
func (a *App) reportCommandNotFound(err error, explicit ports.Environment) error {
	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) && exitErr.Code == domain.ExitCodeCommandNotFound {
		fmt.Fprintln(a.errOut, "command not found")
		a.listTasks(a.errOut, explicit)
	}
	return err
}

// listTasks prints the tasks available in the candidate environments.
func (a *App) listTasks(w io.Writer, explicit ports.Environment) {
	fmt.Fprintln(w, "Available tasks:")

	for _, env := range taskgraph.SearchEnvironments(a.ws, explicit) {
		platform, err := env.BestPlatform()
		if err != nil {
			continue
		}
		tasks := env.Tasks(platform)
		if len(tasks) == 0 {
			continue
		}

		names := make([]string, 0, len(tasks))
		for name := range tasks {
			names = append(names, name.String())
		}
		sort.Strings(names)

		fmt.Fprintf(w, "  %s:\n", env.Name())
		for _, name := range names {
			spec := tasks[domain.NewInternedString(name)]
			if spec.Description != "" {
				fmt.Fprintf(w, "    %s: %s\n", name, spec.Description)
				continue
			}
			fmt.Fprintf(w, "    %s\n", name)
		}
	}
}
