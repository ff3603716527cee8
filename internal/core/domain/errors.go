package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrAmbiguousTask is returned when a task name matches tasks in more
	// than one environment and the disambiguator declines to choose.
	ErrAmbiguousTask = zerr.New("task is ambiguous across environments")

	// ErrUnknownTask is returned when a dependency references a task name
	// that no candidate environment defines.
	ErrUnknownTask = zerr.New("unknown task")

	// ErrCyclicDependency is returned when the dependency edges form a cycle.
	ErrCyclicDependency = zerr.New("cyclic task dependency")

	// ErrEnvironmentNotFound is returned when a requested environment does
	// not exist in the workspace.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrUnsupportedPlatform is returned when an environment does not
	// support the current platform.
	ErrUnsupportedPlatform = zerr.New("environment does not support the current platform")

	// ErrInvalidWorkingDirectory is returned when a task's configured
	// working directory is missing or escapes the environment root.
	ErrInvalidWorkingDirectory = zerr.New("invalid working directory")

	// ErrMalformedScript is returned when a task's command cannot be handed
	// to the shell evaluator.
	ErrMalformedScript = zerr.New("failed to parse shell script")

	// ErrWatchPattern is returned when a watch input pattern is invalid.
	ErrWatchPattern = zerr.New("invalid watch pattern")

	// ErrWatchInstall is returned when an OS watch cannot be installed.
	ErrWatchInstall = zerr.New("failed to install file watch")

	// ErrWatchClosed is returned when the watch event stream terminates.
	ErrWatchClosed = zerr.New("file watch stream closed")

	// ErrManifestRead is returned when the workspace manifest cannot be read.
	ErrManifestRead = zerr.New("failed to read workspace manifest")

	// ErrManifestParse is returned when the workspace manifest is invalid.
	ErrManifestParse = zerr.New("failed to parse workspace manifest")

	// ErrCacheRead is returned when the task cache cannot be read.
	ErrCacheRead = zerr.New("failed to read task cache")

	// ErrCacheWrite is returned when the task cache cannot be written.
	ErrCacheWrite = zerr.New("failed to write task cache")
)

// ExitError carries the exit code of a task that finished with a non-zero
// status. It is an execution outcome, not an internal failure: the run loop
// stops and the process reports the same code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("the script exited with a non-zero exit code %d", e.Code)
}

// ExitCodeCommandNotFound is the shell convention for an unknown command.
// It additionally triggers the available-task listing.
const ExitCodeCommandNotFound = 127

// ExitCodeInterrupted is the POSIX exit code for a SIGINT-terminated process.
const ExitCodeInterrupted = 130
