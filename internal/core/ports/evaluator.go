package ports

import (
	"context"
	"io"

	"go.trai.ch/pax/internal/core/domain"
)

// EvalRequest describes one shell evaluation.
type EvalRequest struct {
	// Script is the command text to evaluate.
	Script string
	// Env is the complete set of environment variables for the evaluation.
	Env map[string]string
	// WorkingDir is the directory the script runs in.
	WorkingDir string
	// Stop, when non-nil, requests cooperative termination of the running
	// script once cancelled. There is no hard-kill guarantee.
	Stop *domain.StopToken
	// Stdout and Stderr receive the script's output. Nil writers default to
	// the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Evaluator is the external shell evaluator. It returns the script's exit
// code; a non-zero code is a result, not an error. Errors are reserved for
// failures to evaluate at all (malformed script, missing working directory).
//
//go:generate go run go.uber.org/mock/mockgen -source=evaluator.go -destination=mocks/mock_evaluator.go -package=mocks
type Evaluator interface {
	Evaluate(ctx context.Context, req EvalRequest) (int, error)
}
