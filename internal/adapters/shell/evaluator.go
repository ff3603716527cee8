// Package shell provides the shell evaluator adapter on top of os/exec.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Evaluator = (*Evaluator)(nil)

// Evaluator implements ports.Evaluator by handing the script to `sh -c`.
// Cooperative cancellation sends SIGTERM to the shell; the process is never
// hard-killed by this adapter.
type Evaluator struct {
	logger ports.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(logger ports.Logger) *Evaluator {
	return &Evaluator{
		logger: logger,
	}
}

// Evaluate runs the request's script and returns its exit code. A non-zero
// exit code is a result, not an error; the shell itself reports 127 for
// unknown commands.
func (e *Evaluator) Evaluate(ctx context.Context, req ports.EvalRequest) (int, error) {
	script := strings.TrimSpace(req.Script)
	if script == "" || strings.ContainsRune(script, 0) {
		return 0, zerr.With(domain.ErrMalformedScript, "script", req.Script)
	}

	if req.WorkingDir != "" {
		if info, err := os.Stat(req.WorkingDir); err != nil || !info.IsDir() {
			return 0, zerr.With(domain.ErrInvalidWorkingDirectory, "path", req.WorkingDir)
		}
	}

	cmd := exec.Command("sh", "-c", script) //nolint:gosec // user provided command
	cmd.Dir = req.WorkingDir
	cmd.Env = flattenEnv(req.Env)

	stdoutLog := &logWriter{logger: e.logger, level: "info"}
	stderrLog := &logWriter{logger: e.logger, level: "error"}
	cmd.Stdout = io.MultiWriter(stdoutLog, orStream(req.Stdout, os.Stdout))
	cmd.Stderr = io.MultiWriter(stderrLog, orStream(req.Stderr, os.Stderr))

	if err := cmd.Start(); err != nil {
		return 0, zerr.Wrap(err, "failed to start shell")
	}

	waitDone := make(chan struct{})
	go func() {
		select {
		case <-stopDone(req.Stop):
			_ = cmd.Process.Signal(syscall.SIGTERM)
		case <-ctx.Done():
			_ = cmd.Process.Signal(syscall.SIGTERM)
		case <-waitDone:
		}
	}()

	err := cmd.Wait()
	close(waitDone)
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Terminated by signal; report the interrupt convention.
				code = domain.ExitCodeInterrupted
			}
			return code, nil
		}
		return 0, zerr.Wrap(err, "command failed")
	}

	return 0, nil
}

func stopDone(t *domain.StopToken) <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.Done()
}

func orStream(w io.Writer, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

// flattenEnv converts the environment map to the KEY=VALUE slice exec
// expects, sorted for determinism.
func flattenEnv(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// logWriter splits command output into lines for the structured logger,
// buffering partial writes.
type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Error(zerr.New(msg))
	}
}
