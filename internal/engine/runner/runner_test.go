package runner_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pax/internal/adapters/telemetry"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/pax/internal/core/ports/mocks"
	"go.trai.ch/pax/internal/engine/runner"
	"go.trai.ch/pax/internal/engine/taskgraph"
	"go.uber.org/mock/gomock"
)

type runnerTestMocks struct {
	eval   *mocks.MockEvaluator
	gate   *mocks.MockCacheGate
	logger *mocks.MockLogger
	out    *bytes.Buffer
}

func setupRunnerTest(t *testing.T) (*runner.Runner, runnerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := runnerTestMocks{
		eval:   mocks.NewMockEvaluator(ctrl),
		gate:   mocks.NewMockCacheGate(ctrl),
		logger: mocks.NewMockLogger(ctrl),
		out:    &bytes.Buffer{},
	}
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	r := runner.New(m.eval, m.gate, telemetry.NewNoOp(), m.logger, nil)
	r.SetOutput(m.out)
	return r, m
}

func buildGraph(t *testing.T, tokens []string, specs map[string]domain.TaskSpec) (*taskgraph.Graph, *fakeWorkspace) {
	t.Helper()
	ws := singleEnvWorkspace(t, specs)
	graph, err := taskgraph.FromCmdArgs(ws, declineAll{}, tokens, taskgraph.BuildOptions{})
	require.NoError(t, err)
	return graph, ws
}

func lock() *domain.LockFile {
	return &domain.LockFile{Digest: "lockdigest"}
}

func TestRunner_ExecutesInDependencyOrder(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"fetch": {Cmd: "curl -O data"},
		"build": {Cmd: "make", DependsOn: deps("fetch")},
	})

	var scripts []string
	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.EvalRequest) (int, error) {
			scripts = append(scripts, req.Script)
			return 0, nil
		}).Times(2)

	stats, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})
	require.NoError(t, err)
	assert.Equal(t, []string{"curl -O data", "make"}, scripts)
	assert.Equal(t, runner.Stats{Executed: 2}, stats)
}

func TestRunner_NonZeroExitStopsTheSequence(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"fetch": {Cmd: "curl -O data"},
		"build": {Cmd: "make", DependsOn: deps("fetch")},
	})

	// Only the failing first task runs.
	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(3, nil).Times(1)

	_, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})

	var exitErr *domain.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestRunner_CacheHitSkipsEvaluation(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"fetch": {Cmd: "curl -O data", Inputs: []string{"*.lock"}},
		"build": {Cmd: "make", DependsOn: deps("fetch")},
	})

	// fetch is a cache hit; only build evaluates and only build has no
	// inputs, so the gate is consulted once and never saved.
	m.gate.EXPECT().Check(gomock.Any(), gomock.Any()).
		Return(ports.CacheDecision{Skip: true, Fingerprint: "f1"}, nil).Times(1)
	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.EvalRequest) (int, error) {
			assert.Equal(t, "make", req.Script)
			return 0, nil
		}).Times(1)

	stats, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})
	require.NoError(t, err)
	assert.Equal(t, runner.Stats{Executed: 1, Skipped: 1}, stats)
}

func TestRunner_SavesFingerprintAfterSuccess(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"build": {Cmd: "make", Inputs: []string{"src/*.c"}},
	})

	decision := ports.CacheDecision{Skip: false, Fingerprint: "f2"}
	gomock.InOrder(
		m.gate.EXPECT().Check(gomock.Any(), gomock.Any()).Return(decision, nil),
		m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(0, nil),
		m.gate.EXPECT().Save(gomock.Any(), gomock.Any(), decision).Return(nil),
	)

	_, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})
	require.NoError(t, err)
}

func TestRunner_FailureNeverSaves(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"build": {Cmd: "make", Inputs: []string{"src/*.c"}},
	})

	m.gate.EXPECT().Check(gomock.Any(), gomock.Any()).
		Return(ports.CacheDecision{Fingerprint: "f3"}, nil)
	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(1, nil)

	_, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})
	assert.Error(t, err)
}

func TestRunner_DryRunTouchesNothing(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"build": {Cmd: "make", Inputs: []string{"src/*.c"}},
	})

	// No gate and no evaluator expectations: any call fails the test.
	_, err := r.Run(context.Background(), graph, runner.Options{Lock: lock(), DryRun: true})
	require.NoError(t, err)
	assert.Contains(t, m.out.String(), "make")
}

func TestRunner_NoCacheForcesExecution(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"build"}, map[string]domain.TaskSpec{
		"build": {Cmd: "make", Inputs: []string{"src/*.c"}},
	})

	m.gate.EXPECT().Check(gomock.Any(), gomock.Any()).
		Return(ports.CacheDecision{Skip: true, Fingerprint: "f4"}, nil)
	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(0, nil)
	m.gate.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	stats, err := r.Run(context.Background(), graph, runner.Options{Lock: lock(), NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, runner.Stats{Executed: 1}, stats)
}

func TestRunner_AliasNodesAreNotExecuted(t *testing.T) {
	r, m := setupRunnerTest(t)
	graph, _ := buildGraph(t, []string{"all"}, map[string]domain.TaskSpec{
		"lint": {Cmd: "lint"},
		"test": {Cmd: "pytest"},
		"all":  {DependsOn: deps("lint", "test")},
	})

	m.eval.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(0, nil).Times(2)

	stats, err := r.Run(context.Background(), graph, runner.Options{Lock: lock()})
	require.NoError(t, err)
	assert.Equal(t, runner.Stats{Executed: 2}, stats)
}
