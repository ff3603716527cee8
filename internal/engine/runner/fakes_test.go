package runner_test

import (
	"context"
	"testing"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
)

type fakeEnv struct {
	name  string
	root  string
	tasks map[domain.InternedString]domain.TaskSpec
}

func (e *fakeEnv) Name() string    { return e.name }
func (e *fakeEnv) Root() string    { return e.root }
func (e *fakeEnv) IsDefault() bool { return true }

func (e *fakeEnv) BestPlatform() (domain.Platform, error) {
	return domain.CurrentPlatform(), nil
}

func (e *fakeEnv) Tasks(_ domain.Platform) map[domain.InternedString]domain.TaskSpec {
	return e.tasks
}

func (e *fakeEnv) EnsurePrefix(context.Context, *domain.LockFile) error { return nil }

func (e *fakeEnv) ActivationEnv(context.Context, bool, *domain.LockFile) (map[string]string, error) {
	return map[string]string{"PATH": "/usr/bin:/bin"}, nil
}

type fakeWorkspace struct {
	root string
	envs []ports.Environment
}

func (w *fakeWorkspace) Root() string                      { return w.root }
func (w *fakeWorkspace) Environments() []ports.Environment { return w.envs }

func (w *fakeWorkspace) EnvironmentFromNameOrEnvVar(string) (ports.Environment, error) {
	return w.envs[0], nil
}

func (w *fakeWorkspace) LockFile(context.Context) (*domain.LockFile, error) {
	return &domain.LockFile{Digest: "lockdigest"}, nil
}

func singleEnvWorkspace(t *testing.T, specs map[string]domain.TaskSpec) *fakeWorkspace {
	t.Helper()
	taskMap := make(map[domain.InternedString]domain.TaskSpec, len(specs))
	for name, spec := range specs {
		taskMap[domain.NewInternedString(name)] = spec
	}
	env := &fakeEnv{
		name:  "default",
		root:  t.TempDir(),
		tasks: taskMap,
	}
	return &fakeWorkspace{root: env.root, envs: []ports.Environment{env}}
}

func deps(names ...string) []domain.InternedString {
	result := make([]domain.InternedString, 0, len(names))
	for _, name := range names {
		result = append(result, domain.NewInternedString(name))
	}
	return result
}

type declineAll struct{}

func (declineAll) Disambiguate(*ports.AmbiguousTask) (int, bool) { return 0, false }
