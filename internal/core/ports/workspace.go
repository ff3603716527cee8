// Package ports defines the interfaces between the task engine and its
// external collaborators.
package ports

import (
	"context"

	"go.trai.ch/pax/internal/core/domain"
)

// Workspace is the project the task runner operates in. The package solver,
// lock-file materialization and manifest parsing live behind this interface.
type Workspace interface {
	// Root returns the absolute path of the workspace root.
	Root() string

	// EnvironmentFromNameOrEnvVar resolves an environment by explicit name,
	// falling back to the PAX_ENVIRONMENT variable and then the default
	// environment when name is empty.
	EnvironmentFromNameOrEnvVar(name string) (Environment, error)

	// Environments returns all environments of the workspace in a stable
	// order.
	Environments() []Environment

	// LockFile returns the current lock-file state, ensuring it is fresh
	// with respect to the manifest. A missing lock file yields an empty
	// digest rather than an error.
	LockFile(ctx context.Context) (*domain.LockFile, error)
}

// Environment is a named, platform-specific set of installed packages a task
// executes within.
type Environment interface {
	// Name returns the environment name.
	Name() string

	// Root returns the workspace root this environment belongs to.
	Root() string

	// IsDefault reports whether this is the workspace's default environment.
	IsDefault() bool

	// BestPlatform returns the platform the environment will run on, or
	// domain.ErrUnsupportedPlatform when the current platform is not
	// supported.
	BestPlatform() (domain.Platform, error)

	// Tasks returns the tasks visible in this environment for the given
	// platform, keyed by task name.
	Tasks(platform domain.Platform) map[domain.InternedString]domain.TaskSpec

	// EnsurePrefix materializes the environment's installation prefix so
	// commands can resolve its binaries.
	EnsurePrefix(ctx context.Context, lock *domain.LockFile) error

	// ActivationEnv computes the activation variables for running a command
	// in this environment. With clean set, the parent shell environment is
	// not inherited beyond a minimal allowlist.
	ActivationEnv(ctx context.Context, clean bool, lock *domain.LockFile) (map[string]string, error)
}
