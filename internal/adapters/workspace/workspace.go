// Package workspace provides the manifest-backed Workspace and Environment
// adapters. Package solving and lock-file materialization happen elsewhere;
// this adapter only reads persisted state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// ManifestName is the workspace manifest file name.
	ManifestName = "pax.yaml"
	// LockFileName is the workspace lock file name.
	LockFileName = "pax.lock"
	// EnvVarName selects an environment when no explicit name is given.
	EnvVarName = "PAX_ENVIRONMENT"
	// DefaultEnvName is the name of the implicit default environment.
	DefaultEnvName = "default"
)

var _ ports.Workspace = (*Workspace)(nil)

// Workspace is the manifest-backed implementation of ports.Workspace.
type Workspace struct {
	root     string
	manifest Manifest
	envs     []*Environment
}

// Load reads the manifest in root and constructs the workspace with its
// environments.
func Load(root string) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve workspace root")
	}

	data, err := os.ReadFile(filepath.Join(absRoot, ManifestName)) //nolint:gosec // workspace path
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestRead, err.Error()), "root", absRoot)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, zerr.Wrap(domain.ErrManifestParse, err.Error())
	}

	ws := &Workspace{
		root:     absRoot,
		manifest: manifest,
	}
	ws.buildEnvironments()
	return ws, nil
}

// buildEnvironments constructs the default environment from the top-level
// tasks plus one environment per manifest entry, each layering its tasks over
// the defaults.
func (w *Workspace) buildEnvironments() {
	w.envs = append(w.envs, newEnvironment(w, DefaultEnvName, true, w.manifest.Platforms, w.manifest.Tasks, nil))

	names := make([]string, 0, len(w.manifest.Environments))
	for name := range w.manifest.Environments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dto := w.manifest.Environments[name]
		platforms := dto.Platforms
		if len(platforms) == 0 {
			platforms = w.manifest.Platforms
		}
		w.envs = append(w.envs, newEnvironment(w, name, false, platforms, w.manifest.Tasks, dto.Tasks))
	}
}

// Root returns the absolute path of the workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Environments returns all environments, default first, the rest sorted by
// name.
func (w *Workspace) Environments() []ports.Environment {
	result := make([]ports.Environment, len(w.envs))
	for i, env := range w.envs {
		result[i] = env
	}
	return result
}

// EnvironmentFromNameOrEnvVar resolves an environment by name, falling back
// to PAX_ENVIRONMENT and then the default environment.
func (w *Workspace) EnvironmentFromNameOrEnvVar(name string) (ports.Environment, error) {
	if name == "" {
		name = os.Getenv(EnvVarName)
	}
	if name == "" {
		name = DefaultEnvName
	}

	for _, env := range w.envs {
		if env.name == name {
			return env, nil
		}
	}
	return nil, zerr.With(domain.ErrEnvironmentNotFound, "environment", name)
}

// LockFile returns the current lock-file state. A missing lock file yields an
// empty digest.
func (w *Workspace) LockFile(_ context.Context) (*domain.LockFile, error) {
	path := filepath.Join(w.root, LockFileName)

	data, err := os.ReadFile(path) //nolint:gosec // workspace path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.LockFile{Path: path}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read lock file"), "path", path)
	}

	return &domain.LockFile{
		Path:   path,
		Digest: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}, nil
}

var _ ports.Environment = (*Environment)(nil)

// Environment is one named environment of the workspace.
type Environment struct {
	ws        *Workspace
	name      string
	isDefault bool
	platforms []domain.Platform
	tasks     map[domain.InternedString]domain.TaskSpec
}

func newEnvironment(
	ws *Workspace,
	name string,
	isDefault bool,
	platforms []string,
	baseTasks, overlayTasks map[string]TaskDTO,
) *Environment {
	env := &Environment{
		ws:        ws,
		name:      name,
		isDefault: isDefault,
		tasks:     make(map[domain.InternedString]domain.TaskSpec),
	}

	for _, p := range platforms {
		env.platforms = append(env.platforms, domain.Platform(p))
	}

	for name, dto := range baseTasks {
		env.tasks[domain.NewInternedString(name)] = specFromDTO(dto)
	}
	for name, dto := range overlayTasks {
		env.tasks[domain.NewInternedString(name)] = specFromDTO(dto)
	}

	return env
}

func specFromDTO(dto TaskDTO) domain.TaskSpec {
	spec := domain.TaskSpec{
		Cmd:         dto.Cmd,
		Inputs:      dto.Inputs,
		Cwd:         dto.Cwd,
		CleanEnv:    dto.CleanEnv,
		Description: dto.Description,
	}
	for _, dep := range dto.DependsOn {
		spec.DependsOn = append(spec.DependsOn, domain.NewInternedString(dep))
	}
	return spec
}

// Name returns the environment name.
func (e *Environment) Name() string {
	return e.name
}

// Root returns the workspace root.
func (e *Environment) Root() string {
	return e.ws.root
}

// IsDefault reports whether this is the default environment.
func (e *Environment) IsDefault() bool {
	return e.isDefault
}

// BestPlatform returns the current platform when the environment supports it.
// An environment without a platform list supports every platform.
func (e *Environment) BestPlatform() (domain.Platform, error) {
	current := domain.CurrentPlatform()
	if len(e.platforms) == 0 || slices.Contains(e.platforms, current) {
		return current, nil
	}
	return "", zerr.With(zerr.With(domain.ErrUnsupportedPlatform,
		"environment", e.name,
	), "platform", string(current))
}

// Tasks returns the tasks visible in this environment. The platform argument
// is accepted for interface symmetry; per-task platform overrides are not
// part of the manifest schema.
func (e *Environment) Tasks(_ domain.Platform) map[domain.InternedString]domain.TaskSpec {
	return e.tasks
}

// prefix is the installation prefix of this environment.
func (e *Environment) prefix() string {
	return filepath.Join(e.ws.root, ".pax", "envs", e.name)
}

// EnsurePrefix materializes the environment's installation prefix.
func (e *Environment) EnsurePrefix(_ context.Context, _ *domain.LockFile) error {
	if err := os.MkdirAll(filepath.Join(e.prefix(), "bin"), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create environment prefix"), "environment", e.name)
	}
	return nil
}

// allowListedEnvVars are the parent variables a clean environment inherits.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"PATH": {},
	"TERM": {},
	"USER": {},
}

// ActivationEnv computes the activation variables for this environment. The
// prefix bin directory is prepended to PATH.
func (e *Environment) ActivationEnv(_ context.Context, clean bool, _ *domain.LockFile) (map[string]string, error) {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if clean {
			if _, allowed := allowListedEnvVars[k]; !allowed {
				continue
			}
		}
		env[k] = v
	}

	binDir := filepath.Join(e.prefix(), "bin")
	if path, ok := env["PATH"]; ok && path != "" {
		env["PATH"] = binDir + string(os.PathListSeparator) + path
	} else {
		env["PATH"] = binDir
	}

	env[EnvVarName] = e.name
	env["PAX_PREFIX"] = e.prefix()

	return env, nil
}
