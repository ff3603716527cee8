package workspace

import "gopkg.in/yaml.v3"

// Manifest represents the structure of the pax.yaml workspace manifest.
type Manifest struct {
	Name         string                    `yaml:"name"`
	Platforms    []string                  `yaml:"platforms"`
	Tasks        map[string]TaskDTO        `yaml:"tasks"`
	Environments map[string]EnvironmentDTO `yaml:"environments"`
}

// EnvironmentDTO represents a named environment in the manifest. Its tasks
// are layered over the workspace-level tasks.
type EnvironmentDTO struct {
	Platforms []string           `yaml:"platforms"`
	Tasks     map[string]TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition. A task may be written as a plain
// command string or as a full mapping; an entry without a cmd is an alias.
type TaskDTO struct {
	Cmd         string   `yaml:"cmd"`
	DependsOn   []string `yaml:"depends-on"`
	Inputs      []string `yaml:"inputs"`
	Cwd         string   `yaml:"cwd"`
	CleanEnv    bool     `yaml:"clean-env"`
	Description string   `yaml:"description"`
}

// UnmarshalYAML accepts both the scalar shorthand and the mapping form.
func (t *TaskDTO) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&t.Cmd)
	}

	type plain TaskDTO
	return value.Decode((*plain)(t))
}
