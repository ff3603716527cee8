package taskgraph

import (
	"errors"
	"strings"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

// Graph is a built task graph together with the environments its nodes are
// bound to.
type Graph struct {
	*domain.TaskGraph

	envs map[domain.InternedString]ports.Environment
}

// Environment returns the environment a node is bound to.
func (g *Graph) Environment(node *domain.TaskNode) ports.Environment {
	return g.envs[node.Environment]
}

// ExecutableTasks returns the graph's tasks in execution order.
func (g *Graph) ExecutableTasks() []*ExecutableTask {
	order := g.TopologicalOrder()
	tasks := make([]*ExecutableTask, 0, len(order))
	for _, id := range order {
		node := g.Node(id)
		tasks = append(tasks, &ExecutableTask{
			node:  node,
			env:   g.envs[node.Environment],
			graph: g,
		})
	}
	return tasks
}

// BuildOptions configure graph construction.
type BuildOptions struct {
	// Explicit is the explicitly requested environment, nil when the run
	// should search all environments.
	Explicit ports.Environment

	// SkipDeps suppresses dependency edges so only the requested task runs.
	SkipDeps bool
}

type builder struct {
	ws       ports.Workspace
	search   *Search
	opts     BuildOptions
	graph    *Graph
	resolved map[string]domain.TaskID
	visiting map[string]bool
}

// FromCmdArgs builds the task graph for a run invocation. The leading token
// is resolved as a task name; the remaining tokens become additional
// arguments. A leading token that matches no task turns the whole token list
// into an ad hoc command in the requested (or default) environment.
func FromCmdArgs(
	ws ports.Workspace,
	disambiguator ports.Disambiguator,
	tokens []string,
	opts BuildOptions,
) (*Graph, error) {
	b := &builder{
		ws:     ws,
		search: NewSearch(SearchEnvironments(ws, opts.Explicit), disambiguator),
		opts:   opts,
		graph: &Graph{
			TaskGraph: domain.NewTaskGraph(),
			envs:      make(map[domain.InternedString]ports.Environment),
		},
		resolved: make(map[string]domain.TaskID),
		visiting: make(map[string]bool),
	}

	name := domain.NewInternedString(tokens[0])
	candidate, err := b.search.FindTask(name, domain.InternedString{})
	switch {
	case errors.Is(err, domain.ErrUnknownTask):
		return b.graph, b.addCustom(tokens)
	case err != nil:
		return nil, err
	}

	id, err := b.addNamed(name, candidate)
	if err != nil {
		return nil, err
	}
	b.graph.Node(id).AdditionalArgs = tokens[1:]

	return b.graph, nil
}

// addCustom appends a single ad hoc node whose command is the joined token
// list, bound to the explicit or default environment.
func (b *builder) addCustom(tokens []string) error {
	env := b.opts.Explicit
	if env == nil {
		var err error
		env, err = b.ws.EnvironmentFromNameOrEnvVar("")
		if err != nil {
			return err
		}
	}

	envName := domain.NewInternedString(env.Name())
	b.graph.envs[envName] = env
	b.graph.Add(domain.TaskNode{
		Cmd:            tokens[0],
		AdditionalArgs: tokens[1:],
		Environment:    envName,
		Custom:         true,
	})
	return nil
}

// addNamed appends the node for a resolved task, resolving its dependencies
// first so edges always point at earlier nodes.
func (b *builder) addNamed(name domain.InternedString, candidate *ports.TaskCandidate) (domain.TaskID, error) {
	key := resolvedKey(candidate.Environment.Name(), name)
	if id, ok := b.resolved[key]; ok {
		return id, nil
	}
	if b.visiting[key] {
		return 0, zerr.With(domain.ErrCyclicDependency, "task", name.String())
	}
	b.visiting[key] = true
	defer delete(b.visiting, key)

	var deps []domain.TaskID
	if !b.opts.SkipDeps {
		for _, depName := range candidate.Spec.DependsOn {
			depCandidate, err := b.search.FindTask(depName, name)
			if err != nil {
				return 0, zerr.With(err, "depended_on_by", name.String())
			}
			depID, err := b.addNamed(depName, depCandidate)
			if err != nil {
				return 0, err
			}
			deps = append(deps, depID)
		}
	}

	envName := domain.NewInternedString(candidate.Environment.Name())
	b.graph.envs[envName] = candidate.Environment

	id := b.graph.Add(domain.TaskNode{
		Name:        name,
		Cmd:         candidate.Spec.Cmd,
		Environment: envName,
		DependsOn:   deps,
		Inputs:      candidate.Spec.Inputs,
		Cwd:         candidate.Spec.Cwd,
		CleanEnv:    candidate.Spec.CleanEnv,
		Description: candidate.Spec.Description,
	})
	b.resolved[key] = id
	return id, nil
}

func resolvedKey(envName string, task domain.InternedString) string {
	var b strings.Builder
	b.WriteString(envName)
	b.WriteByte('/')
	b.WriteString(task.String())
	return b.String()
}
