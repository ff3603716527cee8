// Package taskgraph builds the environment-bound dependency graph for a run
// and wraps it with the execution-facing task view.
package taskgraph

import (
	"sort"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

// Search resolves task names to (environment, spec) candidates across a fixed
// set of candidate environments.
type Search struct {
	environments  []ports.Environment
	disambiguator ports.Disambiguator
}

// NewSearch creates a Search over the given candidate environments. An
// explicitly requested environment narrows the candidates to one; otherwise
// every workspace environment is a candidate.
func NewSearch(environments []ports.Environment, disambiguator ports.Disambiguator) *Search {
	return &Search{
		environments:  environments,
		disambiguator: disambiguator,
	}
}

// SearchEnvironments determines the candidate environments for a run: the
// explicit environment alone when one was requested, all workspace
// environments otherwise.
func SearchEnvironments(ws ports.Workspace, explicit ports.Environment) []ports.Environment {
	if explicit != nil {
		return []ports.Environment{explicit}
	}
	return ws.Environments()
}

// FindTask resolves a task name across the candidate environments.
// dependedOnBy names the task whose dependency edge triggered the lookup and
// is zero for the directly requested task.
func (s *Search) FindTask(name, dependedOnBy domain.InternedString) (*ports.TaskCandidate, error) {
	var candidates []ports.TaskCandidate
	var platformErr error
	for _, env := range s.environments {
		platform, err := env.BestPlatform()
		if err != nil {
			// An unsupported environment is not a candidate. The error only
			// surfaces when no other environment defines the task.
			platformErr = err
			continue
		}
		if spec, ok := env.Tasks(platform)[name]; ok {
			candidates = append(candidates, ports.TaskCandidate{
				Environment: env,
				Spec:        spec,
			})
		}
	}

	switch len(candidates) {
	case 0:
		if platformErr != nil {
			return nil, platformErr
		}
		return nil, zerr.With(domain.ErrUnknownTask, "task", name.String())
	case 1:
		return &candidates[0], nil
	}

	// The default environment's task is shadowed by a single non-default
	// match, since every named environment already layers the defaults.
	if filtered := withoutDefault(candidates); len(filtered) == 1 {
		return &filtered[0], nil
	}

	problem := &ports.AmbiguousTask{
		TaskName:     name,
		DependedOnBy: dependedOnBy,
		Candidates:   candidates,
	}
	if choice, ok := s.disambiguator.Disambiguate(problem); ok && choice >= 0 && choice < len(candidates) {
		return &candidates[choice], nil
	}

	return nil, zerr.With(zerr.With(domain.ErrAmbiguousTask,
		"task", name.String(),
	), "environments", environmentNames(candidates))
}

func withoutDefault(candidates []ports.TaskCandidate) []ports.TaskCandidate {
	var result []ports.TaskCandidate
	for _, c := range candidates {
		if !c.Environment.IsDefault() {
			result = append(result, c)
		}
	}
	return result
}

func environmentNames(candidates []ports.TaskCandidate) []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Environment.Name())
	}
	sort.Strings(names)
	return names
}
