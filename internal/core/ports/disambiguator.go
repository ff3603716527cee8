package ports

import "go.trai.ch/pax/internal/core/domain"

// TaskCandidate is one (environment, task) pair a name resolved to.
type TaskCandidate struct {
	Environment Environment
	Spec        domain.TaskSpec
}

// AmbiguousTask describes a task name that matched tasks in more than one
// environment.
type AmbiguousTask struct {
	// TaskName is the name being resolved.
	TaskName domain.InternedString
	// DependedOnBy names the task whose dependency triggered the
	// resolution; zero for the directly requested task.
	DependedOnBy domain.InternedString
	// Candidates are the matching (environment, task) pairs.
	Candidates []TaskCandidate
}

// Disambiguator chooses between candidate environments for an ambiguous task
// name. Returning ok=false declines the choice and fails resolution. The
// interactive prompt implements this in the CLI; tests supply deterministic
// choosers.
type Disambiguator interface {
	Disambiguate(problem *AmbiguousTask) (choice int, ok bool)
}

// DisambiguateFunc adapts a function to the Disambiguator interface.
type DisambiguateFunc func(problem *AmbiguousTask) (int, bool)

// Disambiguate implements Disambiguator.
func (f DisambiguateFunc) Disambiguate(problem *AmbiguousTask) (int, bool) {
	return f(problem)
}
