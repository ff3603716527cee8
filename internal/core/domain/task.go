// Package domain contains the core domain models for the task graph and the
// watch engine.
package domain

import "strings"

// TaskID identifies a node within a TaskGraph. IDs are dense indexes assigned
// in insertion order.
type TaskID int

// TaskSpec is the manifest-level definition of a task, before it is bound to
// an environment. A spec with an empty Cmd is an alias: it only carries
// dependency edges and is never executed itself.
type TaskSpec struct {
	Cmd         string
	DependsOn   []InternedString
	Inputs      []string
	Cwd         string
	CleanEnv    bool
	Description string
}

// IsAlias reports whether the spec has no command of its own.
func (s TaskSpec) IsAlias() bool {
	return strings.TrimSpace(s.Cmd) == ""
}

// TaskNode is one node of a TaskGraph: a TaskSpec bound to an environment,
// with dependency edges resolved to node IDs.
type TaskNode struct {
	ID   TaskID
	Name InternedString // zero for ad hoc literal commands

	Cmd            string
	AdditionalArgs []string

	Environment InternedString
	DependsOn   []TaskID

	Inputs      []string
	Cwd         string
	CleanEnv    bool
	Description string

	// Custom marks a literal ad hoc command assembled from the CLI tokens
	// rather than a named manifest task.
	Custom bool
}

// IsExecutable reports whether the node carries a command. Alias-only nodes
// exist purely for their dependency edges.
func (t *TaskNode) IsExecutable() bool {
	return strings.TrimSpace(t.Cmd) != ""
}

// FullCommand renders the command text with any additional CLI arguments
// appended, quoting arguments that contain whitespace.
func (t *TaskNode) FullCommand() string {
	cmd := t.Cmd
	for _, arg := range t.AdditionalArgs {
		cmd += " " + quoteArg(arg)
	}
	return cmd
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\"'") {
		return "\"" + strings.ReplaceAll(arg, "\"", "\\\"") + "\""
	}
	return arg
}
