package domain

import (
	"fmt"
	"strings"
)

// TaskGraph is a dependency DAG of environment-bound task nodes. Nodes are
// appended during construction; dependency edges always point at nodes that
// were inserted earlier, which the builder guarantees by resolving
// dependencies depth-first.
type TaskGraph struct {
	nodes []TaskNode
	order []TaskID
}

// NewTaskGraph creates an empty TaskGraph.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{}
}

// Add appends a node to the graph and returns its assigned ID.
func (g *TaskGraph) Add(node TaskNode) TaskID {
	node.ID = TaskID(len(g.nodes))
	g.nodes = append(g.nodes, node)
	g.order = nil
	return node.ID
}

// Node returns the node with the given ID.
func (g *TaskGraph) Node(id TaskID) *TaskNode {
	return &g.nodes[id]
}

// Len returns the number of nodes in the graph.
func (g *TaskGraph) Len() int {
	return len(g.nodes)
}

// TopologicalOrder returns the node IDs such that every dependency precedes
// its dependents. The order is deterministic for a fixed graph: the
// depth-first walk visits nodes in insertion order and dependency edges in
// declaration order, and the result is memoized so repeated calls observe the
// same permutation.
func (g *TaskGraph) TopologicalOrder() []TaskID {
	if g.order != nil {
		return g.order
	}

	visited := make([]bool, len(g.nodes))
	order := make([]TaskID, 0, len(g.nodes))

	var visit func(id TaskID)
	visit = func(id TaskID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.nodes[id].DependsOn {
			visit(dep)
		}
		order = append(order, id)
	}

	for id := range g.nodes {
		visit(TaskID(id))
	}

	g.order = order
	return g.order
}

// String renders the graph for diagnostic logging.
func (g *TaskGraph) String() string {
	var b strings.Builder
	b.WriteString("TaskGraph(")
	for i, node := range g.nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		name := node.Name.String()
		if name == "" {
			name = fmt.Sprintf("<custom #%d>", node.ID)
		}
		fmt.Fprintf(&b, "%s[%s]", name, node.Environment.String())
		if len(node.DependsOn) > 0 {
			fmt.Fprintf(&b, "->%v", node.DependsOn)
		}
	}
	b.WriteString(")")
	return b.String()
}
