package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pax/internal/core/domain"
)

func buildDiamond(t *testing.T) (*domain.TaskGraph, map[string]domain.TaskID) {
	t.Helper()

	// build depends on compile and lint, both depend on fetch.
	g := domain.NewTaskGraph()
	ids := make(map[string]domain.TaskID)

	ids["fetch"] = g.Add(domain.TaskNode{Name: domain.NewInternedString("fetch"), Cmd: "fetch"})
	ids["compile"] = g.Add(domain.TaskNode{
		Name:      domain.NewInternedString("compile"),
		Cmd:       "compile",
		DependsOn: []domain.TaskID{ids["fetch"]},
	})
	ids["lint"] = g.Add(domain.TaskNode{
		Name:      domain.NewInternedString("lint"),
		Cmd:       "lint",
		DependsOn: []domain.TaskID{ids["fetch"]},
	})
	ids["build"] = g.Add(domain.TaskNode{
		Name:      domain.NewInternedString("build"),
		Cmd:       "build",
		DependsOn: []domain.TaskID{ids["compile"], ids["lint"]},
	})
	return g, ids
}

func TestTaskGraph_TopologicalOrderRespectsEdges(t *testing.T) {
	g, _ := buildDiamond(t)

	order := g.TopologicalOrder()
	require.Len(t, order, g.Len())

	position := make(map[domain.TaskID]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	for i := 0; i < g.Len(); i++ {
		node := g.Node(domain.TaskID(i))
		for _, dep := range node.DependsOn {
			assert.Less(t, position[dep], position[node.ID],
				"dependency %d must precede %d", dep, node.ID)
		}
	}
}

func TestTaskGraph_TopologicalOrderIsStable(t *testing.T) {
	g, _ := buildDiamond(t)

	first := g.TopologicalOrder()
	second := g.TopologicalOrder()
	assert.Equal(t, first, second)
}

func TestTaskGraph_AddInvalidatesOrder(t *testing.T) {
	g, ids := buildDiamond(t)
	before := len(g.TopologicalOrder())

	g.Add(domain.TaskNode{
		Name:      domain.NewInternedString("test"),
		Cmd:       "test",
		DependsOn: []domain.TaskID{ids["build"]},
	})
	assert.Len(t, g.TopologicalOrder(), before+1)
}

func TestTaskNode_FullCommand(t *testing.T) {
	node := domain.TaskNode{
		Cmd:            "pytest",
		AdditionalArgs: []string{"-k", "smoke test", `say "hi"`},
	}
	assert.Equal(t, `pytest -k "smoke test" "say \"hi\""`, node.FullCommand())
}

func TestTaskSpec_IsAlias(t *testing.T) {
	assert.True(t, domain.TaskSpec{}.IsAlias())
	assert.True(t, domain.TaskSpec{Cmd: "  "}.IsAlias())
	assert.False(t, domain.TaskSpec{Cmd: "make"}.IsAlias())
}

func TestStopToken_CancelIsIdempotent(t *testing.T) {
	token := domain.NewStopToken()
	require.False(t, token.Cancelled())

	token.Cancel()
	token.Cancel()
	assert.True(t, token.Cancelled())

	select {
	case <-token.Done():
	default:
		t.Fatal("done channel must be closed after cancel")
	}
}
