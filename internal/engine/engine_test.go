package engine

import (
	"testing"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// node builds a hierarchy node for tests.
func node(id string, t strategy.NodeType, parent string) *strategy.Node {
	return &strategy.Node{ID: id, Type: t, Title: "Node " + id, ParentID: parent, Status: strategy.StatusBacklog}
}

// solution builds a solution node with the given base effort.
func solution(id, parent string, effort int) *strategy.Node {
	n := node(id, strategy.TypeSolution, parent)
	n.BaseEffort = effort
	return n
}

// edge builds a typed edge; factor is ignored by types that carry none.
func edge(id, source, target string, t strategy.EdgeType, factor float64) *strategy.Edge {
	return &strategy.Edge{ID: id, Source: source, Target: target, Type: t, Factor: factor}
}

// build constructs an engine over the given nodes and edges with
// default options.
func build(t *testing.T, nodes []*strategy.Node, edges []*strategy.Edge) *Engine {
	t.Helper()
	return New(&strategy.Document{Nodes: nodes, Edges: edges}, Options{})
}

func TestNew_SeedsCompletedFromStatus(t *testing.T) {
	done := solution("s1", "", 5)
	done.Status = strategy.StatusDone
	e := build(t, []*strategy.Node{
		node("p1", strategy.TypePillar, ""),
		done,
		solution("s2", "p1", 3),
	}, nil)

	if !e.IsCompleted("s1") {
		t.Error("s1 arrived with status done, expected completed")
	}
	if e.IsCompleted("s2") {
		t.Error("s2 is backlog, expected not completed")
	}
	if got := e.CompletedIDs(); len(got) != 1 || got[0] != "s1" {
		t.Errorf("expected completed=[s1], got %v", got)
	}
}

func TestNew_SkipsEdgesWithUnknownEndpoints(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("s1", "", 1),
	}, []*strategy.Edge{
		edge("e1", "s1", "ghost", strategy.DependsOn, 0),
		edge("e2", "ghost", "s1", strategy.DependsOn, 0),
	})

	if got := len(e.Edges()); got != 0 {
		t.Errorf("expected 0 indexed edges, got %d", got)
	}
	if !e.IsReady("s1") {
		t.Error("s1 has no usable dependencies, expected ready")
	}
}

func TestDescendants_PreOrder(t *testing.T) {
	// p1
	// ├── i1
	// │   ├── s1
	// │   └── s2
	// └── i2
	//     └── s3
	e := build(t, []*strategy.Node{
		node("p1", strategy.TypePillar, ""),
		node("i1", strategy.TypeInitiative, "p1"),
		node("i2", strategy.TypeInitiative, "p1"),
		solution("s1", "i1", 1),
		solution("s2", "i1", 1),
		solution("s3", "i2", 1),
	}, nil)

	want := []string{"i1", "s1", "s2", "i2", "s3"}
	got := e.Descendants("p1")
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if got := e.Descendants("s1"); len(got) != 0 {
		t.Errorf("leaf should have empty descendants, got %v", got)
	}
	if got := e.Descendants("i2"); len(got) != 1 || got[0] != "s3" {
		t.Errorf("expected i2 descendants=[s3], got %v", got)
	}
}

func TestNew_AdoptsCachedDescendants(t *testing.T) {
	nodes := []*strategy.Node{
		node("p1", strategy.TypePillar, ""),
		solution("s1", "p1", 1),
	}
	// A deliberately wrong but well-formed index: the engine trusts it.
	cached := map[string][]string{"p1": {}, "s1": {}}
	e := New(&strategy.Document{Nodes: nodes}, Options{Descendants: cached})

	if got := e.Descendants("p1"); len(got) != 0 {
		t.Errorf("cached index says p1 has no descendants, got %v", got)
	}
}

func TestNew_RejectsCacheWithUnknownIDs(t *testing.T) {
	nodes := []*strategy.Node{
		node("p1", strategy.TypePillar, ""),
		solution("s1", "p1", 1),
	}
	// Index from some other document: mentions a node we do not have.
	cached := map[string][]string{"p1": {"stranger"}}
	e := New(&strategy.Document{Nodes: nodes}, Options{Descendants: cached})

	if got := e.Descendants("p1"); len(got) != 1 || got[0] != "s1" {
		t.Errorf("expected rebuilt index [s1], got %v", got)
	}
}

func TestAncestors_WalksToRoot(t *testing.T) {
	e := build(t, []*strategy.Node{
		node("p1", strategy.TypePillar, ""),
		node("i1", strategy.TypeInitiative, "p1"),
		node("q1", strategy.TypeProblem, "i1"),
		solution("s1", "q1", 1),
	}, nil)

	got := e.Ancestors("s1")
	want := []string{"q1", "i1", "p1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if got := e.AncestorAtType("s1", strategy.TypeInitiative); got != "i1" {
		t.Errorf("expected initiative ancestor i1, got %q", got)
	}
	// A node of the wanted type is its own ancestor-at-type.
	if got := e.AncestorAtType("i1", strategy.TypeInitiative); got != "i1" {
		t.Errorf("expected i1 itself, got %q", got)
	}
	if got := e.AncestorAtType("p1", strategy.TypeProblem); got != "" {
		t.Errorf("expected no problem ancestor above p1, got %q", got)
	}
}

func TestClone_IndependentCompletionState(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("s1", "", 5),
		solution("s2", "", 3),
	}, []*strategy.Edge{
		edge("e1", "s2", "s1", strategy.DependsOn, 0),
	})

	sim := e.Clone()
	if _, err := sim.MarkCompleted("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sim.IsCompleted("s1") {
		t.Error("clone should see its own completion")
	}
	if e.IsCompleted("s1") {
		t.Error("original engine must not see the clone's completion")
	}
	if !sim.IsReady("s2") || e.IsReady("s2") {
		t.Error("readiness must diverge between clone and original")
	}
}

func TestDependents_DistinctAndSorted(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "c", "a", strategy.DependsOn, 0),
		edge("e2", "b", "a", strategy.DependsOn, 0),
		edge("e3", "b", "a", strategy.DependsOn, 0), // duplicate relation
	})

	got := e.Dependents("a")
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("expected [b c], got %v", got)
	}
}
