package engine

import (
	"testing"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

func TestInfluenceScores_EmptyGraph(t *testing.T) {
	e := build(t, nil, nil)
	if got := e.InfluenceScores(); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestInfluenceScores_MaxIsExactlyOne(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "a", "b", strategy.DependsOn, 0),
		edge("e2", "b", "c", strategy.DependsOn, 0),
	})

	scores := e.InfluenceScores()
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max != 1.0 {
		t.Errorf("expected max exactly 1.0, got %v", max)
	}
	for id, s := range scores {
		if s <= 0 || s > 1 {
			t.Errorf("score(%s)=%v outside (0,1]", id, s)
		}
	}
}

func TestInfluenceScores_AccumulatesAlongDependencyChains(t *testing.T) {
	// a -> b -> c: score flows from dependency to dependent, so the
	// chain's end consumer accumulates the most.
	e := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "a", "b", strategy.DependsOn, 0),
		edge("e2", "b", "c", strategy.DependsOn, 0),
	})

	scores := e.InfluenceScores()
	if !(scores["a"] > scores["b"] && scores["b"] > scores["c"]) {
		t.Errorf("expected a > b > c, got %v", scores)
	}
	if scores["a"] != 1.0 {
		t.Errorf("chain head should normalize to 1.0, got %v", scores["a"])
	}
}

func TestInfluenceScores_SharedDependencySplitsContribution(t *testing.T) {
	// b and c both depend on a: a's score is shared between them, so
	// each earns less than a dependent with exclusive access would.
	shared := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
		edge("e2", "c", "a", strategy.DependsOn, 0),
	})
	exclusive := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
	})

	s1 := shared.InfluenceScores()
	s2 := exclusive.InfluenceScores()
	if s1["b"] != s1["c"] {
		t.Errorf("symmetric dependents must score equally, got %v", s1)
	}
	// Pre-normalization b earns half of a's score in the shared graph;
	// with both graphs normalized on b this shows as equal 1.0 tops, so
	// compare b against a instead.
	if !(s1["b"] >= s1["a"]) {
		t.Errorf("dependents accumulate at least the base share, got %v", s1)
	}
	if s2["c"] >= s2["b"] {
		t.Errorf("c has no dependency in the exclusive graph, got %v", s2)
	}
}

func TestInfluenceScores_Deterministic(t *testing.T) {
	nodes := []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
		solution("d", "", 1),
	}
	edges := []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
		edge("e2", "c", "a", strategy.DependsOn, 0),
		edge("e3", "d", "c", strategy.DependsOn, 0),
		edge("e4", "a", "d", strategy.Facilitates, 0.2),
	}

	first := build(t, nodes, edges).InfluenceScores()
	second := build(t, nodes, edges).InfluenceScores()
	for id, s := range first {
		if second[id] != s {
			t.Errorf("score(%s) differs across runs: %v vs %v", id, s, second[id])
		}
	}
}
