package engine

import (
	"testing"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

func TestRollout_WavesFollowDependencies(t *testing.T) {
	// c -> b -> a, with d free alongside a.
	e := build(t, []*strategy.Node{
		solution("a", "", 2),
		solution("b", "", 3),
		solution("c", "", 4),
		solution("d", "", 1),
	}, []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
		edge("e2", "c", "b", strategy.DependsOn, 0),
	})

	res := e.Rollout()
	if len(res.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %+v", res.Waves)
	}
	if w := res.Waves[0]; len(w.Nodes) != 2 || w.Nodes[0] != "a" || w.Nodes[1] != "d" {
		t.Errorf("wave 0: expected [a d], got %v", w.Nodes)
	}
	if w := res.Waves[1]; len(w.Nodes) != 1 || w.Nodes[0] != "b" {
		t.Errorf("wave 1: expected [b], got %v", w.Nodes)
	}
	if w := res.Waves[2]; len(w.Nodes) != 1 || w.Nodes[0] != "c" {
		t.Errorf("wave 2: expected [c], got %v", w.Nodes)
	}
	if res.TotalEffort != 10 {
		t.Errorf("expected total effort 10, got %d", res.TotalEffort)
	}
	if len(res.Stuck) != 0 {
		t.Errorf("nothing should be stuck, got %v", res.Stuck)
	}
}

func TestRollout_FacilitationDiscountsLaterWaves(t *testing.T) {
	// b waits on a, and a facilitates b: by the time b's wave starts,
	// its effort is discounted.
	e := build(t, []*strategy.Node{
		solution("a", "", 2),
		solution("b", "", 8),
	}, []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
		edge("e2", "a", "b", strategy.Facilitates, 0.5),
	})

	res := e.Rollout()
	if len(res.Waves) != 2 {
		t.Fatalf("expected 2 waves, got %+v", res.Waves)
	}
	if res.Waves[0].Effort != 2 {
		t.Errorf("wave 0: expected effort 2, got %d", res.Waves[0].Effort)
	}
	if res.Waves[1].Effort != 4 {
		t.Errorf("wave 1: expected discounted effort 4, got %d", res.Waves[1].Effort)
	}
}

func TestRollout_CycleLeavesWorkStuck(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("a", "", 1),
		solution("b", "", 1),
		solution("c", "", 1),
	}, []*strategy.Edge{
		edge("e1", "a", "b", strategy.DependsOn, 0),
		edge("e2", "b", "a", strategy.DependsOn, 0),
	})

	res := e.Rollout()
	if len(res.Waves) != 1 || res.Waves[0].Nodes[0] != "c" {
		t.Fatalf("only c can complete, got %+v", res.Waves)
	}
	if len(res.Stuck) != 2 {
		t.Errorf("expected a and b stuck, got %v", res.Stuck)
	}
}

func TestRollout_EngineUntouched(t *testing.T) {
	e := build(t, []*strategy.Node{
		solution("a", "", 2),
		solution("b", "", 3),
	}, []*strategy.Edge{
		edge("e1", "b", "a", strategy.DependsOn, 0),
	})

	_ = e.Rollout()
	if len(e.CompletedIDs()) != 0 {
		t.Errorf("rollout must run on a clone, completed=%v", e.CompletedIDs())
	}
	if e.Status("a") != strategy.StatusBacklog {
		t.Errorf("status leaked from the projection: %q", e.Status("a"))
	}
}
