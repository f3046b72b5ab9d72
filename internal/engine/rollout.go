package engine

import (
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// RolloutWave is one step of a completion projection: the solutions
// that could finish together and their combined effective effort at the
// moment the wave starts.
type RolloutWave struct {
	Index  int      `json:"index"`
	Nodes  []string `json:"nodes"`
	Effort int      `json:"effort"`
}

// RolloutResult is a full completion projection. Stuck lists solutions
// that never became ready, typically because they sit in a dependency
// cycle or wait on a grouping node nothing marks complete.
type RolloutResult struct {
	Waves       []RolloutWave `json:"waves"`
	Stuck       []string      `json:"stuck,omitempty"`
	TotalEffort int           `json:"totalEffort"`
}

// Rollout projects the order in which the remaining solution work could
// complete if every ready solution finished together, wave by wave. The
// projection runs on a clone; the engine itself never changes. Grouping
// nodes are not auto-completed (completion never cascades), so
// dependencies on them can legitimately leave work stuck.
func (e *Engine) Rollout() RolloutResult {
	sim := e.Clone()
	var res RolloutResult

	for {
		var wave RolloutWave
		for _, id := range sim.ids {
			if sim.nodes[id].Type != strategy.TypeSolution || sim.completed[id] {
				continue
			}
			if sim.IsReady(id) {
				wave.Nodes = append(wave.Nodes, id)
			}
		}
		if len(wave.Nodes) == 0 {
			break
		}
		// Price the wave before any member completes: finishing one
		// member must not discount its peers in the same wave.
		for _, id := range wave.Nodes {
			wave.Effort += sim.EffectiveEffort(id)
		}
		for _, id := range wave.Nodes {
			sim.completed[id] = true
			sim.status[id] = strategy.StatusDone
		}
		wave.Index = len(res.Waves)
		res.Waves = append(res.Waves, wave)
		res.TotalEffort += wave.Effort
	}

	for _, id := range sim.ids {
		if sim.nodes[id].Type == strategy.TypeSolution && !sim.completed[id] {
			res.Stuck = append(res.Stuck, id)
		}
	}
	return res
}
