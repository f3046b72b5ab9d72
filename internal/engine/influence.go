package engine

import (
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// InfluenceScores ranks every node by how much completing it enables.
// It runs a fixed number of damped power-iteration rounds (PageRank
// over the "enables" relation): completing a dependency enables its
// dependents, and completing a facilitator enables its targets. A
// node's score flows to its dependents in equal shares over its enables
// out-degree; there is no convergence test. After the final round the
// scores are divided by the maximum so the top node is exactly 1.0. An
// empty graph yields an empty map.
func (e *Engine) InfluenceScores() map[string]float64 {
	n := len(e.ids)
	if n == 0 {
		return map[string]float64{}
	}

	// enables out-degree: edges this node's completion would energize.
	outDeg := make(map[string]int, n)
	for _, id := range e.ids {
		outDeg[id] = len(e.incomingByType(id, strategy.DependsOn)) +
			len(e.outgoingByType(id, strategy.Facilitates))
	}

	scores := make(map[string]float64, n)
	next := make(map[string]float64, n)
	seed := 1.0 / float64(n)
	for _, id := range e.ids {
		scores[id] = seed
	}

	base := (1 - e.damping) / float64(n)
	for round := 0; round < e.iterations; round++ {
		for _, id := range e.ids {
			sum := 0.0
			for _, edge := range e.outgoingByType(id, strategy.DependsOn) {
				deg := outDeg[edge.Target]
				if deg < 1 {
					deg = 1
				}
				sum += scores[edge.Target] / float64(deg)
			}
			next[id] = base + e.damping*sum
		}
		scores, next = next, scores
	}

	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for id := range scores {
			scores[id] /= max
		}
	}
	return scores
}
