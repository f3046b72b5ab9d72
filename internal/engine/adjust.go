package engine

import (
	"math"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// EffectiveEffort returns id's base effort shrunk multiplicatively by
// every completed incoming FACILITATES edge, rounded to the nearest
// integer. Completed nodes cost nothing.
func (e *Engine) EffectiveEffort(id string) int {
	n := e.nodes[id]
	if n == nil || e.completed[id] {
		return 0
	}
	effort := float64(n.Effort())
	if effort == 0 {
		return 0
	}
	for _, edge := range e.incomingByType(id, strategy.Facilitates) {
		if e.completed[edge.Source] {
			effort *= 1 - edge.ReductionFactor()
		}
	}
	return int(math.Round(effort))
}

// AdjustedUncertainty returns id's base uncertainty shrunk by every
// completed incoming INFORMS edge.
func (e *Engine) AdjustedUncertainty(id string) float64 {
	n := e.nodes[id]
	if n == nil {
		return 0
	}
	u := n.Uncertainty()
	if u == 0 {
		return 0
	}
	for _, edge := range e.incomingByType(id, strategy.Informs) {
		if e.completed[edge.Source] {
			u *= 1 - edge.ReductionFactor()
		}
	}
	return u
}

// AdjustedEffort inflates effective effort by remaining uncertainty.
func (e *Engine) AdjustedEffort(id string) float64 {
	return float64(e.EffectiveEffort(id)) * (1 + e.AdjustedUncertainty(id))
}

// AdjustedRisk returns id's base risk shrunk by every completed
// incoming DERISKS edge (the edge source is the derisker).
func (e *Engine) AdjustedRisk(id string) float64 {
	n := e.nodes[id]
	if n == nil {
		return 0
	}
	risk := n.Risk()
	if risk == 0 {
		return 0
	}
	for _, edge := range e.incomingByType(id, strategy.Derisks) {
		if e.completed[edge.Source] {
			risk *= 1 - edge.ReductionFactor()
		}
	}
	return risk
}

// SafetyFactor is the complement of adjusted risk.
func (e *Engine) SafetyFactor(id string) float64 {
	return 1 - e.AdjustedRisk(id)
}

// RiskMitigationValue measures how much risk-weighted effort completing
// id would defuse: the sum over id's outgoing DERISKS edges of
// factor x effectiveEffort(target) x adjustedRisk(target). Targets that
// are already completed contribute nothing, and a completed derisker
// has no remaining value.
func (e *Engine) RiskMitigationValue(id string) float64 {
	if e.nodes[id] == nil || e.completed[id] {
		return 0
	}
	value := 0.0
	for _, edge := range e.outgoingByType(id, strategy.Derisks) {
		if e.completed[edge.Target] {
			continue
		}
		value += edge.ReductionFactor() * float64(e.EffectiveEffort(edge.Target)) * e.AdjustedRisk(edge.Target)
	}
	return value
}

// TotalEffort sums the remaining effort across id's subtree: solutions
// contribute their effective effort, groupings the sum over their
// children. A completed node contributes 0 and cuts off everything
// below it. The walk is iterative so deep hierarchies cannot exhaust
// the stack.
func (e *Engine) TotalEffort(id string) int {
	if e.nodes[id] == nil {
		return 0
	}
	total := 0
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.completed[cur] {
			continue
		}
		if e.nodes[cur].Type == strategy.TypeSolution {
			total += e.EffectiveEffort(cur)
			continue
		}
		stack = append(stack, e.children[cur]...)
	}
	return total
}

// DownstreamEffort sums the total effort of every node that directly or
// transitively depends on id, each counted once.
func (e *Engine) DownstreamEffort(id string) int {
	if e.nodes[id] == nil {
		return 0
	}
	visited := map[string]bool{id: true}
	queue := e.Dependents(id)
	total := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		total += e.TotalEffort(cur)
		queue = append(queue, e.Dependents(cur)...)
	}
	return total
}
