package engine

import (
	"math"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Weights control the share of each term in the composite priority
// score. They are not required to sum to any constant. A zero field
// falls back to its default, so the zero value means "use defaults".
type Weights struct {
	Readiness           float64 `json:"readiness" mapstructure:"readiness"`
	Influence           float64 `json:"influence" mapstructure:"influence"`
	Leverage            float64 `json:"leverage" mapstructure:"leverage"`
	Safety              float64 `json:"safety" mapstructure:"safety"`
	Blocking            float64 `json:"blocking" mapstructure:"blocking"`
	RiskMitigationBonus float64 `json:"riskMitigationBonus" mapstructure:"risk_mitigation_bonus"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Readiness:           0.30,
		Influence:           0.15,
		Leverage:            0.20,
		Safety:              0.15,
		Blocking:            0.20,
		RiskMitigationBonus: 0.50,
	}
}

func (w Weights) applyDefaults() Weights {
	d := DefaultWeights()
	if w.Readiness == 0 {
		w.Readiness = d.Readiness
	}
	if w.Influence == 0 {
		w.Influence = d.Influence
	}
	if w.Leverage == 0 {
		w.Leverage = d.Leverage
	}
	if w.Safety == 0 {
		w.Safety = d.Safety
	}
	if w.Blocking == 0 {
		w.Blocking = d.Blocking
	}
	if w.RiskMitigationBonus == 0 {
		w.RiskMitigationBonus = d.RiskMitigationBonus
	}
	return w
}

// Readiness scores how unblocked a node is: 1 with no dependencies (or
// all of them met), shrinking toward 0 as unmet dependencies pile up,
// and exactly 0 once the node itself is completed.
func (e *Engine) Readiness(id string) float64 {
	if e.nodes[id] == nil || e.completed[id] {
		return 0
	}
	deps := e.ResolveDependencies(id)
	if len(deps) == 0 {
		return 1
	}
	unmet := 0
	for _, dep := range deps {
		if !e.completed[dep.Target] {
			unmet++
		}
	}
	return 1 / float64(unmet+1)
}

// WeightedBlocking measures how much of the graph waits behind id: each
// incomplete direct dependent counts itself plus its whole subtree.
func (e *Engine) WeightedBlocking(id string) int {
	total := 0
	for _, dependent := range e.Dependents(id) {
		if e.completed[dependent] {
			continue
		}
		total += 1 + len(e.descendants[dependent])
	}
	return total
}

// Leverage is the downstream effort a node unlocks per unit of its own
// effort. Zero-effort nodes have zero leverage.
func (e *Engine) Leverage(id string) float64 {
	own := e.ownEffort(id)
	if own == 0 {
		return 0
	}
	return float64(e.DownstreamEffort(id)) / float64(own)
}

// ownEffort is the node's own remaining cost: effective effort for
// solutions, subtree total for groupings.
func (e *Engine) ownEffort(id string) int {
	n := e.nodes[id]
	if n == nil {
		return 0
	}
	if n.Type == strategy.TypeSolution {
		return e.EffectiveEffort(id)
	}
	return e.TotalEffort(id)
}

// PriorityScore combines readiness, influence, log-damped leverage,
// safety and log-damped blocking pressure into one additive score, plus
// a risk-mitigation bonus proportional to mitigation value per unit of
// effort. Prefer PriorityScores when ranking many nodes; this variant
// reruns influence propagation on every call.
func (e *Engine) PriorityScore(id string, w Weights) float64 {
	if e.nodes[id] == nil {
		return 0
	}
	return e.priorityWith(id, w.applyDefaults(), e.InfluenceScores()[id])
}

// PriorityScores computes the composite score for every node, sharing
// one influence propagation across the batch.
func (e *Engine) PriorityScores(w Weights) map[string]float64 {
	w = w.applyDefaults()
	influence := e.InfluenceScores()
	out := make(map[string]float64, len(e.ids))
	for _, id := range e.ids {
		out[id] = e.priorityWith(id, w, influence[id])
	}
	return out
}

func (e *Engine) priorityWith(id string, w Weights, influence float64) float64 {
	leverageNorm := math.Min(1, math.Log(1+e.Leverage(id))/math.Log(11))
	blockingNorm := math.Min(1, math.Log(1+float64(e.WeightedBlocking(id)))/math.Log(51))

	score := w.Readiness*e.Readiness(id) +
		w.Influence*influence +
		w.Leverage*leverageNorm +
		w.Safety*e.SafetyFactor(id) +
		w.Blocking*blockingNorm

	if own := e.ownEffort(id); own > 0 {
		score += e.RiskMitigationValue(id) / float64(own) * w.RiskMitigationBonus
	}
	return score
}
