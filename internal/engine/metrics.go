package engine

import (
	"fmt"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// NodeMetrics is the full per-node query bundle handed to callers.
// CrossCutting is populated for hierarchical nodes only.
type NodeMetrics struct {
	ID        string            `json:"id"`
	Type      strategy.NodeType `json:"type"`
	Title     string            `json:"title"`
	Status    strategy.Status   `json:"status"`
	Completed bool              `json:"completed"`

	InDegree        int `json:"inDegree"`
	OutDegree       int `json:"outDegree"`
	DependencyCount int `json:"dependencyCount"`

	EffectiveEffort  int     `json:"effectiveEffort"`
	TotalEffort      int     `json:"totalEffort"`
	AdjustedEffort   float64 `json:"adjustedEffort"`
	DownstreamEffort int     `json:"downstreamEffort"`

	BaseRisk            float64 `json:"baseRisk"`
	AdjustedRisk        float64 `json:"adjustedRisk"`
	AdjustedUncertainty float64 `json:"adjustedUncertainty"`
	RiskMitigation      float64 `json:"riskMitigation"`
	SafetyFactor        float64 `json:"safetyFactor"`

	Readiness        float64 `json:"readiness"`
	Ready            bool    `json:"ready"`
	Leverage         float64 `json:"leverage"`
	WeightedBlocking int     `json:"weightedBlocking"`
	Influence        float64 `json:"influence"`
	Priority         float64 `json:"priority"`
	Level            int     `json:"level"`

	CrossCutting []DerivedEdge `json:"crossCutting,omitempty"`
}

// NodeMetrics assembles the full bundle for one node. Unknown ids fail
// with ErrNodeNotFound. When querying many nodes, AllMetrics shares the
// whole-graph passes and is much cheaper.
func (e *Engine) NodeMetrics(id string, w Weights) (*NodeMetrics, error) {
	if e.nodes[id] == nil {
		return nil, fmt.Errorf("metrics for %q: %w", id, ErrNodeNotFound)
	}
	m := e.assembleMetrics(id, w.applyDefaults(), e.InfluenceScores(), e.TopologicalLevels())
	m.CrossCutting = e.CrossCuttingEdges(id)
	return m, nil
}

// AllMetrics assembles the bundle for every node, ascending by id,
// computing influence, levels and derived edges once for the batch.
func (e *Engine) AllMetrics(w Weights) []*NodeMetrics {
	w = w.applyDefaults()
	influence := e.InfluenceScores()
	levels := e.TopologicalLevels()

	// One derived-edge pass per hierarchy level present in the graph.
	derived := make(map[strategy.NodeType][]DerivedEdge)
	for _, id := range e.ids {
		if t := e.nodes[id].Type; t.Hierarchical() {
			if _, done := derived[t]; !done {
				derived[t] = e.DeriveEdges(t)
			}
		}
	}

	out := make([]*NodeMetrics, 0, len(e.ids))
	for _, id := range e.ids {
		m := e.assembleMetrics(id, w, influence, levels)
		if n := e.nodes[id]; n.Hierarchical() {
			m.CrossCutting = filterDerived(derived[n.Type], id)
		}
		out = append(out, m)
	}
	return out
}

func (e *Engine) assembleMetrics(id string, w Weights, influence map[string]float64, levels map[string]int) *NodeMetrics {
	n := e.nodes[id]
	m := &NodeMetrics{
		ID:        id,
		Type:      n.Type,
		Title:     n.Title,
		Status:    e.status[id],
		Completed: e.completed[id],

		InDegree:        len(e.inAll[id]),
		OutDegree:       len(e.outAll[id]),
		DependencyCount: len(e.ResolveDependencies(id)),

		EffectiveEffort:  e.EffectiveEffort(id),
		TotalEffort:      e.TotalEffort(id),
		AdjustedEffort:   e.AdjustedEffort(id),
		DownstreamEffort: e.DownstreamEffort(id),

		BaseRisk:            n.Risk(),
		AdjustedRisk:        e.AdjustedRisk(id),
		AdjustedUncertainty: e.AdjustedUncertainty(id),
		RiskMitigation:      e.RiskMitigationValue(id),
		SafetyFactor:        e.SafetyFactor(id),

		Readiness:        e.Readiness(id),
		Ready:            e.IsReady(id),
		Leverage:         e.Leverage(id),
		WeightedBlocking: e.WeightedBlocking(id),
		Influence:        influence[id],
		Priority:         e.priorityWith(id, w, influence[id]),
		Level:            levels[id],
	}
	return m
}

func filterDerived(edges []DerivedEdge, id string) []DerivedEdge {
	var out []DerivedEdge
	for _, de := range edges {
		if de.Source == id || de.Target == id {
			out = append(out, de)
		}
	}
	return out
}
