package report

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Build assembles a Report from the engine's current state. topN caps
// the ranked solution list; values below 1 fall back to 10.
func Build(e *engine.Engine, w engine.Weights, topN int) *Report {
	if topN < 1 {
		topN = 10
	}

	metrics := e.AllMetrics(w)

	r := &Report{
		Title:        e.Meta().Title,
		GeneratedAt:  time.Now().UTC(),
		NodeCount:    e.NodeCount(),
		EdgeCount:    len(e.Edges()),
		Snapshot:     e.Clone().TakeSnapshot(),
		CriticalPath: e.CriticalPath(),
		Cycles:       e.FindCycles(),
		Clusters:     e.Clusters(),
		CrossCutting: engine.SummarizeDerived(e.DeriveEdges(strategy.TypeInitiative)),
	}

	r.Ranked = rankSolutions(metrics, topN)
	r.Levels = groupLevels(metrics)
	r.Rollups = buildRollups(e, metrics)

	return r
}

// rankSolutions orders incomplete solutions by priority, descending,
// breaking ties by id.
func rankSolutions(metrics []*engine.NodeMetrics, topN int) []RankedNode {
	var ranked []RankedNode
	for _, m := range metrics {
		if m.Type != strategy.TypeSolution || m.Completed {
			continue
		}
		ranked = append(ranked, RankedNode{
			ID:              m.ID,
			Title:           m.Title,
			Status:          string(m.Status),
			Ready:           m.Ready,
			Level:           m.Level,
			EffectiveEffort: m.EffectiveEffort,
			AdjustedEffort:  m.AdjustedEffort,
			Priority:        m.Priority,
			Breakdown: Breakdown{
				Readiness:      m.Readiness,
				Influence:      m.Influence,
				Leverage:       m.Leverage,
				Safety:         m.SafetyFactor,
				Blocking:       m.WeightedBlocking,
				RiskMitigation: m.RiskMitigation,
			},
		})
	}

	// metrics arrive ascending by id, so a stable sort keeps id order
	// within priority ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// groupLevels folds per-node levels into ordered groups.
func groupLevels(metrics []*engine.NodeMetrics) []Level {
	byLevel := make(map[int][]string)
	maxLevel := 0
	for _, m := range metrics {
		byLevel[m.Level] = append(byLevel[m.Level], m.ID)
		if m.Level > maxLevel {
			maxLevel = m.Level
		}
	}

	var levels []Level
	for i := 0; i <= maxLevel; i++ {
		if nodes, ok := byLevel[i]; ok {
			levels = append(levels, Level{Index: i, Nodes: nodes})
		}
	}
	return levels
}

// buildRollups aggregates each pillar's subtree of solutions.
func buildRollups(e *engine.Engine, metrics []*engine.NodeMetrics) []Rollup {
	var rollups []Rollup
	for _, m := range metrics {
		if m.Type != strategy.TypePillar {
			continue
		}
		ru := Rollup{
			ID:          m.ID,
			Title:       m.Title,
			TotalEffort: m.TotalEffort,
		}
		for _, id := range e.Descendants(m.ID) {
			if n := e.Node(id); n != nil && n.Type == strategy.TypeSolution {
				ru.Solutions++
				if e.IsCompleted(id) {
					ru.Completed++
				}
			}
		}
		rollups = append(rollups, ru)
	}
	return rollups
}

// JSON returns the machine-readable report.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
