package engine

import (
	"fmt"
	"time"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// riskEpsilon absorbs floating-point noise when deciding whether a risk
// value actually dropped.
const riskEpsilon = 0.01

// ReadyNode is a node that became ready as a result of a completion,
// with the effort it unblocks.
type ReadyNode struct {
	ID     string `json:"id"`
	Effort int    `json:"effort"`
}

// EffortReduction records an effective-effort drop on one node.
type EffortReduction struct {
	ID     string `json:"id"`
	Before int    `json:"before"`
	After  int    `json:"after"`
	Delta  int    `json:"delta"`
}

// RiskReduction records an adjusted-risk drop on one node.
type RiskReduction struct {
	ID     string  `json:"id"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// Impact describes everything completing one node changed: dependents
// that became ready, facilitation targets whose effort dropped, derisk
// targets whose risk dropped, and the aggregate totals over each list.
type Impact struct {
	NodeID           string            `json:"nodeId"`
	NewlyReady       []ReadyNode       `json:"newlyReady,omitempty"`
	EffortReductions []EffortReduction `json:"effortReductions,omitempty"`
	RiskReductions   []RiskReduction   `json:"riskReductions,omitempty"`
	UnblockedEffort  int               `json:"unblockedEffort"`
	SavedEffort      int               `json:"savedEffort"`
	RiskReduced      float64           `json:"riskReduced"`
}

// Snapshot is an immutable record of aggregate effort state at one
// point in time.
type Snapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	Completed       []string  `json:"completed"`
	RemainingEffort int       `json:"remainingEffort"`
	ReadyEffort     int       `json:"readyEffort"`
	BlockedEffort   int       `json:"blockedEffort"`
}

// MarkCompleted adds id to the completed set, moves its status to done
// and reports the downstream impact. Unknown ids fail with
// ErrNodeNotFound and change nothing.
func (e *Engine) MarkCompleted(id string) (*Impact, error) {
	if e.nodes[id] == nil {
		return nil, fmt.Errorf("mark completed %q: %w", id, ErrNodeNotFound)
	}
	impact := e.applyCompletion(id)
	e.status[id] = strategy.StatusDone
	return impact, nil
}

// MarkIncomplete removes id from the completed set and puts it back in
// the backlog. Nothing cascades; derived metrics simply reflect the new
// state on the next query.
func (e *Engine) MarkIncomplete(id string) error {
	if e.nodes[id] == nil {
		return fmt.Errorf("mark incomplete %q: %w", id, ErrNodeNotFound)
	}
	delete(e.completed, id)
	e.status[id] = strategy.StatusBacklog
	return nil
}

// PreviewCompletion reports the impact MarkCompleted would have without
// durably changing anything: the completed set is toggled, metrics are
// recomputed, and the set is restored to its exact prior membership,
// including id's own. Status never changes.
func (e *Engine) PreviewCompletion(id string) (*Impact, error) {
	if e.nodes[id] == nil {
		return nil, fmt.Errorf("preview completion %q: %w", id, ErrNodeNotFound)
	}
	wasCompleted := e.completed[id]
	impact := e.applyCompletion(id)
	if !wasCompleted {
		delete(e.completed, id)
	}
	return impact, nil
}

// applyCompletion captures the relevant pre-completion metrics, adds id
// to the completed set and diffs. Dependents are checked for readiness
// flips; facilitation and derisk targets for effort and risk drops.
func (e *Engine) applyCompletion(id string) *Impact {
	dependents := e.Dependents(id)
	facTargets := e.uniqueTargets(id, strategy.Facilitates)
	riskTargets := e.uniqueTargets(id, strategy.Derisks)

	preReady := make(map[string]bool, len(dependents))
	for _, d := range dependents {
		if !e.completed[d] {
			preReady[d] = e.IsReady(d)
		}
	}
	preEffort := make(map[string]int, len(facTargets))
	for _, t := range facTargets {
		if !e.completed[t] {
			preEffort[t] = e.EffectiveEffort(t)
		}
	}
	preRisk := make(map[string]float64, len(riskTargets))
	for _, t := range riskTargets {
		if !e.completed[t] {
			preRisk[t] = e.AdjustedRisk(t)
		}
	}

	e.completed[id] = true

	impact := &Impact{NodeID: id}
	for _, d := range dependents {
		was, tracked := preReady[d]
		if !tracked || was || !e.IsReady(d) {
			continue
		}
		effort := e.TotalEffort(d)
		impact.NewlyReady = append(impact.NewlyReady, ReadyNode{ID: d, Effort: effort})
		impact.UnblockedEffort += effort
	}
	for _, t := range facTargets {
		before, tracked := preEffort[t]
		if !tracked {
			continue
		}
		after := e.EffectiveEffort(t)
		if delta := before - after; delta > 0 {
			impact.EffortReductions = append(impact.EffortReductions, EffortReduction{
				ID: t, Before: before, After: after, Delta: delta,
			})
			impact.SavedEffort += delta
		}
	}
	for _, t := range riskTargets {
		before, tracked := preRisk[t]
		if !tracked {
			continue
		}
		after := e.AdjustedRisk(t)
		if delta := before - after; delta > riskEpsilon {
			impact.RiskReductions = append(impact.RiskReductions, RiskReduction{
				ID: t, Before: before, After: after, Delta: delta,
			})
			impact.RiskReduced += delta * float64(e.EffectiveEffort(t))
		}
	}
	return impact
}

// uniqueTargets returns the distinct targets of id's outgoing edges of
// one type, in ascending edge-id order of first appearance.
func (e *Engine) uniqueTargets(id string, t strategy.EdgeType) []string {
	seen := map[string]bool{}
	var out []string
	for _, edge := range e.outgoingByType(id, t) {
		if !seen[edge.Target] {
			seen[edge.Target] = true
			out = append(out, edge.Target)
		}
	}
	return out
}

// TakeSnapshot totals the effective effort still open across solution
// nodes, split into ready and blocked shares, appends the result to the
// engine's history and returns it.
func (e *Engine) TakeSnapshot() Snapshot {
	snap := Snapshot{
		Timestamp: time.Now().UTC(),
		Completed: e.CompletedIDs(),
	}
	for _, id := range e.ids {
		if e.nodes[id].Type != strategy.TypeSolution || e.completed[id] {
			continue
		}
		effort := e.EffectiveEffort(id)
		snap.RemainingEffort += effort
		if e.IsReady(id) {
			snap.ReadyEffort += effort
		} else {
			snap.BlockedEffort += effort
		}
	}
	e.history = append(e.history, snap)
	return snap
}

// History returns a copy of the snapshots taken so far, oldest first.
func (e *Engine) History() []Snapshot {
	return append([]Snapshot(nil), e.history...)
}
