package engine

import (
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// DerivedEdge is an ephemeral relationship between two hierarchy nodes,
// synthesized from edges held by their descendants. Weight counts the
// contributing descendant edges; EdgeIDs lists them.
type DerivedEdge struct {
	Source  string            `json:"source"`
	Target  string            `json:"target"`
	Type    strategy.EdgeType `json:"type"`
	Weight  int               `json:"weight"`
	EdgeIDs []string          `json:"edgeIds"`
}

// DeriveEdges lifts descendant-level edges that cross branch boundaries
// up to the given hierarchy level: for every node P of that type, each
// outgoing edge held anywhere in P's subtree whose target resolves to a
// different node of the same type contributes to one derived edge per
// (target, edge type) pair. Non-hierarchical levels derive nothing.
func (e *Engine) DeriveEdges(level strategy.NodeType) []DerivedEdge {
	if !level.Hierarchical() {
		return nil
	}

	type key struct {
		target string
		etype  strategy.EdgeType
	}

	var out []DerivedEdge
	for _, pid := range e.ids {
		if e.nodes[pid].Type != level {
			continue
		}
		groups := make(map[key]int)
		var grouped []DerivedEdge
		for _, d := range e.descendants[pid] {
			for _, edge := range e.outAll[d] {
				anc := e.AncestorAtType(edge.Target, level)
				if anc == "" || anc == pid {
					continue
				}
				k := key{anc, edge.Type}
				i, ok := groups[k]
				if !ok {
					i = len(grouped)
					groups[k] = i
					grouped = append(grouped, DerivedEdge{Source: pid, Target: anc, Type: edge.Type})
				}
				grouped[i].Weight++
				grouped[i].EdgeIDs = append(grouped[i].EdgeIDs, edge.ID)
			}
		}
		out = append(out, grouped...)
	}
	return out
}

// CrossCuttingEdges returns the derived edges at id's own hierarchy
// level that touch id as source or target. Solutions have none.
func (e *Engine) CrossCuttingEdges(id string) []DerivedEdge {
	n := e.nodes[id]
	if n == nil || !n.Hierarchical() {
		return nil
	}
	var out []DerivedEdge
	for _, de := range e.DeriveEdges(n.Type) {
		if de.Source == id || de.Target == id {
			out = append(out, de)
		}
	}
	return out
}

// DerivedSummary collapses every derived edge between one (source,
// target) pair into a single record with a per-type weight breakdown.
type DerivedSummary struct {
	Source string                    `json:"source"`
	Target string                    `json:"target"`
	Total  int                       `json:"total"`
	ByType map[strategy.EdgeType]int `json:"byType"`
}

// SummarizeDerived aggregates derived edges by node pair, preserving
// the order in which each pair first appears.
func SummarizeDerived(edges []DerivedEdge) []DerivedSummary {
	type key struct{ source, target string }
	index := make(map[key]int)
	var out []DerivedSummary
	for _, de := range edges {
		k := key{de.Source, de.Target}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, DerivedSummary{
				Source: de.Source,
				Target: de.Target,
				ByType: make(map[strategy.EdgeType]int),
			})
		}
		out[i].Total += de.Weight
		out[i].ByType[de.Type] += de.Weight
	}
	return out
}
