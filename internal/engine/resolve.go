package engine

import (
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// DependencyOrigin says how a resolved dependency reached a node.
type DependencyOrigin string

const (
	// OriginDirect marks a DEPENDS_ON edge held by the node itself.
	OriginDirect DependencyOrigin = "direct"
	// OriginInherited marks a dependency taken over from an ancestor.
	OriginInherited DependencyOrigin = "inherited"
	// OriginPromoted marks a subtree dependency that crosses into a
	// different branch, lifted to this node's hierarchy level.
	OriginPromoted DependencyOrigin = "promoted"
)

// Dependency is one target a node must wait on before it can start,
// together with the edge that produced it. For promoted dependencies
// Target is the ancestor of the edge's target at the querying node's
// own level, not the edge target itself.
type Dependency struct {
	Target string
	Origin DependencyOrigin
	Edge   *strategy.Edge
}

// ResolveDependencies returns the de-duplicated set of targets id must
// wait on:
//
//  1. the node's own outgoing DEPENDS_ON edges,
//  2. the DEPENDS_ON edges of every ancestor on the parent chain,
//  3. for hierarchical nodes, DEPENDS_ON edges held anywhere in the
//     subtree whose target resolves to a different branch, promoted to
//     the target's ancestor at this node's level.
//
// One entry survives per target. When several qualifying edges share a
// target, a promoted dependency replaces an inherited one, which
// replaces a direct one; within an origin the later edge in walk order
// (ancestors walked toward the root, edges ascending by id) wins.
// Entries keep the order in which their target was first seen.
func (e *Engine) ResolveDependencies(id string) []Dependency {
	n := e.nodes[id]
	if n == nil {
		return nil
	}

	var out []Dependency
	index := make(map[string]int)
	add := func(target string, origin DependencyOrigin, edge *strategy.Edge) {
		if i, ok := index[target]; ok {
			out[i] = Dependency{Target: target, Origin: origin, Edge: edge}
			return
		}
		index[target] = len(out)
		out = append(out, Dependency{Target: target, Origin: origin, Edge: edge})
	}

	for _, edge := range e.outgoingByType(id, strategy.DependsOn) {
		add(edge.Target, OriginDirect, edge)
	}

	for _, anc := range e.Ancestors(id) {
		for _, edge := range e.outgoingByType(anc, strategy.DependsOn) {
			add(edge.Target, OriginInherited, edge)
		}
	}

	if n.Hierarchical() {
		subtree := make(map[string]bool, len(e.descendants[id])+1)
		subtree[id] = true
		for _, d := range e.descendants[id] {
			subtree[d] = true
		}
		for _, d := range e.descendants[id] {
			for _, edge := range e.outgoingByType(d, strategy.DependsOn) {
				promoted := e.AncestorAtType(edge.Target, n.Type)
				if promoted == "" || subtree[promoted] {
					continue
				}
				add(promoted, OriginPromoted, edge)
			}
		}
	}

	return out
}

// IsReady reports whether every resolved dependency target of id is
// completed. Nodes with no dependencies are always ready.
func (e *Engine) IsReady(id string) bool {
	for _, dep := range e.ResolveDependencies(id) {
		if !e.completed[dep.Target] {
			return false
		}
	}
	return true
}
