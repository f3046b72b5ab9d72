package engine

import (
	"sort"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Walk colors for cycle detection.
const (
	white = 0
	gray  = 1
	black = 2
)

// TopologicalLevels assigns every node the wave in which its direct
// DEPENDS_ON targets have all been assigned earlier waves; nodes with
// no dependencies land on level 0. When a peeling pass makes no
// progress the remaining nodes form a cycle: they all receive the
// current level and the walk stops. Cyclic input is legal here, never
// an error.
func (e *Engine) TopologicalLevels() map[string]int {
	levels := make(map[string]int, len(e.ids))
	level := 0
	remaining := len(e.ids)

	for remaining > 0 {
		var batch []string
		for _, id := range e.ids {
			if _, done := levels[id]; done {
				continue
			}
			ok := true
			for _, edge := range e.outgoingByType(id, strategy.DependsOn) {
				if _, done := levels[edge.Target]; !done {
					ok = false
					break
				}
			}
			if ok {
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			// Cycle among the remainder: flatten it onto this level.
			for _, id := range e.ids {
				if _, done := levels[id]; !done {
					levels[id] = level
				}
			}
			break
		}
		for _, id := range batch {
			levels[id] = level
		}
		remaining -= len(batch)
		level++
	}
	return levels
}

// CriticalPathResult is the heaviest dependency chain in the graph.
type CriticalPathResult struct {
	Path   []string `json:"path"` // dependency first, final dependent last
	Effort int      `json:"effort"`
}

// CriticalPath finds the chain of DEPENDS_ON-linked nodes carrying the
// largest combined remaining effort. Nodes are swept in ascending
// (level, id) order accumulating the best chain effort per node with
// predecessor pointers; updates require strict improvement, so ties
// always fall to the earlier candidate in the sweep.
func (e *Engine) CriticalPath() CriticalPathResult {
	if len(e.ids) == 0 {
		return CriticalPathResult{}
	}
	levels := e.TopologicalLevels()

	order := append([]string(nil), e.ids...)
	sort.SliceStable(order, func(i, j int) bool {
		if levels[order[i]] != levels[order[j]] {
			return levels[order[i]] < levels[order[j]]
		}
		return order[i] < order[j]
	})

	total := make(map[string]int, len(order))
	acc := make(map[string]int, len(order))
	pred := make(map[string]string, len(order))
	for _, id := range order {
		total[id] = e.TotalEffort(id)
		acc[id] = total[id]
	}

	for _, id := range order {
		for _, edge := range e.incomingByType(id, strategy.DependsOn) {
			dependent := edge.Source
			if cand := acc[id] + total[dependent]; cand > acc[dependent] {
				acc[dependent] = cand
				pred[dependent] = id
			}
		}
	}

	best := e.ids[0]
	for _, id := range e.ids {
		if acc[id] > acc[best] {
			best = id
		}
	}

	var path []string
	for cur := best; cur != ""; cur = pred[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return CriticalPathResult{Path: path, Effort: acc[best]}
}

// FindCycles reports every dependency loop found by a depth-first walk
// over DEPENDS_ON edges: a back edge into the active stack yields the
// stack slice from the revisited node to the current one. Overlapping
// loops may produce overlapping reports; nothing is de-duplicated.
// Callers treat the result as advisory, not as an error.
func (e *Engine) FindCycles() [][]string {
	var cycles [][]string
	color := make(map[string]int, len(e.ids))
	onStack := make(map[string]int)
	var stack []string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		onStack[id] = len(stack)
		stack = append(stack, id)
		for _, edge := range e.outgoingByType(id, strategy.DependsOn) {
			next := edge.Target
			if at, active := onStack[next]; active {
				cycles = append(cycles, append([]string(nil), stack[at:]...))
				continue
			}
			if color[next] == white {
				dfs(next)
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, id)
		color[id] = black
	}

	for _, id := range e.ids {
		if color[id] == white {
			dfs(id)
		}
	}
	return cycles
}

// Clusters groups nodes connected through RELATES_TO edges, treated as
// undirected. Each cluster is sorted ascending; single-node clusters
// are dropped.
func (e *Engine) Clusters() [][]string {
	neighbors := make(map[string][]string)
	for _, edge := range e.edges {
		if edge.Type != strategy.RelatesTo {
			continue
		}
		neighbors[edge.Source] = append(neighbors[edge.Source], edge.Target)
		neighbors[edge.Target] = append(neighbors[edge.Target], edge.Source)
	}

	visited := make(map[string]bool)
	var out [][]string
	for _, id := range e.ids {
		if visited[id] || len(neighbors[id]) == 0 {
			continue
		}
		var comp []string
		queue := []string{id}
		visited[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, nb := range neighbors[cur] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		if len(comp) > 1 {
			sort.Strings(comp)
			out = append(out, comp)
		}
	}
	return out
}
