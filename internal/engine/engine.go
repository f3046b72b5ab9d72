package engine

import (
	"errors"
	"maps"
	"sort"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// ErrNodeNotFound is returned by operations given a node id the engine
// does not know.
var ErrNodeNotFound = errors.New("node not found")

const (
	defaultIterations = 20
	defaultDamping    = 0.85
)

// Options tunes engine construction. The zero value is ready to use.
type Options struct {
	// Iterations and Damping control influence propagation. Zero fields
	// mean the defaults (20 rounds, damping 0.85).
	Iterations int
	Damping    float64

	// Descendants seeds the descendant index from a cache instead of
	// walking the hierarchy. The engine only verifies that every id it
	// mentions exists; beyond that the contents are trusted. An index
	// naming unknown ids is discarded and rebuilt.
	Descendants map[string][]string
}

// Engine answers metric queries and simulates completion over one
// loaded strategy document. The hierarchy and edge set are fixed at
// construction; only completion state mutates afterwards. The engine
// performs no locking: callers must invoke the mutating operations
// sequentially.
type Engine struct {
	meta  strategy.Meta
	nodes map[string]*strategy.Node
	ids   []string // ascending
	edges []*strategy.Edge

	parent   map[string]string
	children map[string][]string // ascending

	outAll map[string][]*strategy.Edge // by edge id
	inAll  map[string][]*strategy.Edge
	out    map[string]map[strategy.EdgeType][]*strategy.Edge
	in     map[string]map[strategy.EdgeType][]*strategy.Edge

	descendants map[string][]string // pre-order

	status    map[string]strategy.Status
	completed map[string]bool
	history   []Snapshot

	iterations int
	damping    float64
}

// New builds an engine over a validated document. Nodes whose status is
// done seed the completed set. Edges whose endpoints are unknown are
// skipped rather than indexed; a validated document never has any.
func New(doc *strategy.Document, opts Options) *Engine {
	e := &Engine{
		meta:       doc.Meta,
		nodes:      make(map[string]*strategy.Node, len(doc.Nodes)),
		parent:     make(map[string]string),
		children:   make(map[string][]string),
		outAll:     make(map[string][]*strategy.Edge),
		inAll:      make(map[string][]*strategy.Edge),
		out:        make(map[string]map[strategy.EdgeType][]*strategy.Edge),
		in:         make(map[string]map[strategy.EdgeType][]*strategy.Edge),
		status:     make(map[string]strategy.Status, len(doc.Nodes)),
		completed:  make(map[string]bool),
		iterations: opts.Iterations,
		damping:    opts.Damping,
	}
	if e.iterations <= 0 {
		e.iterations = defaultIterations
	}
	if e.damping <= 0 || e.damping >= 1 {
		e.damping = defaultDamping
	}

	for _, n := range doc.Nodes {
		if _, dup := e.nodes[n.ID]; dup {
			continue
		}
		e.nodes[n.ID] = n
		e.ids = append(e.ids, n.ID)
		st := n.Status
		if st == "" {
			st = strategy.StatusBacklog
		}
		e.status[n.ID] = st
		if st == strategy.StatusDone {
			e.completed[n.ID] = true
		}
	}
	sort.Strings(e.ids)

	for _, id := range e.ids {
		n := e.nodes[id]
		if n.ParentID == "" {
			continue
		}
		if _, ok := e.nodes[n.ParentID]; !ok {
			continue
		}
		e.parent[id] = n.ParentID
		e.children[n.ParentID] = append(e.children[n.ParentID], id)
	}
	for k := range e.children {
		sort.Strings(e.children[k])
	}

	// Index edges in ascending edge-id order so every walk over an
	// adjacency list is deterministic.
	sorted := append([]*strategy.Edge(nil), doc.Edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, edge := range sorted {
		if _, ok := e.nodes[edge.Source]; !ok {
			continue
		}
		if _, ok := e.nodes[edge.Target]; !ok {
			continue
		}
		e.edges = append(e.edges, edge)
		e.outAll[edge.Source] = append(e.outAll[edge.Source], edge)
		e.inAll[edge.Target] = append(e.inAll[edge.Target], edge)
		if e.out[edge.Source] == nil {
			e.out[edge.Source] = make(map[strategy.EdgeType][]*strategy.Edge)
		}
		if e.in[edge.Target] == nil {
			e.in[edge.Target] = make(map[strategy.EdgeType][]*strategy.Edge)
		}
		e.out[edge.Source][edge.Type] = append(e.out[edge.Source][edge.Type], edge)
		e.in[edge.Target][edge.Type] = append(e.in[edge.Target][edge.Type], edge)
	}

	if index := opts.Descendants; index != nil && e.knowsAll(index) {
		e.adoptDescendants(index)
	} else {
		e.buildDescendants()
	}
	return e
}

// Clone returns an engine sharing this engine's immutable structure but
// owning an independent completion state and snapshot history. Use it
// to compare completion sequences side by side.
func (e *Engine) Clone() *Engine {
	dup := *e
	dup.status = maps.Clone(e.status)
	dup.completed = maps.Clone(e.completed)
	dup.history = append([]Snapshot(nil), e.history...)
	return &dup
}

// Meta returns the loaded document's metadata.
func (e *Engine) Meta() strategy.Meta { return e.meta }

// Node returns the node with the given id, or nil.
func (e *Engine) Node(id string) *strategy.Node { return e.nodes[id] }

// NodeIDs returns every node id in ascending order.
func (e *Engine) NodeIDs() []string {
	return append([]string(nil), e.ids...)
}

// NodeCount returns the number of nodes in the graph.
func (e *Engine) NodeCount() int { return len(e.ids) }

// Edges returns every indexed edge in ascending edge-id order.
func (e *Engine) Edges() []*strategy.Edge {
	return append([]*strategy.Edge(nil), e.edges...)
}

// Children returns the direct children of id in ascending order.
func (e *Engine) Children(id string) []string {
	return append([]string(nil), e.children[id]...)
}

// Ancestors returns id's parent chain, nearest first.
func (e *Engine) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	for cur := e.parent[id]; cur != ""; cur = e.parent[cur] {
		if seen[cur] {
			break
		}
		seen[cur] = true
		out = append(out, cur)
	}
	return out
}

// AncestorAtType returns the nearest node of the wanted type on id's
// parent chain, starting from id itself. Empty when the chain has none.
func (e *Engine) AncestorAtType(id string, t strategy.NodeType) string {
	seen := map[string]bool{}
	for cur := id; cur != ""; cur = e.parent[cur] {
		if seen[cur] {
			break
		}
		seen[cur] = true
		n := e.nodes[cur]
		if n == nil {
			break
		}
		if n.Type == t {
			return cur
		}
	}
	return ""
}

// Dependents returns the distinct nodes holding a DEPENDS_ON edge onto
// id, ascending.
func (e *Engine) Dependents(id string) []string {
	seen := map[string]bool{}
	var out []string
	for _, edge := range e.incomingByType(id, strategy.DependsOn) {
		if !seen[edge.Source] {
			seen[edge.Source] = true
			out = append(out, edge.Source)
		}
	}
	sort.Strings(out)
	return out
}

// IsCompleted reports whether id is in the completed set.
func (e *Engine) IsCompleted(id string) bool { return e.completed[id] }

// Status returns the engine's view of a node's workflow state.
func (e *Engine) Status(id string) strategy.Status { return e.status[id] }

// CompletedIDs returns a sorted copy of the completed set.
func (e *Engine) CompletedIDs() []string {
	out := make([]string, 0, len(e.completed))
	for id := range e.completed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) outgoingByType(id string, t strategy.EdgeType) []*strategy.Edge {
	return e.out[id][t]
}

func (e *Engine) incomingByType(id string, t strategy.EdgeType) []*strategy.Edge {
	return e.in[id][t]
}
