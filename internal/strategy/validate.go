package strategy

import (
	"fmt"
	"strings"
)

// Violation is a single structural problem found in a document. A
// document may have many independent violations; validation always
// reports all of them rather than stopping at the first.
type Violation struct {
	Code    string
	NodeID  string
	EdgeID  string
	Message string
}

// Violation codes.
const (
	DuplicateNodeID  = "duplicate-node-id"
	DuplicateEdgeID  = "duplicate-edge-id"
	UnknownParent    = "unknown-parent"
	UnknownSource    = "unknown-source"
	UnknownTarget    = "unknown-target"
	ParentCycle      = "parent-cycle"
	PillarWithParent = "pillar-with-parent"
	OrphanNode       = "orphan-node"
	InvalidNodeType  = "invalid-node-type"
	InvalidStatus    = "invalid-status"
	InvalidEdgeType  = "invalid-edge-type"
	ValueOutOfRange  = "value-out-of-range"
)

func (v Violation) String() string {
	switch {
	case v.NodeID != "" && v.EdgeID != "":
		return fmt.Sprintf("%s: node %s, edge %s: %s", v.Code, v.NodeID, v.EdgeID, v.Message)
	case v.EdgeID != "":
		return fmt.Sprintf("%s: edge %s: %s", v.Code, v.EdgeID, v.Message)
	case v.NodeID != "":
		return fmt.Sprintf("%s: node %s: %s", v.Code, v.NodeID, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// Validate checks a document's structural integrity: unique ids,
// resolvable references, an acyclic parent chain, attached non-pillar
// roots, and in-range numeric attributes. It returns every violation
// found; an empty result means the document is safe to hand to the
// engine.
func Validate(doc *Document) []Violation {
	var out []Violation

	nodes := make(map[string]*Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, dup := nodes[n.ID]; dup {
			out = append(out, Violation{Code: DuplicateNodeID, NodeID: n.ID, Message: "id declared more than once"})
			continue
		}
		nodes[n.ID] = n
	}

	incoming := make(map[string]int, len(doc.Nodes))
	edgeIDs := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		if edgeIDs[e.ID] {
			out = append(out, Violation{Code: DuplicateEdgeID, EdgeID: e.ID, Message: "id declared more than once"})
		}
		edgeIDs[e.ID] = true
		if !e.Type.Valid() {
			out = append(out, Violation{Code: InvalidEdgeType, EdgeID: e.ID, Message: fmt.Sprintf("unknown edge type %q", e.Type)})
		}
		if _, ok := nodes[e.Source]; !ok {
			out = append(out, Violation{Code: UnknownSource, EdgeID: e.ID, Message: fmt.Sprintf("source %q does not exist", e.Source)})
		}
		if _, ok := nodes[e.Target]; !ok {
			out = append(out, Violation{Code: UnknownTarget, EdgeID: e.ID, Message: fmt.Sprintf("target %q does not exist", e.Target)})
		} else {
			incoming[e.Target]++
		}
		if e.Strength < 0 || e.Strength > 1 {
			out = append(out, Violation{Code: ValueOutOfRange, EdgeID: e.ID, Message: fmt.Sprintf("strength %v outside [0,1]", e.Strength)})
		}
		if e.Factor < 0 || e.Factor > 1 {
			out = append(out, Violation{Code: ValueOutOfRange, EdgeID: e.ID, Message: fmt.Sprintf("factor %v outside [0,1]", e.Factor)})
		}
	}

	for _, n := range doc.Nodes {
		if !n.Type.Valid() {
			out = append(out, Violation{Code: InvalidNodeType, NodeID: n.ID, Message: fmt.Sprintf("unknown node type %q", n.Type)})
		}
		if !n.Status.Valid() {
			out = append(out, Violation{Code: InvalidStatus, NodeID: n.ID, Message: fmt.Sprintf("unknown status %q", n.Status)})
		}
		if n.ParentID != "" {
			if n.Type == TypePillar {
				out = append(out, Violation{Code: PillarWithParent, NodeID: n.ID, Message: "pillars sit at the top of the hierarchy"})
			}
			if _, ok := nodes[n.ParentID]; !ok {
				out = append(out, Violation{Code: UnknownParent, NodeID: n.ID, Message: fmt.Sprintf("parent %q does not exist", n.ParentID)})
			}
		} else if n.Type != TypePillar && incoming[n.ID] == 0 {
			out = append(out, Violation{Code: OrphanNode, NodeID: n.ID, Message: "no parent and no incoming edge"})
		}
		if n.BaseEffort < 0 {
			out = append(out, Violation{Code: ValueOutOfRange, NodeID: n.ID, Message: fmt.Sprintf("baseEffort %d is negative", n.BaseEffort)})
		}
		if n.BaseRisk < 0 || n.BaseRisk > 1 {
			out = append(out, Violation{Code: ValueOutOfRange, NodeID: n.ID, Message: fmt.Sprintf("baseRisk %v outside [0,1]", n.BaseRisk)})
		}
		if n.BaseUncertainty < 0 || n.BaseUncertainty > 1 {
			out = append(out, Violation{Code: ValueOutOfRange, NodeID: n.ID, Message: fmt.Sprintf("baseUncertainty %v outside [0,1]", n.BaseUncertainty)})
		}
	}

	out = append(out, parentCycles(doc.Nodes, nodes)...)
	return out
}

// Walk colors for parent-chain cycle detection.
const (
	white = 0 // unvisited
	gray  = 1 // on the current chain
	black = 2 // fully explored
)

// parentCycles reports one violation per cycle found in the parentId
// chain. Each violation names the full member chain.
func parentCycles(all []*Node, nodes map[string]*Node) []Violation {
	var out []Violation
	color := make(map[string]int, len(all))

	for _, start := range all {
		if color[start.ID] != white {
			continue
		}
		// Walk the parent chain, remembering the order of this walk so
		// a revisit can be turned into the member list.
		var chain []string
		id := start.ID
		for {
			color[id] = gray
			chain = append(chain, id)
			n := nodes[id]
			if n == nil || n.ParentID == "" {
				break
			}
			next := n.ParentID
			if nodes[next] == nil || color[next] == black {
				break
			}
			if color[next] == gray {
				// Slice the chain from the revisited node onward.
				at := 0
				for i, c := range chain {
					if c == next {
						at = i
						break
					}
				}
				members := append([]string{}, chain[at:]...)
				out = append(out, Violation{
					Code:    ParentCycle,
					NodeID:  next,
					Message: fmt.Sprintf("parent chain loops: %s", strings.Join(append(members, next), " -> ")),
				})
				break
			}
			id = next
		}
		for _, c := range chain {
			color[c] = black
		}
	}
	return out
}
