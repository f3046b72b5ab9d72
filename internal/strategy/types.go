package strategy

// NodeType classifies a node within the strategy hierarchy.
type NodeType string

const (
	TypePillar     NodeType = "pillar"
	TypeInitiative NodeType = "initiative"
	TypeProblem    NodeType = "problem"
	TypeSolution   NodeType = "solution"
)

// Valid reports whether t is one of the four known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypePillar, TypeInitiative, TypeProblem, TypeSolution:
		return true
	}
	return false
}

// Hierarchical reports whether nodes of this type group other nodes.
// Solutions are the leaves of the hierarchy and are never hierarchical.
func (t NodeType) Hierarchical() bool {
	switch t {
	case TypePillar, TypeInitiative, TypeProblem:
		return true
	}
	return false
}

// Status is the workflow state of a node.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusReady, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// EdgeType classifies a relationship between two nodes.
type EdgeType string

const (
	// DependsOn is a hard ordering edge: the source cannot start until
	// the target is done.
	DependsOn EdgeType = "DEPENDS_ON"
	// Facilitates means completing the source reduces the target's
	// effort by the edge's factor.
	Facilitates EdgeType = "FACILITATES"
	// Derisks means completing the source reduces the target's risk by
	// the edge's factor.
	Derisks EdgeType = "DERISKS"
	// Informs means completing the source reduces the target's
	// uncertainty by the edge's factor.
	Informs EdgeType = "INFORMS"
	// NeedsCoordination is a soft, non-ordering relationship.
	NeedsCoordination EdgeType = "NEEDS_COORDINATION"
	// RelatesTo is a soft relationship; it drives clustering.
	RelatesTo EdgeType = "RELATES_TO"
)

// Valid reports whether t is one of the six known edge types.
func (t EdgeType) Valid() bool {
	switch t {
	case DependsOn, Facilitates, Derisks, Informs, NeedsCoordination, RelatesTo:
		return true
	}
	return false
}

// CarriesFactor reports whether edges of this type apply a reduction
// factor to their target.
func (t EdgeType) CarriesFactor() bool {
	switch t {
	case Facilitates, Derisks, Informs:
		return true
	}
	return false
}

// Node is a single work item or grouping in the strategy graph.
// Pillars have no parent; every other node points at its parent via
// ParentID. The work attributes (effort, risk, uncertainty) are
// meaningful on solution nodes only and are zero everywhere else.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Title    string   `json:"title"`
	ParentID string   `json:"parentId,omitempty"`
	Status   Status   `json:"status,omitempty"`

	BaseEffort      int     `json:"baseEffort,omitempty"`
	BaseRisk        float64 `json:"baseRisk,omitempty"`
	BaseUncertainty float64 `json:"baseUncertainty,omitempty"`
}

// Hierarchical reports whether this node groups other nodes.
func (n *Node) Hierarchical() bool { return n.Type.Hierarchical() }

// Effort returns the node's base effort for solution nodes, 0 otherwise.
func (n *Node) Effort() int {
	if n.Type == TypeSolution {
		return n.BaseEffort
	}
	return 0
}

// Risk returns the node's base risk for solution nodes, 0 otherwise.
func (n *Node) Risk() float64 {
	if n.Type == TypeSolution {
		return n.BaseRisk
	}
	return 0
}

// Uncertainty returns the node's base uncertainty for solution nodes,
// 0 otherwise.
func (n *Node) Uncertainty() float64 {
	if n.Type == TypeSolution {
		return n.BaseUncertainty
	}
	return 0
}

// Edge is a typed, directed relationship between two nodes.
type Edge struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Type       EdgeType `json:"type"`
	Annotation string   `json:"annotation,omitempty"`
	Strength   float64  `json:"strength,omitempty"`
	Factor     float64  `json:"factor,omitempty"`
}

// ReductionFactor returns the edge's factor for types that apply one
// (FACILITATES, DERISKS, INFORMS) and 0 for every other type. A missing
// factor on a factor-carrying edge means zero effect.
func (e *Edge) ReductionFactor() float64 {
	if e.Type.CarriesFactor() {
		return e.Factor
	}
	return 0
}

// Meta describes the document itself.
type Meta struct {
	Version     string `json:"version"`
	Title       string `json:"title"`
	GeneratedAt string `json:"generatedAt"`
}

// Document is a full strategy graph as loaded from disk.
type Document struct {
	Meta  Meta    `json:"meta"`
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NodeByID returns the node with the given id, or nil.
func (d *Document) NodeByID(id string) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
