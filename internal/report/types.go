package report

import (
	"time"

	"github.com/osmarcav/priority-graph/internal/engine"
)

// Report is the full analysis bundle for a strategy document.
type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generatedAt"`
	NodeCount   int       `json:"nodeCount"`
	EdgeCount   int       `json:"edgeCount"`

	Snapshot engine.Snapshot `json:"snapshot"`

	Ranked       []RankedNode              `json:"ranked"`
	Levels       []Level                   `json:"levels"`
	CriticalPath engine.CriticalPathResult `json:"criticalPath"`
	Cycles       [][]string                `json:"cycles,omitempty"`
	Clusters     [][]string                `json:"clusters,omitempty"`
	Rollups      []Rollup                  `json:"rollups"`
	CrossCutting []engine.DerivedSummary   `json:"crossCutting,omitempty"`
}

// RankedNode is one scored solution in the priority list.
type RankedNode struct {
	Rank            int       `json:"rank"`
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	Ready           bool      `json:"ready"`
	Level           int       `json:"level"`
	EffectiveEffort int       `json:"effectiveEffort"`
	AdjustedEffort  float64   `json:"adjustedEffort"`
	Priority        float64   `json:"priority"`
	Breakdown       Breakdown `json:"breakdown"`
}

// Breakdown holds the unweighted score terms behind a priority value.
type Breakdown struct {
	Readiness      float64 `json:"readiness"`
	Influence      float64 `json:"influence"`
	Leverage       float64 `json:"leverage"`
	Safety         float64 `json:"safety"`
	Blocking       int     `json:"blocking"`
	RiskMitigation float64 `json:"riskMitigation"`
}

// Level is a group of nodes sharing a topological level.
type Level struct {
	Index int      `json:"index"`
	Nodes []string `json:"nodes"`
}

// Rollup aggregates a pillar's subtree.
type Rollup struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TotalEffort int    `json:"totalEffort"`
	Solutions   int    `json:"solutions"`
	Completed   int    `json:"completed"`
}
