package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/strategy"
)

// Two pillars, a dependency chain crossing initiatives:
//
//	p1/i1: s1 <- s2 (DEPENDS_ON)
//	p2/i2: s3 depends on s2 (crosses into i1), s4 already done
//	s1 RELATES_TO s3
func testReport(t *testing.T, topN int) *Report {
	t.Helper()
	doc := &strategy.Document{
		Meta: strategy.Meta{Title: "Q3 Strategy"},
		Nodes: []*strategy.Node{
			{ID: "p1", Type: strategy.TypePillar, Title: "Platform"},
			{ID: "i1", Type: strategy.TypeInitiative, Title: "Ingest", ParentID: "p1"},
			{ID: "s1", Type: strategy.TypeSolution, Title: "Parse feeds", ParentID: "i1", Status: strategy.StatusBacklog, BaseEffort: 5},
			{ID: "s2", Type: strategy.TypeSolution, Title: "Dedupe entries", ParentID: "i1", Status: strategy.StatusBacklog, BaseEffort: 3},
			{ID: "p2", Type: strategy.TypePillar, Title: "Quality"},
			{ID: "i2", Type: strategy.TypeInitiative, Title: "Testing", ParentID: "p2"},
			{ID: "s3", Type: strategy.TypeSolution, Title: "Golden fixtures", ParentID: "i2", Status: strategy.StatusBacklog, BaseEffort: 2},
			{ID: "s4", Type: strategy.TypeSolution, Title: "CI gate", ParentID: "i2", Status: strategy.StatusDone, BaseEffort: 4},
		},
		Edges: []*strategy.Edge{
			{ID: "e1", Source: "s2", Target: "s1", Type: strategy.DependsOn},
			{ID: "e2", Source: "s3", Target: "s2", Type: strategy.DependsOn},
			{ID: "e3", Source: "s1", Target: "s3", Type: strategy.RelatesTo},
		},
	}
	e := engine.New(doc, engine.Options{})
	return Build(e, engine.DefaultWeights(), topN)
}

func TestBuild_RankedSolutions(t *testing.T) {
	r := testReport(t, 10)

	// s4 is done and must not be ranked. The ready head of the chain
	// outranks its blocked dependents.
	if len(r.Ranked) != 3 {
		t.Fatalf("expected 3 ranked solutions, got %d", len(r.Ranked))
	}
	wantOrder := []string{"s1", "s2", "s3"}
	for i, want := range wantOrder {
		if r.Ranked[i].ID != want {
			t.Errorf("rank %d = %s, want %s", i+1, r.Ranked[i].ID, want)
		}
		if r.Ranked[i].Rank != i+1 {
			t.Errorf("rank field for %s = %d, want %d", want, r.Ranked[i].Rank, i+1)
		}
	}
	if !r.Ranked[0].Ready {
		t.Error("s1 should be ready")
	}
	if r.Ranked[1].Ready {
		t.Error("s2 should be blocked")
	}
	if r.Ranked[0].Breakdown.Readiness != 1.0 {
		t.Errorf("s1 readiness = %v, want 1.0", r.Ranked[0].Breakdown.Readiness)
	}
}

func TestBuild_TopNTruncation(t *testing.T) {
	r := testReport(t, 2)

	if len(r.Ranked) != 2 {
		t.Fatalf("expected 2 ranked solutions, got %d", len(r.Ranked))
	}
	if r.Ranked[1].ID != "s2" || r.Ranked[1].Rank != 2 {
		t.Errorf("second entry = %s rank %d", r.Ranked[1].ID, r.Ranked[1].Rank)
	}
}

func TestBuild_Snapshot(t *testing.T) {
	r := testReport(t, 10)

	if r.Snapshot.RemainingEffort != 10 {
		t.Errorf("remaining effort = %d, want 10", r.Snapshot.RemainingEffort)
	}
	if r.Snapshot.ReadyEffort != 5 {
		t.Errorf("ready effort = %d, want 5", r.Snapshot.ReadyEffort)
	}
	if r.Snapshot.BlockedEffort != 5 {
		t.Errorf("blocked effort = %d, want 5", r.Snapshot.BlockedEffort)
	}
	if r.NodeCount != 8 || r.EdgeCount != 3 {
		t.Errorf("graph size %d nodes %d edges, want 8 and 3", r.NodeCount, r.EdgeCount)
	}
}

func TestBuild_CriticalPathAndLevels(t *testing.T) {
	r := testReport(t, 10)

	wantPath := []string{"s1", "s2", "s3"}
	if len(r.CriticalPath.Path) != len(wantPath) {
		t.Fatalf("critical path %v, want %v", r.CriticalPath.Path, wantPath)
	}
	for i, id := range wantPath {
		if r.CriticalPath.Path[i] != id {
			t.Errorf("critical path[%d] = %s, want %s", i, r.CriticalPath.Path[i], id)
		}
	}
	if r.CriticalPath.Effort != 10 {
		t.Errorf("critical path effort = %d, want 10", r.CriticalPath.Effort)
	}

	if len(r.Levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(r.Levels))
	}
	if len(r.Levels[1].Nodes) != 1 || r.Levels[1].Nodes[0] != "s2" {
		t.Errorf("level 1 = %v, want [s2]", r.Levels[1].Nodes)
	}
	if len(r.Levels[2].Nodes) != 1 || r.Levels[2].Nodes[0] != "s3" {
		t.Errorf("level 2 = %v, want [s3]", r.Levels[2].Nodes)
	}
}

func TestBuild_RollupsClustersCrossCutting(t *testing.T) {
	r := testReport(t, 10)

	if len(r.Rollups) != 2 {
		t.Fatalf("expected 2 rollups, got %d", len(r.Rollups))
	}
	p1 := r.Rollups[0]
	if p1.ID != "p1" || p1.TotalEffort != 8 || p1.Solutions != 2 || p1.Completed != 0 {
		t.Errorf("p1 rollup = %+v", p1)
	}
	p2 := r.Rollups[1]
	if p2.ID != "p2" || p2.TotalEffort != 2 || p2.Solutions != 2 || p2.Completed != 1 {
		t.Errorf("p2 rollup = %+v", p2)
	}

	if len(r.Clusters) != 1 || len(r.Clusters[0]) != 2 {
		t.Fatalf("clusters = %v", r.Clusters)
	}
	if r.Clusters[0][0] != "s1" || r.Clusters[0][1] != "s3" {
		t.Errorf("cluster = %v, want [s1 s3]", r.Clusters[0])
	}

	if len(r.Cycles) != 0 {
		t.Errorf("expected no cycles, got %v", r.Cycles)
	}

	// s1 relating to s3 crosses i1 -> i2; s3 depending on s2 crosses
	// i2 -> i1.
	if len(r.CrossCutting) != 2 {
		t.Fatalf("expected 2 cross-cutting summaries, got %v", r.CrossCutting)
	}
	if r.CrossCutting[0].Source != "i1" || r.CrossCutting[0].Target != "i2" || r.CrossCutting[0].Total != 1 {
		t.Errorf("first summary = %+v", r.CrossCutting[0])
	}
	if r.CrossCutting[1].Source != "i2" || r.CrossCutting[1].Target != "i1" {
		t.Errorf("second summary = %+v", r.CrossCutting[1])
	}
	if r.CrossCutting[1].ByType[strategy.DependsOn] != 1 {
		t.Errorf("i2 -> i1 by-type = %v", r.CrossCutting[1].ByType)
	}
}

func TestPrintSummary(t *testing.T) {
	r := testReport(t, 10)

	var buf bytes.Buffer
	r.PrintSummary(&buf)
	output := buf.String()

	if !strings.Contains(output, "Priority Report") {
		t.Error("expected output to contain 'Priority Report'")
	}
	if !strings.Contains(output, "Q3 Strategy") {
		t.Error("expected output to contain the strategy title")
	}
	if !strings.Contains(output, "Parse feeds") {
		t.Error("expected output to contain the top solution title")
	}
	if !strings.Contains(output, "s1 → s2 → s3") {
		t.Error("expected output to contain the critical path")
	}
	if !strings.Contains(output, "Pillars") {
		t.Error("expected output to contain the pillar rollup section")
	}
	if strings.Contains(output, "Cycles detected") {
		t.Error("acyclic report should not warn about cycles")
	}
}

func TestJSON(t *testing.T) {
	r := testReport(t, 10)

	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	output := string(data)
	for _, want := range []string{`"ranked"`, `"criticalPath"`, `"rollups"`, "Q3 Strategy", `"snapshot"`} {
		if !strings.Contains(output, want) {
			t.Errorf("JSON should contain %s", want)
		}
	}
	if strings.Contains(output, `"cycles"`) {
		t.Error("empty cycles should be omitted from JSON")
	}
}

func TestMarkdown(t *testing.T) {
	r := testReport(t, 10)

	md, err := r.Markdown()
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	for _, want := range []string{
		"# Q3 Strategy priority report",
		"### 1. Parse feeds (s1)",
		"s1 → s2 → s3",
		"## Pillars",
		"| Platform (p1) | 8 | 0/2 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown should contain %q", want)
		}
	}
	if strings.Contains(md, "## Cycles") {
		t.Error("acyclic report should not include a cycles section")
	}
}
