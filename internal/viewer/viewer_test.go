package viewer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/strategy"
)

func testOptions() Options {
	return Options{Weights: engine.DefaultWeights(), TopN: 5}
}

func testDoc() *strategy.Document {
	return &strategy.Document{
		Meta: strategy.Meta{Title: "Q3 Strategy"},
		Nodes: []*strategy.Node{
			{ID: "p1", Type: strategy.TypePillar, Title: "Platform"},
			{ID: "s1", Type: strategy.TypeSolution, Title: "Parse feeds", ParentID: "p1", Status: strategy.StatusBacklog, BaseEffort: 5},
			{ID: "s2", Type: strategy.TypeSolution, Title: "Dedupe entries", ParentID: "p1", Status: strategy.StatusBacklog, BaseEffort: 3},
		},
		Edges: []*strategy.Edge{
			{ID: "e1", Source: "s2", Target: "s1", Type: strategy.DependsOn},
		},
	}
}

func TestHandler_GetGraphBeforePost(t *testing.T) {
	ts := httptest.NewServer(Handler(nil, testOptions()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/graph")
	if err != nil {
		t.Fatalf("GET /graph: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_PostThenGet(t *testing.T) {
	ts := httptest.NewServer(Handler(nil, testOptions()))
	defer ts.Close()

	if err := PostDocument(ts.URL, testDoc()); err != nil {
		t.Fatalf("PostDocument: %v", err)
	}

	resp, err := http.Get(ts.URL + "/graph")
	if err != nil {
		t.Fatalf("GET /graph: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var doc strategy.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Meta.Title != "Q3 Strategy" || len(doc.Nodes) != 3 {
		t.Errorf("returned document = %+v", doc.Meta)
	}
}

func TestHandler_PostRejectsBadJSON(t *testing.T) {
	ts := httptest.NewServer(Handler(nil, testOptions()))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/graph", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /graph: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_PostRejectsInvalidDocument(t *testing.T) {
	ts := httptest.NewServer(Handler(nil, testOptions()))
	defer ts.Close()

	doc := testDoc()
	doc.Nodes[1].ParentID = "ghost"
	data, _ := json.Marshal(doc)

	resp, err := http.Post(ts.URL+"/graph", "application/json", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("POST /graph: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "unknown-parent") {
		t.Errorf("body should name the violation, got %q", body)
	}
}

func TestHandler_Metrics(t *testing.T) {
	ts := httptest.NewServer(Handler(testDoc(), testOptions()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var metrics []*engine.NodeMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(metrics) != 3 {
		t.Fatalf("got %d metric bundles, want 3", len(metrics))
	}
	// AllMetrics ascends by id.
	if metrics[0].ID != "p1" || metrics[1].ID != "s1" {
		t.Errorf("order = %s, %s", metrics[0].ID, metrics[1].ID)
	}
	if !metrics[1].Ready {
		t.Error("s1 should be ready")
	}
}

func TestHandler_Report(t *testing.T) {
	ts := httptest.NewServer(Handler(testDoc(), testOptions()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/report")
	if err != nil {
		t.Fatalf("GET /report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`"ranked"`, `"snapshot"`, "Q3 Strategy"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("report should contain %s", want)
		}
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(Handler(nil, testOptions()))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/graph", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /graph: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
