package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

func writeDoc(t *testing.T, path, title string) {
	t.Helper()
	doc := &strategy.Document{
		Meta: strategy.Meta{Title: title},
		Nodes: []*strategy.Node{
			{ID: "p1", Type: strategy.TypePillar, Title: "Platform"},
			{ID: "s1", Type: strategy.TypeSolution, Title: "Parse feeds", ParentID: "p1", Status: strategy.StatusBacklog, BaseEffort: 5},
		},
	}
	if err := strategy.Save(doc, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.json")
	writeDoc(t, path, "v1")

	changed := make(chan *strategy.Document, 4)
	w, err := New(path, func(d *strategy.Document) { changed <- d }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	defer w.Stop()

	writeDoc(t, path, "v2")

	select {
	case doc := <-changed:
		if doc.Meta.Title != "v2" {
			t.Errorf("reloaded title = %q, want v2", doc.Meta.Title)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_ReportsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.json")
	writeDoc(t, path, "v1")

	changed := make(chan *strategy.Document, 4)
	errs := make(chan error, 4)
	w, err := New(path, func(d *strategy.Document) { changed <- d }, func(e error) { errs <- e })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-errs:
	case doc := <-changed:
		t.Fatalf("broken document reached onChange: %+v", doc)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for parse error")
	}

	// The watcher keeps running after a bad write.
	writeDoc(t, path, "v3")

	select {
	case doc := <-changed:
		if doc.Meta.Title != "v3" {
			t.Errorf("reloaded title = %q, want v3", doc.Meta.Title)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload after recovery")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.json")
	writeDoc(t, path, "v1")

	changed := make(chan *strategy.Document, 4)
	w, err := New(path, func(d *strategy.Document) { changed <- d }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("unrelated"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case doc := <-changed:
		t.Fatalf("sibling write triggered a reload: %+v", doc)
	case <-time.After(400 * time.Millisecond):
	}
}
