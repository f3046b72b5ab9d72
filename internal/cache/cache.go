package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/strategy"
)

const (
	cacheDir        = ".priograph"
	descendantsFile = "descendants.json"
	snapshotsFile   = "snapshots.json"
)

// Dir returns the cache directory under root. An empty root means the
// current directory.
func Dir(root string) string {
	return filepath.Join(root, cacheDir)
}

// descendantsDoc is the wire shape of the descendant cache file.
type descendantsDoc struct {
	Descendants map[string][]string `json:"descendants"`
}

// LoadDescendants reads the cached descendant index from root's cache
// directory. Callers treat any error as "recompute".
func LoadDescendants(root string) (map[string][]string, error) {
	data, err := os.ReadFile(filepath.Join(Dir(root), descendantsFile))
	if err != nil {
		return nil, fmt.Errorf("read descendant cache: %w", err)
	}
	var doc descendantsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse descendant cache: %w", err)
	}
	if doc.Descendants == nil {
		doc.Descendants = map[string][]string{}
	}
	return doc.Descendants, nil
}

// SaveDescendants writes the descendant index to root's cache
// directory, creating it as needed.
func SaveDescendants(root string, index map[string][]string) error {
	if err := os.MkdirAll(Dir(root), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(descendantsDoc{Descendants: index}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal descendant cache: %w", err)
	}
	if err := os.WriteFile(filepath.Join(Dir(root), descendantsFile), data, 0644); err != nil {
		return fmt.Errorf("write descendant cache: %w", err)
	}
	return nil
}

// BuildEngine constructs an engine over doc, seeding the descendant
// index from root's cache when one is usable, and writing a freshly
// computed index back otherwise. Cache trouble never fails the build:
// a bad read falls back to recomputation and a failed write is logged
// and ignored.
func BuildEngine(doc *strategy.Document, root string, opts engine.Options, log *slog.Logger) *engine.Engine {
	if log == nil {
		log = slog.Default()
	}

	cached, err := LoadDescendants(root)
	if err == nil && !matchesDocument(cached, doc) {
		err = fmt.Errorf("descendant cache names unknown nodes")
		cached = nil
	}
	if cached != nil {
		opts.Descendants = cached
	}

	e := engine.New(doc, opts)

	if err != nil {
		if werr := SaveDescendants(root, e.DescendantIndex()); werr != nil {
			log.Warn("descendant cache write failed", "error", werr)
		}
	}
	return e
}

// matchesDocument reports whether every id the index mentions exists in
// the document. An index naming unknown ids came from a different
// graph and must not be trusted.
func matchesDocument(index map[string][]string, doc *strategy.Document) bool {
	known := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		known[n.ID] = true
	}
	for id, kids := range index {
		if !known[id] {
			return false
		}
		for _, kid := range kids {
			if !known[kid] {
				return false
			}
		}
	}
	return true
}

// snapshotsDoc is the wire shape of the snapshot history file.
type snapshotsDoc struct {
	Snapshots []engine.Snapshot `json:"snapshots"`
}

// LoadSnapshots returns the persisted snapshot history, oldest first.
// A missing file is an empty history.
func LoadSnapshots(root string) ([]engine.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(Dir(root), snapshotsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot history: %w", err)
	}
	var doc snapshotsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot history: %w", err)
	}
	return doc.Snapshots, nil
}

// AppendSnapshot adds snap to the snapshot history file, creating it as
// needed, and returns the new history length.
func AppendSnapshot(root string, snap engine.Snapshot) (int, error) {
	history, err := LoadSnapshots(root)
	if err != nil {
		return 0, err
	}
	history = append(history, snap)

	if err := os.MkdirAll(Dir(root), 0755); err != nil {
		return 0, fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshotsDoc{Snapshots: history}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(Dir(root), snapshotsFile), data, 0644); err != nil {
		return 0, fmt.Errorf("write snapshot history: %w", err)
	}
	return len(history), nil
}
