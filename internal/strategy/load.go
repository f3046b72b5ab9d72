package strategy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Parse decodes a strategy document from JSON. Nodes with no status
// default to backlog.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse strategy document: %w", err)
	}
	for _, n := range doc.Nodes {
		if n.Status == "" {
			n.Status = StatusBacklog
		}
	}
	return &doc, nil
}

// Load reads and parses a strategy document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadValidated loads a document and rejects it if validation finds any
// violations. The returned error lists every violation, one per line.
func LoadValidated(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	if violations := Validate(doc); len(violations) > 0 {
		lines := make([]string, len(violations))
		for i, v := range violations {
			lines[i] = "  " + v.String()
		}
		return nil, fmt.Errorf("invalid strategy document %s:\n%s", path, strings.Join(lines, "\n"))
	}
	return doc, nil
}

// Save writes the document back to path as indented JSON.
func Save(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal strategy document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write strategy document: %w", err)
	}
	return nil
}
