package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/osmarcav/priority-graph/internal/strategy"
)

// NodeSummary is the minimal node info sent to Claude for edge suggestion.
type NodeSummary struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
	Effort int    `json:"effort,omitempty"`
}

// SuggestedEdge is a single proposed relationship.
type SuggestedEdge struct {
	Source string            `json:"source"`
	Target string            `json:"target"`
	Type   strategy.EdgeType `json:"type"`
	Factor float64           `json:"factor,omitempty"`
	Reason string            `json:"reason"`
}

// SuggestResult holds the full response from Claude. Dropped lists the
// suggestions that failed validation, one reason per entry.
type SuggestResult struct {
	Edges   []SuggestedEdge `json:"edges"`
	Summary string          `json:"summary"`
	Dropped []string        `json:"-"`
}

// Client wraps the Anthropic SDK for Claude API calls.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a Claude client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to Claude Sonnet; maxTokens defaults to 4096.
func NewClient(apiKey, model string, maxTokens int) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.Model("claude-sonnet-4-6")
	if model != "" {
		m = anthropic.Model(model)
	}

	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{inner: inner, model: m, maxTokens: int64(maxTokens)}, nil
}

const suggestEdgesPrompt = `You are an expert strategy analyst. Given the nodes of a strategy graph, suggest relationship edges the graph is missing.

Edge types:
- DEPENDS_ON: the source cannot start until the target is done (hard ordering).
- FACILITATES: completing the source reduces the target's effort. Needs a factor between 0 and 1.
- DERISKS: completing the source reduces the target's risk. Needs a factor between 0 and 1.
- INFORMS: completing the source reduces the target's uncertainty. Needs a factor between 0 and 1.
- NEEDS_COORDINATION: the two sides should coordinate but neither blocks the other.
- RELATES_TO: thematic relationship, no scheduling effect.

Rules:
- Only suggest an edge when the titles give a strong reason.
- Prefer fewer edges; do not add transitive or speculative dependencies.
- Do not create DEPENDS_ON cycles.
- Only use node IDs from the provided list.
- DEPENDS_ON, FACILITATES, DERISKS and INFORMS may only connect solution nodes.
- A node cannot relate to itself.
- Do not repeat any of the existing edges.

Return your answer as JSON with this exact structure:
{
  "edges": [
    {"source": "<node id>", "target": "<node id>", "type": "<edge type>", "factor": 0.3, "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph on the suggested structure>"
}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.

Here are the nodes:
`

// buildSuggestPrompt constructs the full prompt for edge suggestion.
func buildSuggestPrompt(nodes []NodeSummary, existing []string) (string, error) {
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal nodes: %w", err)
	}

	var b strings.Builder
	b.WriteString(suggestEdgesPrompt)
	b.Write(data)
	if len(existing) > 0 {
		b.WriteString("\n\nExisting edges:\n")
		for _, e := range existing {
			b.WriteString("- ")
			b.WriteString(e)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// SummarizeDocument flattens a strategy document into the node summaries and
// existing-edge descriptions that accompany the suggestion prompt.
func SummarizeDocument(doc *strategy.Document) ([]NodeSummary, []string) {
	nodes := make([]NodeSummary, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, NodeSummary{
			ID:     n.ID,
			Type:   string(n.Type),
			Title:  n.Title,
			Status: string(n.Status),
			Effort: n.Effort(),
		})
	}

	existing := make([]string, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		existing = append(existing, fmt.Sprintf("%s %s %s", e.Source, e.Type, e.Target))
	}
	return nodes, existing
}

// SuggestEdges calls the Claude API to propose missing edges between the
// given nodes. Suggestions that fail validation are dropped, not fatal.
func (c *Client) SuggestEdges(ctx context.Context, nodes []NodeSummary, existing []string) (*SuggestResult, error) {
	prompt, err := buildSuggestPrompt(nodes, existing)
	if err != nil {
		return nil, err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	known := make(map[string]string, len(nodes))
	for _, n := range nodes {
		known[n.ID] = n.Type
	}
	return parseSuggestResult(text, known)
}

// parseSuggestResult extracts and validates suggested edges from a raw model
// response. known maps node id to node type.
func parseSuggestResult(text string, known map[string]string) (*SuggestResult, error) {
	text = stripJSONFences(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("parse claude response: not valid JSON\nraw: %s", text)
	}

	edges := gjson.Get(text, "edges")
	if !edges.IsArray() {
		return nil, fmt.Errorf("parse claude response: no edges array\nraw: %s", text)
	}

	result := &SuggestResult{Summary: gjson.Get(text, "summary").String()}
	for _, item := range edges.Array() {
		e := SuggestedEdge{
			Source: item.Get("source").String(),
			Target: item.Get("target").String(),
			Type:   strategy.EdgeType(item.Get("type").String()),
			Factor: item.Get("factor").Float(),
			Reason: item.Get("reason").String(),
		}
		if reason := rejectEdge(e, known); reason != "" {
			result.Dropped = append(result.Dropped, fmt.Sprintf("%s -> %s: %s", e.Source, e.Target, reason))
			continue
		}
		result.Edges = append(result.Edges, e)
	}
	return result, nil
}

// rejectEdge returns a non-empty reason when a suggestion cannot be applied.
func rejectEdge(e SuggestedEdge, known map[string]string) string {
	srcType, ok := known[e.Source]
	if !ok {
		return fmt.Sprintf("unknown source %q", e.Source)
	}
	dstType, ok := known[e.Target]
	if !ok {
		return fmt.Sprintf("unknown target %q", e.Target)
	}
	if e.Source == e.Target {
		return "self edge"
	}
	if !e.Type.Valid() {
		return fmt.Sprintf("unknown edge type %q", e.Type)
	}
	if e.Type.CarriesFactor() && (e.Factor < 0 || e.Factor > 1) {
		return fmt.Sprintf("factor %v out of range", e.Factor)
	}
	if schedulingEdge(e.Type) && (srcType != string(strategy.TypeSolution) || dstType != string(strategy.TypeSolution)) {
		return "scheduling edges connect solutions only"
	}
	return ""
}

// schedulingEdge reports whether the type affects ordering, effort, risk or
// uncertainty, as opposed to the soft relationship types.
func schedulingEdge(t strategy.EdgeType) bool {
	return t == strategy.DependsOn || t.CarriesFactor()
}

const narrateReportPrompt = `You are a strategy advisor narrating a priority report for a leadership audience.

You will receive a markdown priority report generated from a strategy graph: ranked solutions with score breakdowns, effort totals, the critical path, and pillar rollups.

Produce a short narrative covering:
- What the team should pick up next, and why the ranking says so.
- Where the risk and the bottlenecks sit.
- Anything unusual (cycles, large blocked effort, idle pillars).

Keep it under four paragraphs. Interpret the numbers instead of repeating them.`

// NarrateReport sends a rendered markdown report to Claude and returns a
// human-readable narrative of what the ranking means.
func (c *Client) NarrateReport(ctx context.Context, markdown string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: narrateReportPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(markdown)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return strings.TrimSpace(text), nil
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
