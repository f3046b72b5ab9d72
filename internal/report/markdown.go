package report

import (
	"bytes"
	"strings"
	"text/template"
)

const markdownTemplate = `# {{if .Title}}{{.Title}}{{else}}Strategy{{end}} priority report

Generated {{.GeneratedAt.Format "2006-01-02 15:04 UTC"}} from {{.NodeCount}} nodes and {{.EdgeCount}} edges.

Remaining effort **{{.Snapshot.RemainingEffort}}** ({{.Snapshot.ReadyEffort}} ready, {{.Snapshot.BlockedEffort}} blocked).
{{if .Cycles}}
## Cycles

The dependency graph contains cycles. Level assignment degrades gracefully, but these should be broken:
{{range .Cycles}}
- {{cycle .}}
{{- end}}
{{end}}
## Top solutions
{{range .Ranked}}
### {{.Rank}}. {{.Title}} ({{.ID}})

- priority **{{printf "%.3f" .Priority}}**, level {{.Level}}, effort {{.EffectiveEffort}}{{if .Ready}}, ready now{{end}}
- readiness {{printf "%.2f" .Breakdown.Readiness}}, influence {{printf "%.2f" .Breakdown.Influence}}, leverage {{printf "%.2f" .Breakdown.Leverage}}, safety {{printf "%.2f" .Breakdown.Safety}}, blocking {{.Breakdown.Blocking}}{{if gt .Breakdown.RiskMitigation 0.0}}, mitigates {{printf "%.2f" .Breakdown.RiskMitigation}} risk-weighted effort{{end}}
{{end}}
## Critical path
{{if .CriticalPath.Path}}
{{join .CriticalPath.Path " → "}} (effort {{.CriticalPath.Effort}})
{{else}}
No dependency chain found.
{{end}}
## Pillars

| Pillar | Effort | Solutions done |
|---|---|---|
{{- range .Rollups}}
| {{.Title}} ({{.ID}}) | {{.TotalEffort}} | {{.Completed}}/{{.Solutions}} |
{{- end}}

## Execution levels
{{range .Levels}}
- L{{.Index}}: {{join .Nodes ", "}}
{{- end}}
{{if .Clusters}}
## Related groups
{{range .Clusters}}
- {{join . ", "}}
{{- end}}
{{end}}{{if .CrossCutting}}
## Cross-cutting initiatives
{{range .CrossCutting}}
- {{.Source}} → {{.Target}}: {{.Total}} links
{{- end}}
{{end}}`

// Markdown renders the report as a markdown document, suitable for
// sharing or as advisor context.
func (r *Report) Markdown() (string, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"join":  strings.Join,
		"cycle": cycleString,
	}).Parse(markdownTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
