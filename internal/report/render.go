package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/osmarcav/priority-graph/internal/strategy"
	"github.com/osmarcav/priority-graph/internal/ui"
)

// PrintSummary writes a terminal-friendly report to the given writer.
func (r *Report) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n📊 %s\n", ui.BoldCyan("Priority Report"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════════"))
	if r.Title != "" {
		fmt.Fprintf(w, "Strategy:  %s\n", ui.Bold(r.Title))
	}
	fmt.Fprintf(w, "Graph:     %d nodes, %d edges\n", r.NodeCount, r.EdgeCount)
	fmt.Fprintf(w, "Effort:    %s remaining (%s ready, %s blocked)\n",
		ui.Bold(fmt.Sprintf("%d", r.Snapshot.RemainingEffort)),
		ui.Green(fmt.Sprintf("%d", r.Snapshot.ReadyEffort)),
		ui.Yellow(fmt.Sprintf("%d", r.Snapshot.BlockedEffort)))

	if len(r.Cycles) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldRed("Cycles detected:"))
		for _, cycle := range r.Cycles {
			fmt.Fprintf(w, "  %s %s\n", ui.Red("✗"), cycleString(cycle))
		}
	}

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Top solutions"))
	if len(r.Ranked) == 0 {
		fmt.Fprintf(w, "  %s\n", ui.Dim("nothing left to do"))
	}
	for _, rn := range r.Ranked {
		title := rn.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(w, "  %2d. %s %s %-40s %s\n",
			rn.Rank, ui.StatusIcon(rn.Status), ui.BoldMagenta(rn.ID), title,
			ui.Bold(fmt.Sprintf("%.3f", rn.Priority)))
		fmt.Fprintf(w, "      %s\n", ui.Dim(fmt.Sprintf(
			"effort %d  level %d  readiness %.2f  influence %.2f  leverage %.2f  safety %.2f  blocking %d",
			rn.EffectiveEffort, rn.Level, rn.Breakdown.Readiness, rn.Breakdown.Influence,
			rn.Breakdown.Leverage, rn.Breakdown.Safety, rn.Breakdown.Blocking)))
	}

	if len(r.CriticalPath.Path) > 0 {
		fmt.Fprintf(w, "\nCritical:  %s %s\n",
			ui.BoldYellow("⚡ "+strings.Join(r.CriticalPath.Path, " → ")),
			ui.Dim(fmt.Sprintf("(effort %d)", r.CriticalPath.Effort)))
	}

	if len(r.Rollups) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Pillars"))
		for _, ru := range r.Rollups {
			title := ru.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			fmt.Fprintf(w, "  %s %s %-30s %s\n",
				ui.TypeIcon("pillar"), ui.BoldMagenta(ru.ID), title,
				ui.Dim(fmt.Sprintf("effort %d, %d/%d solutions done", ru.TotalEffort, ru.Completed, ru.Solutions)))
		}
	}

	if len(r.Levels) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Execution levels"))
		for _, lv := range r.Levels {
			fmt.Fprintf(w, "  %s %s\n",
				ui.Dim(fmt.Sprintf("L%d", lv.Index)), strings.Join(lv.Nodes, ", "))
		}
	}

	if len(r.Clusters) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Related groups"))
		for _, cl := range r.Clusters {
			fmt.Fprintf(w, "  %s %s\n", ui.Cyan("∞"), strings.Join(cl, ", "))
		}
	}

	if len(r.CrossCutting) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Cross-cutting (initiative level)"))
		for _, cc := range r.CrossCutting {
			fmt.Fprintf(w, "  %s → %s  %s\n",
				ui.BoldMagenta(cc.Source), ui.BoldMagenta(cc.Target),
				ui.Dim(fmt.Sprintf("%d links (%s)", cc.Total, byTypeString(cc.ByType))))
		}
	}

	fmt.Fprintln(w)
}

// cycleString renders a cycle with the return hop made explicit.
func cycleString(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " → ") + " → " + cycle[0]
}

// byTypeString renders a per-type edge count map deterministically.
func byTypeString(byType map[strategy.EdgeType]int) string {
	keys := make([]string, 0, len(byType))
	for k := range byType {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, byType[strategy.EdgeType(k)]))
	}
	return strings.Join(parts, ", ")
}
