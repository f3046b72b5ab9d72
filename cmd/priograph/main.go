package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osmarcav/priority-graph/internal/advisor"
	"github.com/osmarcav/priority-graph/internal/cache"
	"github.com/osmarcav/priority-graph/internal/config"
	"github.com/osmarcav/priority-graph/internal/engine"
	"github.com/osmarcav/priority-graph/internal/report"
	"github.com/osmarcav/priority-graph/internal/strategy"
	"github.com/osmarcav/priority-graph/internal/ui"
	"github.com/osmarcav/priority-graph/internal/viewer"
	"github.com/osmarcav/priority-graph/internal/watcher"
)

var (
	flagDoc     string
	flagConfig  string
	flagJSON    bool
	flagNoColor bool
	flagWatch   bool
	flagDryRun  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "priograph",
		Short: "Rank strategy graph work by economic impact",
		Long: `Priograph reads a strategy graph document (pillars, initiatives,
problems, solutions and the typed edges between them), derives economic
scores for every node, and ranks the remaining work by expected impact.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagDoc, "doc", "strategy.json", "Strategy document path")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: config.yaml in the priograph config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(uncompleteCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(levelsCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(clustersCmd())
	rootCmd.AddCommand(crosscutCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(adviseCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig wires viper: explicit --config wins, otherwise config.yaml
// is looked up in the priograph config dir and the working directory.
// Every key can also come from a PRIOGRAPH_* environment variable.
func initConfig() {
	config.SetDefaults()

	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PRIOGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config files are fine; defaults cover everything.
	_ = viper.ReadInConfig()
}

// loadAll is shared setup for most commands: config, validated document,
// engine (through the descendant cache when enabled).
func loadAll() (*engine.Engine, *strategy.Document, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	doc, err := strategy.LoadValidated(flagDoc)
	if err != nil {
		return nil, nil, nil, err
	}

	return buildEngine(doc, cfg), doc, cfg, nil
}

func buildEngine(doc *strategy.Document, cfg *config.Config) *engine.Engine {
	if !cfg.Cache.Enabled {
		return engine.New(doc, cfg.EngineOptions())
	}
	return cache.BuildEngine(doc, cacheRoot(cfg), cfg.EngineOptions(), nil)
}

// cacheRoot is where the .priograph dot-dir lives: an explicit cache.dir
// from config, or the document's directory.
func cacheRoot(cfg *config.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return filepath.Dir(flagDoc)
}

func reportCmd() *cobra.Command {
	var flagMarkdown bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the full priority report",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, cfg, err := loadAll()
			if err != nil {
				return err
			}

			render := func(e *engine.Engine) error {
				rep := report.Build(e, cfg.Weights, cfg.Report.TopN)
				switch {
				case flagJSON:
					data, err := rep.JSON()
					if err != nil {
						return err
					}
					fmt.Println(string(data))
				case flagMarkdown:
					md, err := rep.Markdown()
					if err != nil {
						return err
					}
					fmt.Print(md)
				default:
					rep.PrintSummary(os.Stdout)
				}
				return nil
			}

			if !flagWatch {
				return render(e)
			}

			fmt.Print("\033[2J\033[H") // clear screen
			if err := render(e); err != nil {
				return err
			}
			fmt.Printf("\n%s\n", ui.Dim("Watching "+flagDoc+" (ctrl-c to stop)"))

			w, err := watcher.New(flagDoc, func(doc *strategy.Document) {
				fmt.Print("\033[2J\033[H")
				if err := render(buildEngine(doc, cfg)); err != nil {
					fmt.Fprintf(os.Stderr, "%s %v\n", ui.Red("✗"), err)
					return
				}
				fmt.Printf("\n%s\n", ui.Dim("Watching "+flagDoc+" (ctrl-c to stop)"))
			}, func(err error) {
				fmt.Fprintf(os.Stderr, "%s %v\n", ui.Yellow("⚠"), err)
			})
			if err != nil {
				return err
			}
			w.Start()
			defer w.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagWatch, "watch", false, "Re-render whenever the document changes")
	cmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Render the report as markdown")

	return cmd
}

func nextCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the highest-priority ready solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, cfg, err := loadAll()
			if err != nil {
				return err
			}

			var ready []*engine.NodeMetrics
			for _, m := range e.AllMetrics(cfg.Weights) {
				if m.Type == strategy.TypeSolution && m.Ready && !m.Completed {
					ready = append(ready, m)
				}
			}
			sort.SliceStable(ready, func(i, j int) bool {
				return ready[i].Priority > ready[j].Priority
			})
			if flagLimit > 0 && len(ready) > flagLimit {
				ready = ready[:flagLimit]
			}

			if flagJSON {
				return outputJSON(ready)
			}

			if len(ready) == 0 {
				fmt.Printf("%s\n", ui.Dim("Nothing is ready. Complete a blocker or add solutions."))
				return nil
			}

			fmt.Printf("🎯 %s\n", ui.BoldCyan("Next up"))
			for i, m := range ready {
				fmt.Printf("  %d. %s %s  %s\n",
					i+1, ui.BoldMagenta(m.ID), m.Title, ui.Bold(fmt.Sprintf("%.3f", m.Priority)))
				fmt.Printf("     %s\n", ui.Dim(fmt.Sprintf(
					"effort %d  downstream %d  safety %.2f  influence %.2f",
					m.EffectiveEffort, m.DownstreamEffort, m.SafetyFactor, m.Influence)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 3, "Number of suggestions to show")

	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <node-id>",
		Short: "Show every metric for one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			e, _, cfg, err := loadAll()
			if err != nil {
				return err
			}

			m, err := e.NodeMetrics(id, cfg.Weights)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(m)
			}

			fmt.Printf("\n%s %s %s %s\n",
				ui.TypeIcon(string(m.Type)), ui.NodePrefix(m.ID), m.Title,
				ui.StatusIcon(string(m.Status)))
			fmt.Printf("  %s\n", ui.Dim(fmt.Sprintf("%s, level %d, in %d / out %d edges", m.Type, m.Level, m.InDegree, m.OutDegree)))

			fmt.Printf("\n  priority   %s\n", ui.Bold(fmt.Sprintf("%.3f", m.Priority)))
			fmt.Printf("  effort     %d effective, %d subtree, %.1f adjusted, %d downstream\n",
				m.EffectiveEffort, m.TotalEffort, m.AdjustedEffort, m.DownstreamEffort)
			fmt.Printf("  risk       %.2f base → %.2f adjusted (safety %.2f)\n",
				m.BaseRisk, m.AdjustedRisk, m.SafetyFactor)
			if m.RiskMitigation > 0 {
				fmt.Printf("  mitigates  %.2f risk-weighted effort\n", m.RiskMitigation)
			}
			fmt.Printf("  readiness  %.2f  influence %.2f  leverage %.2f  blocking %d\n",
				m.Readiness, m.Influence, m.Leverage, m.WeightedBlocking)

			deps := e.ResolveDependencies(id)
			if len(deps) > 0 {
				fmt.Printf("\n  %s\n", ui.BoldWhite("Waits on"))
				for _, dep := range deps {
					mark := ui.Yellow("○")
					if e.IsCompleted(dep.Target) {
						mark = ui.Green("✓")
					}
					fmt.Printf("    %s %s %s %s\n",
						mark, ui.BoldMagenta(dep.Target),
						ui.OriginTag(string(dep.Origin)),
						ui.Dim("via "+dep.Edge.ID))
				}
			}

			if len(m.CrossCutting) > 0 {
				fmt.Printf("\n  %s\n", ui.BoldWhite("Cross-cutting"))
				for _, de := range m.CrossCutting {
					fmt.Printf("    %s → %s %s %s\n",
						ui.BoldMagenta(de.Source), ui.BoldMagenta(de.Target),
						de.Type, ui.Dim(fmt.Sprintf("×%d", de.Weight)))
				}
			}

			fmt.Println()
			return nil
		},
	}
}

func completeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <node-id>",
		Short: "Mark a solution done and persist the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			e, doc, _, err := loadAll()
			if err != nil {
				return err
			}

			if flagDryRun {
				impact, err := e.PreviewCompletion(id)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(impact)
				}
				fmt.Printf("🎯 %s\n", ui.Yellow("Dry run — nothing was changed."))
				printImpact(impact)
				return nil
			}

			impact, err := e.MarkCompleted(id)
			if err != nil {
				return err
			}

			node := doc.NodeByID(id)
			if node == nil {
				return fmt.Errorf("node %q missing from document", id)
			}
			node.Status = strategy.StatusDone
			if err := strategy.Save(doc, flagDoc); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(impact)
			}
			fmt.Printf("%s %s marked done\n", ui.Green("✓"), ui.BoldMagenta(id))
			printImpact(impact)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show the impact without changing anything")

	return cmd
}

func uncompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncomplete <node-id>",
		Short: "Put a completed solution back in the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			e, doc, _, err := loadAll()
			if err != nil {
				return err
			}

			if err := e.MarkIncomplete(id); err != nil {
				return err
			}

			node := doc.NodeByID(id)
			if node == nil {
				return fmt.Errorf("node %q missing from document", id)
			}
			node.Status = strategy.StatusBacklog
			if err := strategy.Save(doc, flagDoc); err != nil {
				return err
			}

			fmt.Printf("%s %s back in the backlog\n", ui.Yellow("↺"), ui.BoldMagenta(id))
			return nil
		},
	}
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <node-id>",
		Short: "Show what completing a node would unblock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			impact, err := e.PreviewCompletion(id)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(impact)
			}

			fmt.Printf("🔮 %s %s\n", ui.BoldCyan("Completing"), ui.BoldMagenta(id))
			printImpact(impact)
			return nil
		},
	}
}

func printImpact(impact *engine.Impact) {
	if len(impact.NewlyReady) == 0 && len(impact.EffortReductions) == 0 && len(impact.RiskReductions) == 0 {
		fmt.Printf("  %s\n", ui.Dim("no downstream changes"))
		return
	}
	for _, r := range impact.NewlyReady {
		fmt.Printf("  %s %s becomes ready %s\n",
			ui.Green("✓"), ui.BoldMagenta(r.ID), ui.Dim(fmt.Sprintf("(effort %d)", r.Effort)))
	}
	for _, red := range impact.EffortReductions {
		fmt.Printf("  %s %s effort %d → %d\n",
			ui.Cyan("↓"), ui.BoldMagenta(red.ID), red.Before, red.After)
	}
	for _, red := range impact.RiskReductions {
		fmt.Printf("  %s %s risk %.2f → %.2f\n",
			ui.Cyan("↓"), ui.BoldMagenta(red.ID), red.Before, red.After)
	}
	if impact.UnblockedEffort > 0 || impact.SavedEffort > 0 {
		fmt.Printf("  %s\n", ui.Dim(fmt.Sprintf(
			"unblocks %d effort, saves %d", impact.UnblockedEffort, impact.SavedEffort)))
	}
}

func snapshotCmd() *cobra.Command {
	var flagList bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the current effort totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, cfg, err := loadAll()
			if err != nil {
				return err
			}
			root := cacheRoot(cfg)

			if flagList {
				snaps, err := cache.LoadSnapshots(root)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(snaps)
				}
				if len(snaps) == 0 {
					fmt.Printf("%s\n", ui.Dim("No snapshots recorded yet."))
					return nil
				}
				fmt.Printf("📸 %s\n", ui.BoldCyan("Snapshot history"))
				for i, s := range snaps {
					fmt.Printf("  %2d. %s  remaining %s (ready %d, blocked %d, %d done)\n",
						i+1, s.Timestamp.Format("2006-01-02 15:04"),
						ui.Bold(s.RemainingEffort), s.ReadyEffort, s.BlockedEffort, len(s.Completed))
				}
				return nil
			}

			snap := e.TakeSnapshot()
			n, err := cache.AppendSnapshot(root, snap)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(snap)
			}
			fmt.Printf("📸 Snapshot %s recorded: remaining %s (ready %d, blocked %d)\n",
				ui.Bold(n), ui.Bold(snap.RemainingEffort), snap.ReadyEffort, snap.BlockedEffort)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagList, "list", false, "List recorded snapshots")

	return cmd
}

func levelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Show execution levels (what can run in parallel)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			byLevel := make(map[int][]string)
			maxLevel := 0
			for id, lv := range e.TopologicalLevels() {
				byLevel[lv] = append(byLevel[lv], id)
				if lv > maxLevel {
					maxLevel = lv
				}
			}
			for lv := range byLevel {
				sort.Strings(byLevel[lv])
			}

			if flagJSON {
				out := make([][]string, maxLevel+1)
				for lv := 0; lv <= maxLevel; lv++ {
					out[lv] = byLevel[lv]
				}
				return outputJSON(out)
			}

			fmt.Printf("🌊 %s\n", ui.BoldCyan("Execution levels"))
			for lv := 0; lv <= maxLevel; lv++ {
				if len(byLevel[lv]) == 0 {
					continue
				}
				fmt.Printf("  %s %s\n", ui.Dim(fmt.Sprintf("L%d", lv)), strings.Join(byLevel[lv], ", "))
			}
			return nil
		},
	}
}

func cyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List dependency cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			cycles := e.FindCycles()
			if flagJSON {
				return outputJSON(cycles)
			}

			if len(cycles) == 0 {
				fmt.Printf("%s no dependency cycles\n", ui.Green("✓"))
				return nil
			}

			for _, c := range cycles {
				fmt.Printf("  %s %s\n", ui.Red("✗"), strings.Join(c, " → ")+" → "+c[0])
			}
			return fmt.Errorf("%d dependency cycles found", len(cycles))
		},
	}
}

func clustersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "Show groups of related nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			clusters := e.Clusters()
			if flagJSON {
				return outputJSON(clusters)
			}

			if len(clusters) == 0 {
				fmt.Printf("%s\n", ui.Dim("No related groups found."))
				return nil
			}

			fmt.Printf("🔗 %s\n", ui.BoldCyan("Related groups"))
			for _, cl := range clusters {
				fmt.Printf("  %s %s\n", ui.Cyan("∞"), strings.Join(cl, ", "))
			}
			return nil
		},
	}
}

func crosscutCmd() *cobra.Command {
	var flagLevel string

	cmd := &cobra.Command{
		Use:   "crosscut",
		Short: "Show derived edges between hierarchy groupings",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := strategy.NodeType(flagLevel)
			if !level.Hierarchical() {
				return fmt.Errorf("invalid level %q (use pillar, initiative or problem)", flagLevel)
			}

			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			summaries := engine.SummarizeDerived(e.DeriveEdges(level))
			if flagJSON {
				return outputJSON(summaries)
			}

			if len(summaries) == 0 {
				fmt.Printf("%s\n", ui.Dim(fmt.Sprintf("No cross-cutting edges at the %s level.", flagLevel)))
				return nil
			}

			fmt.Printf("🔗 %s\n", ui.BoldCyan(fmt.Sprintf("Cross-cutting (%s level)", flagLevel)))
			for _, s := range summaries {
				fmt.Printf("  %s → %s  %s\n",
					ui.BoldMagenta(s.Source), ui.BoldMagenta(s.Target),
					ui.Dim(fmt.Sprintf("%d links", s.Total)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagLevel, "level", "initiative", "Hierarchy level (pillar, initiative, problem)")

	return cmd
}

func simulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Project completion order wave by wave",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, _, err := loadAll()
			if err != nil {
				return err
			}

			res := e.Rollout()
			if flagJSON {
				return outputJSON(res)
			}

			if len(res.Waves) == 0 {
				fmt.Printf("%s\n", ui.Dim("Nothing to roll out. No solution is ready."))
			} else {
				fmt.Printf("🌊 %s %d waves, %s total effort\n",
					ui.BoldCyan("Rollout:"), len(res.Waves), ui.Bold(res.TotalEffort))
				for _, w := range res.Waves {
					fmt.Printf("  %s %d (%d effort): %s\n",
						ui.BoldWhite("Wave"), w.Index+1, w.Effort, strings.Join(w.Nodes, ", "))
				}
			}
			if len(res.Stuck) > 0 {
				fmt.Printf("  %s never become ready: %s\n", ui.Yellow("⚠"), strings.Join(res.Stuck, ", "))
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the document's structural integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := strategy.Load(flagDoc)
			if err != nil {
				return err
			}

			violations := strategy.Validate(doc)
			if flagJSON {
				return outputJSON(violations)
			}

			if len(violations) == 0 {
				fmt.Printf("%s %s is valid (%d nodes, %d edges)\n",
					ui.Green("✓"), flagDoc, len(doc.Nodes), len(doc.Edges))
				return nil
			}

			for _, v := range violations {
				fmt.Printf("  %s %s\n", ui.Red("✗"), v.String())
			}
			return fmt.Errorf("%d violations in %s", len(violations), flagDoc)
		},
	}
}

func adviseCmd() *cobra.Command {
	var (
		flagNarrate bool
		flagApply   bool
		flagModel   string
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Use Claude to suggest missing edges or narrate the report",
		Long: `Sends node titles to Claude and suggests relationship edges the graph
may be missing. By default runs in dry-run mode — use --apply to write
the suggestions into the document. With --narrate, sends the rendered
report instead and prints a prose reading of the ranking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, doc, cfg, err := loadAll()
			if err != nil {
				return err
			}

			model := cfg.Advisor.Model
			if flagModel != "" {
				model = flagModel
			}
			client, err := advisor.NewClient("", model, cfg.Advisor.MaxTokens)
			if err != nil {
				return err
			}

			ctx := context.Background()

			if flagNarrate {
				rep := report.Build(e, cfg.Weights, cfg.Report.TopN)
				md, err := rep.Markdown()
				if err != nil {
					return err
				}
				narrative, err := client.NarrateReport(ctx, md)
				if err != nil {
					return fmt.Errorf("narrate report: %w", err)
				}
				fmt.Println(narrative)
				return nil
			}

			nodes, existing := advisor.SummarizeDocument(doc)
			fmt.Printf("🔍 Sending %s nodes to Claude for edge suggestions...\n", ui.Bold(len(nodes)))

			result, err := client.SuggestEdges(ctx, nodes, existing)
			if err != nil {
				return fmt.Errorf("suggest edges: %w", err)
			}

			if flagJSON {
				return outputJSON(result)
			}

			for _, d := range result.Dropped {
				fmt.Printf("  %s %s\n", ui.Yellow("⏭️  SKIP:"), d)
			}

			fmt.Printf("\n🔗 %s suggested edges:\n\n", ui.Bold(len(result.Edges)))
			for _, s := range result.Edges {
				factor := ""
				if s.Type.CarriesFactor() {
					factor = fmt.Sprintf(" ×%.2f", s.Factor)
				}
				fmt.Printf("  %s %s %s %s%s  %s\n",
					ui.Cyan("→"), ui.BoldMagenta(s.Source), s.Type, ui.BoldMagenta(s.Target),
					factor, ui.Dim(s.Reason))
			}
			if result.Summary != "" {
				fmt.Printf("\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
			}

			if !flagApply {
				fmt.Printf("\n🎯 %s\n", ui.Yellow("Dry run — use --apply to write these edges to the document."))
				return nil
			}

			for _, s := range result.Edges {
				edge := &strategy.Edge{
					ID:         nextEdgeID(doc),
					Source:     s.Source,
					Target:     s.Target,
					Type:       s.Type,
					Annotation: s.Reason,
				}
				if s.Type.CarriesFactor() {
					edge.Factor = s.Factor
				}
				doc.Edges = append(doc.Edges, edge)
			}
			if err := strategy.Save(doc, flagDoc); err != nil {
				return err
			}
			fmt.Printf("\n🏁 Applied %s edges to %s.\n", ui.BoldGreen(len(result.Edges)), flagDoc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Narrate the priority report instead of suggesting edges")
	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write suggested edges to the document (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default: Sonnet)")

	return cmd
}

// nextEdgeID returns the first unused e<N> id in the document.
func nextEdgeID(doc *strategy.Document) string {
	used := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		used[e.ID] = true
	}
	for i := len(doc.Edges) + 1; ; i++ {
		id := fmt.Sprintf("e%d", i)
		if !used[id] {
			return id
		}
	}
}

func serveCmd() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph, metrics and report over HTTP",
		Long: `Starts an HTTP server exposing the loaded document (GET /graph), the
per-node metric bundles (GET /metrics) and the full priority report
(GET /report). POST /graph swaps in a new document. The document file is
watched; saved edits are picked up automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, doc, cfg, err := loadAll()
			if err != nil {
				return err
			}

			addr, err := viewer.Start(flagPort, doc, viewer.Options{
				Weights: cfg.Weights,
				Engine:  cfg.EngineOptions(),
				TopN:    cfg.Report.TopN,
			})
			if err != nil {
				return err
			}

			ui.PrintLogo()
			fmt.Printf("🖥️  Serving %s on %s\n", ui.Bold(flagDoc), ui.BoldCyan(addr))
			fmt.Printf("   %s\n", ui.Dim(addr+"/graph"))
			fmt.Printf("   %s\n", ui.Dim(addr+"/metrics"))
			fmt.Printf("   %s\n", ui.Dim(addr+"/report"))

			w, err := watcher.New(flagDoc, func(doc *strategy.Document) {
				if err := viewer.PostDocument(addr, doc); err != nil {
					fmt.Fprintf(os.Stderr, "%s reload: %v\n", ui.Yellow("⚠"), err)
					return
				}
				fmt.Printf("%s reloaded %s\n", ui.Green("✓"), flagDoc)
			}, func(err error) {
				fmt.Fprintf(os.Stderr, "%s %v\n", ui.Yellow("⚠"), err)
			})
			if err != nil {
				return err
			}
			w.Start()
			defer w.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			fmt.Printf("\n🛑 %s\n", ui.Yellow("Shutting down."))
			return nil
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 7171, "HTTP port")

	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
