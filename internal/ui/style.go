package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored priograph logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	nodes := color.New(color.FgYellow)
	edges := color.New(color.FgCyan, color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +----------------------------+")
	nodes.Fprintln(w, "   |    o---o---o    o---o      |")
	edges.Fprintln(w, "   |     \\  |  /      \\  |      |")
	nodes.Fprintln(w, "   |      o-o-o        o-o      |")
	frame.Fprintln(w, "   |============================|")
	brand.Fprintln(w, "   |  P R I O G R A P H         |")
	frame.Fprintln(w, "   +----------------------------+")
	tag.Fprintln(w, "   Strategy graph prioritization")
	fmt.Fprintln(w)
}

// nodeColors is a palette of distinct bold colors for differentiating nodes.
var nodeColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// nodeColorIndex hashes a node ID to a palette index.
func nodeColorIndex(id string) int {
	var h uint32
	for _, c := range id {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(nodeColors)))
}

// NodePrefix returns a colored [node-id] prefix string.
// Each node ID gets a distinct color from the palette.
func NodePrefix(id string) string {
	c := nodeColors[nodeColorIndex(id)]
	return Dim("[") + c(id) + Dim("]")
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "done":
		return Green("✓")
	case "in_progress":
		return Cyan("●")
	case "ready":
		return Yellow("○")
	case "backlog":
		return Dim("◌")
	default:
		return Dim("?")
	}
}

// TypeIcon returns a colored icon for a node type.
func TypeIcon(nodeType string) string {
	switch nodeType {
	case "pillar":
		return BoldMagenta("▣")
	case "initiative":
		return BoldCyan("◆")
	case "problem":
		return BoldYellow("▲")
	case "solution":
		return Green("●")
	default:
		return Dim("·")
	}
}

// OriginTag returns a dimmed tag describing how a dependency reached a
// node, for dependency listings.
func OriginTag(origin string) string {
	switch origin {
	case "direct":
		return Dim("direct")
	case "inherited":
		return Yellow("inherited")
	case "promoted":
		return Magenta("promoted")
	default:
		return Dim(origin)
	}
}
