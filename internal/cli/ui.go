package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmlkg/mizgra/pkg/graph"
	"github.com/mmlkg/mizgra/pkg/pipeline"
	"github.com/mmlkg/mizgra/pkg/serialize"
	"github.com/mmlkg/mizgra/pkg/source"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

// PrintError prints an error line. main uses it for fatal errors.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary reports a finished conversion: output, graph size, per-source
// counts and integrity warnings.
func printSummary(w io.Writer, r *pipeline.Result, format serialize.Format, out string) {
	dest := "stdout"
	if out != "" {
		dest = out
	}
	printSuccess(w, "%s %s %s", styleTitle.Render(string(format)), styleDim.Render(iconArrow), styleValue.Render(dest))
	printStats(w, r.Report, r.Stats.Bytes)

	for _, st := range r.Sources {
		printSource(w, st)
	}
	printReport(w, r.Report)
}

// printStats prints graph statistics on a single line.
func printStats(w io.Writer, rep graph.Report, bytes int64) {
	parts := []string{
		styleNumber.Render(fmt.Sprint(rep.Nodes)) + styleDim.Render(" nodes"),
		styleNumber.Render(fmt.Sprint(rep.Edges)) + styleDim.Render(" edges"),
		styleDim.Render(formatBytes(bytes)),
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, styleDim.Render(" · ")))
}

func printSource(w io.Writer, st source.Stats) {
	switch {
	case st.Failed:
		printWarning(w, "%s", st)
	case st.Skipped > 0:
		printInfo(w, "%s", st)
	default:
		printDetail(w, "%s", st)
	}
}

// printReport lists the non-zero integrity counters.
func printReport(w io.Writer, rep graph.Report) {
	counters := []struct {
		name  string
		value int
		warn  bool
	}{
		{"kind collisions", rep.KindCollisions, true},
		{"dangling edges", rep.DanglingEdges, true},
		{"unresolved refs", rep.UnresolvedRefs, true},
		{"merged nodes", rep.MergedNodes, false},
		{"attr conflicts", rep.AttributeConflicts, false},
		{"duplicate edges", rep.DuplicateEdges, false},
		{"weak dropped", rep.WeakDropped, false},
		{"rejected", rep.Rejected, true},
	}
	for _, c := range counters {
		if c.value == 0 {
			continue
		}
		if c.warn {
			printWarning(w, "%d %s", c.value, c.name)
		} else {
			printKeyValue(w, c.name, fmt.Sprint(c.value))
		}
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
