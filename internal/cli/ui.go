package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/logicview/pkg/netlist"
	"github.com/matzehuels/logicview/pkg/view"
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
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for invalid or failed items.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
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

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// elementTable lists the children of the scene's current scope.
func elementTable(s *view.Scene) string {
	t := newTable("ID", "Name", "Kind", "Dir", "At", "Pins", "State")
	for _, el := range s.Children() {
		t.Row(
			strconv.FormatUint(el.ID(), 10),
			el.Name,
			el.Kind().String(),
			el.Dir().String(),
			fmt.Sprintf("%d,%d", el.X, el.Y),
			fmt.Sprintf("%d/%d", len(el.Inputs()), len(el.Outputs())),
			el.State.String(),
		)
	}
	return t.Render()
}

// netTable lists nets with their member gates as owner.pin references.
func netTable(s *view.Scene, nets []netlist.Net) string {
	t := newTable("Net", "Gates", "Width", "Status")
	for _, n := range nets {
		refs := make([]string, len(n.Gates))
		for i, g := range n.Gates {
			refs[i] = gateRef(s, g)
		}
		width := strconv.Itoa(n.Width)
		status := StyleSuccess.Render("ok")
		switch {
		case n.Mixed:
			width += " (mixed)"
			status = StyleError.Render("width mismatch")
		case !n.Valid:
			status = StyleError.Render("invalid")
		}
		t.Row(n.Name, strings.Join(refs, " "), width, status)
	}
	return t.Render()
}

// gateRef names g the way scenario scripts do: "3.in0", "10.out1".
func gateRef(s *view.Scene, g *view.Gate) string {
	el, ok := s.Owner(g)
	if !ok {
		return "?"
	}
	list, dir := el.Inputs(), "in"
	if !g.IsInput() {
		list, dir = el.Outputs(), "out"
	}
	for i, x := range list {
		if x == g {
			return fmt.Sprintf("%d.%s%d", el.ID(), dir, i)
		}
	}
	return fmt.Sprintf("%d.%s?", el.ID(), dir)
}
