package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/symlump/pkg/pipeline"
	"github.com/matzehuels/symlump/pkg/record"
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

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
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

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
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
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Records
// =============================================================================

// printRecord prints one network's result.
func printRecord(rec *record.Record, cached bool) {
	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	fmt.Println(StyleTitle.Render(rec.GraphName) + " " + StyleDim.Render("·") + " " + statusStyle.Render(status))

	printKeyValue("nodes", formatInt(rec.NNodes))
	printKeyValue("edges", formatInt(rec.MEdges))
	printKeyValue("order", rec.AutGrpOrder)
	printKeyValue("classes", formatInt(rec.Classes))
	printKeyValue("rho", rec.Rho.String())
	printKeyValue("delta", StyleNumber.Render(rec.Delta.String()))
	printKeyValue("orbits", orbitSummary(rec.Orbits))
	if rec.Verified {
		printKeyValue("verified", StyleSuccess.Render(iconSuccess+" brute force"))
	}
}

// orbitSummary describes the non-trivial orbits by count and largest size.
func orbitSummary(orbits [][]int) string {
	if len(orbits) == 0 {
		return "none"
	}
	largest := 0
	for _, o := range orbits {
		largest = max(largest, len(o))
	}
	return fmt.Sprintf("%d non-trivial, largest %d", len(orbits), largest)
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}

// =============================================================================
// Batch Summary
// =============================================================================

// printSummary prints the batch totals and a table of skipped networks by
// error code.
func printSummary(s *pipeline.Summary) {
	line := fmt.Sprintf("%d of %d networks recorded", s.Succeeded, s.Total)
	if s.Cached > 0 {
		line += StyleDim.Render(fmt.Sprintf(" (%d cached)", s.Cached))
	}
	if s.SkippedTotal() == 0 {
		printSuccess("%s", line)
		return
	}
	printWarning("%s, %d skipped", line, s.SkippedTotal())
	fmt.Println(skippedTable(s))
}

func skippedTable(s *pipeline.Summary) string {
	codes := make([]string, 0, len(s.Skipped))
	for code := range s.Skipped {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		var names []string
		for _, f := range s.Failures {
			if string(f.Code) == code {
				names = append(names, f.Name)
			}
		}
		rows = append(rows, []string{code, strconv.Itoa(len(names)), truncateList(names, 4)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Code", "Count", "Networks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleError
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// truncateList joins up to n names and notes how many were left out.
func truncateList(names []string, n int) string {
	if len(names) <= n {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:n], ", ") + fmt.Sprintf(" +%d more", len(names)-n)
}
