package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/reqtrace/export"
	"github.com/c360studio/reqtrace/ingester"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the run summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	// bannerStyle for watch rescans
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("33")).
			Padding(0, 2)
)

// printSummary renders the run summary box.
func printSummary(w io.Writer, result *ingester.Result) {
	x := result.Index
	total, covered := x.Totals()
	ratio := 0.0
	if total > 0 {
		ratio = float64(covered) / float64(total)
	}

	var status string
	if x.Healthy() {
		status = successStyle.Render("OK")
	} else {
		status = errorStyle.Render(fmt.Sprintf("%d ERROR(S)", len(x.Diagnostics)))
	}

	line1 := fmt.Sprintf("%s %d  %s %d  %s %.2fs",
		dimStyle.Render("Documents:"), len(x.Documents),
		dimStyle.Render("Files:"), len(result.Files),
		dimStyle.Render("Duration:"), result.Duration.Seconds(),
	)
	line2 := fmt.Sprintf("%s %d/%d (%s)  %s",
		dimStyle.Render("Covered:"), covered, total, export.Percent(ratio),
		status,
	)

	fmt.Fprintln(w, boxStyle.Render(line1+"\n"+line2))
}

// printDiagnostics prints the diagnostics of a run, or nothing when there
// are none.
func printDiagnostics(w io.Writer, result *ingester.Result) {
	x := result.Index
	if x.Healthy() {
		return
	}
	var sb strings.Builder
	_ = export.WriteErrorsText(&sb, export.BuildErrors(x))
	fmt.Fprint(w, errorStyle.Render(strings.TrimRight(sb.String(), "\n")))
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Run \"%s errors\" to list them again.", appName)))
}

// printBanner renders a one-line banner.
func printBanner(w io.Writer, text string) {
	fmt.Fprintln(w, bannerStyle.Render(text))
}
