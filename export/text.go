package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// newTable returns a borderless-looking markdown table.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(headers...)
}

// Percent formats a ratio as a whole percentage.
func Percent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 0, 64) + "%"
}

func writeText(w io.Writer, data any) error {
	switch v := data.(type) {
	case Stats:
		return writeStatsText(w, v)
	case Matrix:
		return writeMatrixText(w, v)
	case []ReviewEntry:
		return writeReviewText(w, v)
	case ErrorList:
		return WriteErrorsText(w, v)
	default:
		return fmt.Errorf("no text rendering for %T", data)
	}
}

func writeStatsText(w io.Writer, s Stats) error {
	t := newTable("DOCUMENT", "COVERED", "TOTAL", "COVERAGE")
	for _, row := range s.Documents {
		t.Row(row.Document, strconv.Itoa(row.Covered), strconv.Itoa(row.Total), Percent(row.Ratio))
	}
	t.Row("TOTAL", strconv.Itoa(s.Covered), strconv.Itoa(s.Total), Percent(s.Ratio))
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeMatrixText(w io.Writer, m Matrix) error {
	related := "COVERED BY"
	if m.Reverse {
		related = "COVERS"
	}
	t := newTable("REQUIREMENT", "DOCUMENT", related)
	for _, row := range m.Rows {
		t.Row(row.Requirement, row.Document, strings.Join(row.Related, ", "))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeReviewText(w io.Writer, entries []ReviewEntry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s  (%s, %s)\n", e.ID, e.Document, e.Path)
		for _, line := range strings.Split(e.Text, "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		if len(e.Covers) > 0 {
			fmt.Fprintf(&sb, "  covers: %s\n", strings.Join(e.Covers, ", "))
		}
		if len(e.CoveredBy) > 0 {
			fmt.Fprintf(&sb, "  covered by: %s\n", strings.Join(e.CoveredBy, ", "))
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteErrorsText writes "Ok." when there are no diagnostics, otherwise
// the count followed by one message per line.
func WriteErrorsText(w io.Writer, list ErrorList) error {
	if list.Count == 0 {
		_, err := fmt.Fprintln(w, "Ok.")
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error(s): %d\n", list.Count)
	for _, d := range list.Diagnostics {
		sb.WriteString(d.Message)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
