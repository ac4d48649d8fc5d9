package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func writeCSV(w io.Writer, data any) error {
	var records [][]string

	switch v := data.(type) {
	case Stats:
		records = append(records, []string{"document", "path", "covered", "total", "ratio"})
		for _, row := range v.Documents {
			records = append(records, []string{
				row.Document, row.Path, strconv.Itoa(row.Covered), strconv.Itoa(row.Total), formatRatio(row.Ratio),
			})
		}
	case Matrix:
		related := "covered_by"
		if v.Reverse {
			related = "covers"
		}
		records = append(records, []string{"requirement", "document", related})
		for _, row := range v.Rows {
			records = append(records, []string{row.Requirement, row.Document, strings.Join(row.Related, " ")})
		}
	case []ReviewEntry:
		records = append(records, []string{"id", "document", "path", "text", "covers", "covered_by"})
		for _, e := range v {
			records = append(records, []string{
				e.ID, e.Document, e.Path, e.Text, strings.Join(e.Covers, " "), strings.Join(e.CoveredBy, " "),
			})
		}
	case ErrorList:
		records = append(records, []string{"kind", "message"})
		for _, d := range v.Diagnostics {
			records = append(records, []string{string(d.Kind), d.Message})
		}
	default:
		return fmt.Errorf("no csv rendering for %T", data)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', 4, 64)
}
