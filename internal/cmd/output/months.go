package output

import (
	"io"

	"github.com/agentstation/scoremerge/internal/cmd/table"
	"github.com/agentstation/scoremerge/internal/export"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// FormatMonth renders the view rows of one month. JSON and YAML emit the
// month document, CSV the export layout, tables the terminal layout.
func FormatMonth(w io.Writer, format Format, t *scores.MonthTable, rows []scores.Row, layout scores.Layout) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, t.Document(rows))
	case FormatCSV:
		return export.WriteCSV(w, t, rows, layout)
	default:
		return NewFormatter(format).Format(w, table.MonthToTableData(t, rows, layout, format == FormatWide))
	}
}
