// Package table converts unified month tables and run summaries into rows
// ready for terminal rendering.
package table

import (
	"strconv"

	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// MonthToTableData renders view rows of a month. The narrow form shows
// rank, identifier, name, total and the registration date when joined;
// the wide form adds every category score.
func MonthToTableData(t *scores.MonthTable, rows []scores.Row, layout scores.Layout, wide bool) Data {
	headers := []string{"#", layout.IDColumn, layout.NameColumn}
	align := []Align{AlignRight, AlignRight, AlignLeft}
	if wide {
		for _, c := range t.Categories {
			headers = append(headers, scores.ColumnName(c))
			align = append(align, AlignRight)
		}
	}
	headers = append(headers, constants.TotalColumn)
	align = append(align, AlignRight)
	if t.HasRegistration {
		headers = append(headers, constants.RegistrationColumn)
		align = append(align, AlignLeft)
	}

	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		id := r.ID
		if !r.Reconciled {
			id += "*"
		}
		row := []string{strconv.Itoa(i + 1), id, r.Name}
		if wide {
			for _, c := range t.Categories {
				if r.Has(c) {
					row = append(row, t.Policy.Format(r.Score(c)))
				} else {
					row = append(row, "-")
				}
			}
		}
		row = append(row, t.Policy.Format(r.Total))
		if t.HasRegistration {
			date := "-"
			if r.Registered != nil {
				date = r.Registered.Format(constants.RegistrationDateLayout)
			}
			row = append(row, date)
		}
		out = append(out, row)
	}

	return Data{Headers: headers, Rows: out, ColumnAlignment: align}
}

// MonthsToTableData lists discovered month folders.
func MonthsToTableData(months []ingest.Month) Data {
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{m.Name, strconv.Itoa(len(m.Files)), m.Dir})
	}
	return Data{
		Headers:         []string{"Month", "Files", "Path"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// RunToTableData summarizes every month of a run.
func RunToTableData(run *ingest.Run) Data {
	rows := make([][]string, 0, len(run.Months))
	for _, m := range run.Months {
		entities, categories, unreconciled := "-", "-", "-"
		if m.Table != nil {
			entities = strconv.Itoa(len(m.Table.Rows))
			categories = strconv.Itoa(len(m.Table.Categories))
			unreconciled = strconv.Itoa(m.Table.Unreconciled())
		}
		rows = append(rows, []string{
			m.Month,
			strconv.Itoa(m.Files),
			categories,
			entities,
			unreconciled,
			strconv.Itoa(len(m.Issues)),
		})
	}
	return Data{
		Headers:         []string{"Month", "Files", "Categories", "Entities", "Unreconciled", "Issues"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}
