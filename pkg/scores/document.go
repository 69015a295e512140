package scores

import (
	"github.com/agentstation/scoremerge/pkg/constants"
)

// Document is the JSON/YAML representation of a month view.
type Document struct {
	Month        string        `json:"month" yaml:"month"`
	Policy       Policy        `json:"policy" yaml:"policy"`
	Categories   []string      `json:"categories" yaml:"categories"`
	Sources      []string      `json:"sources" yaml:"sources"`
	Entities     int           `json:"entities" yaml:"entities"`
	Shown        int           `json:"shown" yaml:"shown"`
	Unreconciled int           `json:"unreconciled" yaml:"unreconciled"`
	Rows         []DocumentRow `json:"rows" yaml:"rows"`
}

// DocumentRow is one entity of a Document.
type DocumentRow struct {
	ID               string             `json:"id" yaml:"id"`
	Name             string             `json:"name" yaml:"name"`
	Reconciled       bool               `json:"reconciled" yaml:"reconciled"`
	Scores           map[string]float64 `json:"scores" yaml:"scores"`
	Total            float64            `json:"total" yaml:"total"`
	RegistrationDate string             `json:"registration_date,omitempty" yaml:"registration_date,omitempty"`
}

// Document renders rows of the table (usually a View of it) for structured
// output. Absent categories are reported as zero.
func (t *MonthTable) Document(rows []Row) Document {
	doc := Document{
		Month:        t.Month,
		Policy:       t.Policy,
		Categories:   t.Categories,
		Sources:      t.Sources,
		Entities:     len(t.Rows),
		Shown:        len(rows),
		Unreconciled: t.Unreconciled(),
		Rows:         make([]DocumentRow, 0, len(rows)),
	}
	for _, r := range rows {
		dr := DocumentRow{
			ID:         r.ID,
			Name:       r.Name,
			Reconciled: r.Reconciled,
			Scores:     make(map[string]float64, len(t.Categories)),
			Total:      r.Total.InexactFloat64(),
		}
		for _, c := range t.Categories {
			dr.Scores[c] = r.Score(c).InexactFloat64()
		}
		if r.Registered != nil {
			dr.RegistrationDate = r.Registered.Format(constants.RegistrationDateLayout)
		}
		doc.Rows = append(doc.Rows, dr)
	}
	return doc
}
