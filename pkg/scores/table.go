package scores

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
)

// Entry is one normalized row of a source file.
type Entry struct {
	ID         string
	Name       string
	Score      decimal.Decimal
	Reconciled bool
}

// CategoryTable is the normalized content of exactly one source file.
type CategoryTable struct {
	Category string
	Source   string
	Entries  []Entry
}

// Options configure how source files are normalized and merged.
type Options struct {
	IDMode         IDMode
	Numbers        NumberParser
	Resolver       *Resolver
	CategoryPrefix string
	JoinKey        JoinKey
}

// DefaultOptions returns the behavior of the original score exports with
// the identifier-only join key.
func DefaultOptions() Options {
	return Options{
		IDMode:         IDModeLegacy,
		Numbers:        NumberParser{Mode: ScoreModeStrip, Policy: PolicyFloat},
		Resolver:       NewResolver(MatchStrict, nil),
		CategoryPrefix: constants.DefaultCategoryPrefix,
		JoinKey:        JoinByID,
	}
}

// NormalizeFile resolves the header of one source file and reduces every
// record to an Entry. It fails only with a SchemaError when a required
// field is missing. Records whose cells are all blank are ignored.
func (o Options) NormalizeFile(source string, header []string, records [][]string) (*CategoryTable, error) {
	resolver := o.Resolver
	if resolver == nil {
		resolver = NewResolver(MatchStrict, nil)
	}

	cols, missing := resolver.Resolve(header, FieldID, FieldName, FieldScore)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, errors.NewSchemaError(source, names)
	}

	table := &CategoryTable{
		Category: CategoryLabel(source, o.CategoryPrefix),
		Source:   source,
		Entries:  make([]Entry, 0, len(records)),
	}
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		id, ok := NormalizeID(cell(rec, cols[FieldID]), o.IDMode)
		table.Entries = append(table.Entries, Entry{
			ID:         id,
			Name:       strings.TrimSpace(cell(rec, cols[FieldName])),
			Score:      o.Numbers.Parse(cell(rec, cols[FieldScore])),
			Reconciled: ok,
		})
	}
	return table, nil
}

// Row is one entity of a unified month table.
type Row struct {
	ID         string
	Name       string
	Reconciled bool
	Scores     map[string]decimal.Decimal
	Total      decimal.Decimal
	Registered *time.Time
}

// Score returns the score of a category, zero when the entity is absent
// from that category's file.
func (r Row) Score(category string) decimal.Decimal {
	if v, ok := r.Scores[category]; ok {
		return v
	}
	return decimal.Zero
}

// Has reports whether the entity appeared in a category's file.
func (r Row) Has(category string) bool {
	_, ok := r.Scores[category]
	return ok
}

// LabelCollision records a category label renamed because another file of
// the same month reduced to the same label.
type LabelCollision struct {
	Source   string
	Label    string
	Renamed  string
	Conflict string
}

// MonthTable is the unified per-month table.
type MonthTable struct {
	Month      string
	Policy     Policy
	Categories []string
	Sources    []string
	Rows       []Row
	Collisions []LabelCollision

	// HasRegistration is set once metadata has been joined.
	HasRegistration bool
}

// Unreconciled counts rows whose identifier fell back to the sentinel key.
func (t *MonthTable) Unreconciled() int {
	n := 0
	for _, r := range t.Rows {
		if !r.Reconciled {
			n++
		}
	}
	return n
}

// Layout names the identifier and name columns of rendered tables.
type Layout struct {
	IDColumn   string
	NameColumn string
}

// DefaultLayout returns the original column headers.
func DefaultLayout() Layout {
	return Layout{IDColumn: constants.DefaultIDColumn, NameColumn: constants.DefaultNameColumn}
}

// Header returns the column headers of the table:
// id, name, Score_<category>..., Score Total and, after a metadata join,
// Data Cadastro.
func (t *MonthTable) Header(l Layout) []string {
	h := make([]string, 0, len(t.Categories)+4)
	h = append(h, l.IDColumn, l.NameColumn)
	for _, c := range t.Categories {
		h = append(h, ColumnName(c))
	}
	h = append(h, constants.TotalColumn)
	if t.HasRegistration {
		h = append(h, constants.RegistrationColumn)
	}
	return h
}

// Record renders one row in Header order.
func (t *MonthTable) Record(r Row) []string {
	rec := make([]string, 0, len(t.Categories)+4)
	rec = append(rec, r.ID, r.Name)
	for _, c := range t.Categories {
		rec = append(rec, t.Policy.Format(r.Score(c)))
	}
	rec = append(rec, t.Policy.Format(r.Total))
	if t.HasRegistration {
		date := ""
		if r.Registered != nil {
			date = r.Registered.Format(constants.RegistrationDateLayout)
		}
		rec = append(rec, date)
	}
	return rec
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
