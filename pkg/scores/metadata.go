package scores

import (
	"strings"
	"time"

	"github.com/agentstation/scoremerge/pkg/errors"
)

// dateLayouts are tried in order when parsing registration dates. Slash and
// dash separated dates with the year last are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02-01-2006",
	"2006/01/02",
}

// ParseDate parses a registration date. ok is false for blank or
// malformed input.
func ParseDate(raw string) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Metadata maps normalized entity identifiers to registration dates. It is
// loaded once and only read afterwards.
type Metadata struct {
	dates   map[string]*time.Time
	invalid int
}

// NewMetadata returns an empty metadata table.
func NewMetadata() *Metadata {
	return &Metadata{dates: make(map[string]*time.Time)}
}

// LoadMetadata builds the metadata table from a parsed file. Headers are
// matched loosely ("Data Cadastro" resolves to data_cadastro). A file
// missing either column yields a SchemaError.
func LoadMetadata(source string, header []string, records [][]string, mode IDMode, aliases Aliases) (*Metadata, error) {
	resolver := NewResolver(MatchLoose, DefaultAliases().Merge(aliases))
	cols, missing := resolver.Resolve(header, FieldID, FieldRegistration)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, errors.NewSchemaError(source, names)
	}

	m := NewMetadata()
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		m.Add(cell(rec, cols[FieldID]), cell(rec, cols[FieldRegistration]), mode)
	}
	return m, nil
}

// Add records one metadata row. Rows without a usable identifier are
// ignored, the first row of an identifier wins, and a malformed date is
// kept as a known entity without date.
func (m *Metadata) Add(rawID, rawDate string, mode IDMode) {
	id, ok := NormalizeID(rawID, mode)
	if !ok {
		return
	}
	if _, seen := m.dates[id]; seen {
		return
	}
	if t, ok := ParseDate(rawDate); ok {
		m.dates[id] = &t
		return
	}
	if strings.TrimSpace(rawDate) != "" {
		m.invalid++
	}
	m.dates[id] = nil
}

// Lookup returns the registration date of an identifier. found reports
// whether the identifier exists at all; date is nil when it exists with an
// unparseable date.
func (m *Metadata) Lookup(id string) (date *time.Time, found bool) {
	date, found = m.dates[id]
	return date, found
}

// Len returns the number of distinct identifiers.
func (m *Metadata) Len() int {
	return len(m.dates)
}

// InvalidDates counts rows whose date could not be parsed.
func (m *Metadata) InvalidDates() int {
	return m.invalid
}

// JoinMetadata left-joins registration dates onto the table by identifier
// and returns how many rows found no match. The row count never changes.
// Rows whose identifier fell back to the sentinel never match.
func (t *MonthTable) JoinMetadata(m *Metadata) (unmatched int) {
	if m == nil {
		return 0
	}
	t.HasRegistration = true
	for i := range t.Rows {
		row := &t.Rows[i]
		row.Registered = nil
		if !row.Reconciled {
			unmatched++
			continue
		}
		date, found := m.Lookup(row.ID)
		if !found {
			unmatched++
			continue
		}
		if date != nil {
			d := *date
			row.Registered = &d
		}
	}
	return unmatched
}
