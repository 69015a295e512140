package scores

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/scoremerge/pkg/constants"
)

// Field is a logical column every source must provide.
type Field string

// Logical fields.
const (
	FieldID           Field = "entity id"
	FieldName         Field = "entity name"
	FieldScore        Field = "score"
	FieldRegistration Field = "data_cadastro"
)

// MatchMode controls how header names are compared with aliases.
type MatchMode int

const (
	// MatchStrict ignores case and surrounding whitespace.
	MatchStrict MatchMode = iota
	// MatchLoose also ignores accents and every non-alphanumeric character.
	MatchLoose
)

// Aliases lists the accepted header names of each logical field, in
// priority order.
type Aliases map[Field][]string

// DefaultAliases returns the header names of the original score exports
// plus English fallbacks.
func DefaultAliases() Aliases {
	return Aliases{
		FieldID:           {"id igreja", "id", "entity id"},
		FieldName:         {"nome igreja", "nome", "entity name"},
		FieldScore:        {"score"},
		FieldRegistration: {"data_cadastro", "registration date"},
	}
}

// Merge returns a copy of a where the fields set in other replace a's.
func (a Aliases) Merge(other Aliases) Aliases {
	out := make(Aliases, len(a))
	for f, names := range a {
		out[f] = names
	}
	for f, names := range other {
		if len(names) > 0 {
			out[f] = names
		}
	}
	return out
}

// Resolver maps the header row of a file onto logical fields.
type Resolver struct {
	Mode    MatchMode
	Aliases Aliases
}

// NewResolver creates a resolver. Nil aliases mean DefaultAliases.
func NewResolver(mode MatchMode, aliases Aliases) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Resolver{Mode: mode, Aliases: aliases}
}

// Resolve returns the column index of every requested field and the fields
// that could not be found. Aliases are tried in order; for one alias the
// leftmost matching column wins.
func (r *Resolver) Resolve(header []string, fields ...Field) (map[Field]int, []Field) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = r.normalize(h)
	}

	found := make(map[Field]int, len(fields))
	var missing []Field
	for _, field := range fields {
		idx := r.find(normalized, field)
		if idx < 0 {
			missing = append(missing, field)
			continue
		}
		found[field] = idx
	}
	return found, missing
}

func (r *Resolver) find(normalized []string, field Field) int {
	for _, alias := range r.Aliases[field] {
		want := r.normalize(alias)
		if want == "" {
			continue
		}
		for i, have := range normalized {
			if have == want {
				return i
			}
		}
	}
	return -1
}

func (r *Resolver) normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	if r.Mode != MatchLoose {
		return s
	}

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	return strings.Map(func(c rune) rune {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			return c
		}
		return -1
	}, s)
}

// CategoryLabel derives a category name from a source file name: the base
// name without extension, case-folded and trimmed, with prefix removed.
// "Score_Engagement.csv" becomes "engagement".
func CategoryLabel(fileName, prefix string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	label := strings.ToLower(strings.TrimSpace(base))

	if prefix == "" {
		prefix = constants.DefaultCategoryPrefix
	}
	if trimmed := strings.TrimSpace(strings.TrimPrefix(label, strings.ToLower(prefix))); trimmed != "" {
		label = trimmed
	}
	return label
}

// ColumnName returns the unified table header of a category.
func ColumnName(category string) string {
	return constants.ScoreColumnPrefix + category
}
