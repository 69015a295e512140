package scores

import (
	"strings"
)

// View is the display-time selection over a month table. It never changes
// the table itself.
type View struct {
	// Filter keeps rows whose name contains it, case-insensitively.
	Filter string
	// Top keeps the first Top rows; zero or less keeps all.
	Top int
}

// Apply returns the selected rows in table order.
func (v View) Apply(t *MonthTable) []Row {
	return TopN(FilterByName(t.Rows, v.Filter), v.Top)
}

// FilterByName keeps rows whose name contains query, ignoring case.
func FilterByName(rows []Row, query string) []Row {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	var out []Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Name), query) {
			out = append(out, r)
		}
	}
	return out
}

// TopN returns the first n rows, or all rows when n <= 0.
func TopN(rows []Row, n int) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
