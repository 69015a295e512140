package scores

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agentstation/scoremerge/pkg/errors"
)

// JoinKey selects what identifies one entity across the files of a month.
type JoinKey string

const (
	// JoinByID joins on the identifier alone; the name is taken from the
	// first file that provides a non-empty one.
	JoinByID JoinKey = "id"
	// JoinByIDName joins on the (identifier, name) pair, so spelling
	// variants of a name produce separate rows.
	JoinByIDName JoinKey = "id_name"
)

// ParseJoinKey validates a join key name.
func ParseJoinKey(s string) (JoinKey, error) {
	switch k := JoinKey(strings.ToLower(strings.TrimSpace(s))); k {
	case JoinByID, JoinByIDName:
		return k, nil
	case "":
		return JoinByID, nil
	default:
		return "", fmt.Errorf("unknown join key %q (want id or id_name)", s)
	}
}

// key builds the join key of an entry. Entries whose identifier fell back
// to the sentinel always include the name, so unrelated malformed rows do
// not collapse into one entity.
func (k JoinKey) key(e Entry) string {
	if k == JoinByIDName || !e.Reconciled {
		return e.ID + "\x00" + e.Name
	}
	return e.ID
}

// Merge outer-joins the category tables of one month, left to right in the
// given order. Every entity present in any table appears once in the
// result; categories it is missing from count as zero. Scores are coerced
// again through the policy, totals are summed, and rows are sorted by total
// descending with ties kept in first-seen order.
//
// Merge returns an EmptyResultError when tables is empty.
func Merge(month string, tables []*CategoryTable, opts Options) (*MonthTable, error) {
	if len(tables) == 0 {
		return nil, &errors.EmptyResultError{Month: month}
	}

	policy := opts.Numbers.Policy
	if policy == "" {
		policy = PolicyFloat
	}

	result := &MonthTable{
		Month:  month,
		Policy: policy,
	}

	labels := make(map[string]string, len(tables))
	index := make(map[string]int)
	for _, table := range tables {
		category := uniqueLabel(table.Category, labels)
		if category != table.Category {
			result.Collisions = append(result.Collisions, LabelCollision{
				Source:   table.Source,
				Label:    table.Category,
				Renamed:  category,
				Conflict: labels[table.Category],
			})
		}
		labels[category] = table.Source
		result.Categories = append(result.Categories, category)
		result.Sources = append(result.Sources, table.Source)

		for _, e := range table.Entries {
			k := opts.JoinKey.key(e)
			i, ok := index[k]
			if !ok {
				i = len(result.Rows)
				index[k] = i
				result.Rows = append(result.Rows, Row{
					ID:         e.ID,
					Name:       e.Name,
					Reconciled: e.Reconciled,
					Scores:     make(map[string]decimal.Decimal, len(tables)),
				})
			}
			row := &result.Rows[i]
			if row.Name == "" {
				row.Name = e.Name
			}
			row.Scores[category] = e.Score
		}
	}

	for i := range result.Rows {
		row := &result.Rows[i]
		total := decimal.Zero
		for _, c := range result.Categories {
			if v, ok := row.Scores[c]; ok {
				v = policy.Apply(v)
				row.Scores[c] = v
				total = total.Add(v)
			}
		}
		row.Total = policy.Apply(total)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Total.GreaterThan(result.Rows[j].Total)
	})

	return result, nil
}

// uniqueLabel returns label, or label_2, label_3, ... when taken.
func uniqueLabel(label string, taken map[string]string) string {
	if _, ok := taken[label]; !ok {
		return label
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", label, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
