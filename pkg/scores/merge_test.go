package scores

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/pkg/errors"
)

var header = []string{"Id Igreja", "Nome Igreja", "Score"}

func mustNormalize(t *testing.T, opts Options, source string, records ...[]string) *CategoryTable {
	t.Helper()
	table, err := opts.NormalizeFile(source, header, records)
	require.NoError(t, err)
	return table
}

func TestMergeScenario(t *testing.T) {
	opts := DefaultOptions()
	engagement := mustNormalize(t, opts, "score_engagement.csv", []string{"10.", "Alpha", "1.000,50"})
	quality := mustNormalize(t, opts, "score_quality.csv", []string{"10", "Alpha", "2,50"})

	for _, key := range []JoinKey{JoinByID, JoinByIDName} {
		t.Run(string(key), func(t *testing.T) {
			opts.JoinKey = key
			table, err := Merge("2024-01", []*CategoryTable{engagement, quality}, opts)
			require.NoError(t, err)

			assert.Equal(t, []string{"engagement", "quality"}, table.Categories)
			require.Len(t, table.Rows, 1)
			assert.Equal(t,
				[]string{"Id Igreja", "Nome Igreja", "Score_engagement", "Score_quality", "Score Total"},
				table.Header(DefaultLayout()))
			assert.Equal(t,
				[]string{"10", "Alpha", "1000.50", "2.50", "1003.00"},
				table.Record(table.Rows[0]))
		})
	}
}

func TestMergeIntegerPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.Numbers.Policy = PolicyInteger
	a := mustNormalize(t, opts, "score_a.csv", []string{"1", "One", "1.000,99"}, []string{"2", "Two", "0,99"})
	b := mustNormalize(t, opts, "score_b.csv", []string{"1", "One", "2,99"})

	table, err := Merge("2024-02", []*CategoryTable{a, b}, opts)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "One", "1000", "2", "1002"}, table.Record(table.Rows[0]))
	assert.Equal(t, []string{"2", "Two", "0", "0", "0"}, table.Record(table.Rows[1]))
}

func TestMergeOuterJoinCardinality(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv", []string{"1", "A", "1"}, []string{"2", "B", "1"}, []string{"3", "C", "1"})
	b := mustNormalize(t, opts, "score_b.csv", []string{"3", "C", "1"}, []string{"4", "D", "1"})
	c := mustNormalize(t, opts, "score_c.csv", []string{"5", "E", "1"})

	table, err := Merge("m", []*CategoryTable{a, b, c}, opts)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 5)
	assert.GreaterOrEqual(t, len(table.Rows), len(a.Entries))

	byID := map[string]Row{}
	for _, r := range table.Rows {
		byID[r.ID] = r
	}
	assert.True(t, byID["3"].Has("a"))
	assert.True(t, byID["3"].Has("b"))
	assert.False(t, byID["3"].Has("c"))
	assert.True(t, decimal.Zero.Equal(byID["5"].Score("a")))
	assert.True(t, decimal.NewFromInt(2).Equal(byID["3"].Total))
}

func TestMergeTotalIndependentOfOrder(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv", []string{"1", "A", "1,25"}, []string{"2", "B", "3"})
	b := mustNormalize(t, opts, "score_b.csv", []string{"2", "B", "0,75"}, []string{"3", "C", "9"})
	c := mustNormalize(t, opts, "score_c.csv", []string{"1", "A", "4"}, []string{"3", "C", "0,5"})

	totals := func(tables ...*CategoryTable) map[string]string {
		table, err := Merge("m", tables, opts)
		require.NoError(t, err)
		out := map[string]string{}
		for _, r := range table.Rows {
			out[r.ID] = r.Total.String()
			sum := decimal.Zero
			for _, cat := range table.Categories {
				sum = sum.Add(r.Score(cat))
			}
			assert.True(t, sum.Equal(r.Total))
		}
		return out
	}

	want := totals(a, b, c)
	for _, order := range [][]*CategoryTable{{c, b, a}, {b, a, c}, {c, a, b}} {
		if diff := cmp.Diff(want, totals(order...)); diff != "" {
			t.Errorf("totals depend on merge order (-want +got):\n%s", diff)
		}
	}
}

func TestMergeSortStable(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv",
		[]string{"1", "First", "5"},
		[]string{"2", "Top", "9"},
		[]string{"3", "Second", "5"},
		[]string{"4", "Third", "5"},
	)
	table, err := Merge("m", []*CategoryTable{a}, opts)
	require.NoError(t, err)

	var ids []string
	for i, r := range table.Rows {
		ids = append(ids, r.ID)
		if i > 0 {
			assert.False(t, r.Total.GreaterThan(table.Rows[i-1].Total))
		}
	}
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids)
}

func TestMergeJoinKeys(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv", []string{"7", "Igreja Central", "1"})
	b := mustNormalize(t, opts, "score_b.csv", []string{"7", "Igreja  Central", "2"})

	t.Run("id only resolves name by first value", func(t *testing.T) {
		table, err := Merge("m", []*CategoryTable{a, b}, opts)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Igreja Central", table.Rows[0].Name)
		assert.True(t, decimal.NewFromInt(3).Equal(table.Rows[0].Total))
	})

	t.Run("id and name keeps spelling variants apart", func(t *testing.T) {
		opts := opts
		opts.JoinKey = JoinByIDName
		table, err := Merge("m", []*CategoryTable{a, b}, opts)
		require.NoError(t, err)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("missing name is filled from a later file", func(t *testing.T) {
		noName := mustNormalize(t, opts, "score_c.csv", []string{"7", "", "1"})
		table, err := Merge("m", []*CategoryTable{noName, a}, opts)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Igreja Central", table.Rows[0].Name)
	})
}

func TestMergeSentinelRows(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv",
		[]string{"n/a", "Alpha", "1"},
		[]string{"-", "Beta", "2"},
		[]string{"0", "Zero", "3"},
	)
	table, err := Merge("m", []*CategoryTable{a}, opts)
	require.NoError(t, err)

	assert.Len(t, table.Rows, 3, "malformed identifiers must not collapse")
	assert.Equal(t, 2, table.Unreconciled())
	for _, r := range table.Rows {
		assert.Equal(t, "0", r.ID)
	}
}

func TestMergeLabelCollision(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_quality.csv", []string{"1", "A", "1"})
	b := mustNormalize(t, opts, "Score_Quality.txt", []string{"1", "A", "2"})
	c := mustNormalize(t, opts, "quality.csv", []string{"1", "A", "4"})

	table, err := Merge("m", []*CategoryTable{a, b, c}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"quality", "quality_2", "quality_3"}, table.Categories)
	require.Len(t, table.Collisions, 2)
	assert.Equal(t, LabelCollision{Source: "Score_Quality.txt", Label: "quality", Renamed: "quality_2", Conflict: "score_quality.csv"}, table.Collisions[0])
	assert.True(t, decimal.NewFromInt(7).Equal(table.Rows[0].Total))
}

func TestMergeDuplicateKeyInFile(t *testing.T) {
	opts := DefaultOptions()
	a := mustNormalize(t, opts, "score_a.csv", []string{"1", "A", "1"}, []string{"1.", "A", "5"})
	table, err := Merge("m", []*CategoryTable{a}, opts)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(table.Rows[0].Total))
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge("2024-05", nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsEmptyResult(err))
}

func TestNormalizeFileSchemaMismatch(t *testing.T) {
	_, err := DefaultOptions().NormalizeFile("score_x.csv", []string{"id igreja", "pontos"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Contains(t, err.Error(), "entity name")
	assert.Contains(t, err.Error(), "score")
}

func TestNormalizeFileRaggedRecords(t *testing.T) {
	table, err := DefaultOptions().NormalizeFile("score_x.csv", header, [][]string{
		{"1", "A"},
		{"", "", ""},
		{"2", "B", "3,5", "extra"},
	})
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	assert.True(t, decimal.Zero.Equal(table.Entries[0].Score))
	assert.True(t, dec("3.5").Equal(table.Entries[1].Score))
	assert.Equal(t, "x", table.Category)
}

func TestParseJoinKey(t *testing.T) {
	k, err := ParseJoinKey("")
	require.NoError(t, err)
	assert.Equal(t, JoinByID, k)
	k, err = ParseJoinKey("ID_NAME")
	require.NoError(t, err)
	assert.Equal(t, JoinByIDName, k)
	_, err = ParseJoinKey("name")
	assert.Error(t, err)
}
