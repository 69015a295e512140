package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverStrict(t *testing.T) {
	r := NewResolver(MatchStrict, nil)

	t.Run("case and whitespace", func(t *testing.T) {
		cols, missing := r.Resolve([]string{" ID Igreja ", "NOME IGREJA", "Score"}, FieldID, FieldName, FieldScore)
		assert.Empty(t, missing)
		assert.Equal(t, map[Field]int{FieldID: 0, FieldName: 1, FieldScore: 2}, cols)
	})

	t.Run("byte order mark on first header", func(t *testing.T) {
		cols, missing := r.Resolve([]string{"\ufeffid igreja", "nome igreja", "score"}, FieldID, FieldName, FieldScore)
		assert.Empty(t, missing)
		assert.Equal(t, 0, cols[FieldID])
	})

	t.Run("alias priority", func(t *testing.T) {
		cols, _ := r.Resolve([]string{"id", "id igreja", "nome", "score"}, FieldID)
		assert.Equal(t, 1, cols[FieldID])
	})

	t.Run("punctuation is significant", func(t *testing.T) {
		_, missing := r.Resolve([]string{"id_igreja", "nome-igreja", "score"}, FieldID, FieldName, FieldScore)
		assert.Equal(t, []Field{FieldID, FieldName}, missing)
	})

	t.Run("missing everything", func(t *testing.T) {
		_, missing := r.Resolve([]string{"a", "b"}, FieldID, FieldName, FieldScore)
		assert.Equal(t, []Field{FieldID, FieldName, FieldScore}, missing)
	})
}

func TestResolverLoose(t *testing.T) {
	r := NewResolver(MatchLoose, nil)
	for _, header := range []string{"data_cadastro", "Data Cadastro", "DATA-CADASTRO", " dáta cadastro "} {
		t.Run(header, func(t *testing.T) {
			cols, missing := r.Resolve([]string{"ID", header}, FieldID, FieldRegistration)
			assert.Empty(t, missing)
			assert.Equal(t, 1, cols[FieldRegistration])
		})
	}
}

func TestAliasesMerge(t *testing.T) {
	merged := DefaultAliases().Merge(Aliases{FieldScore: {"pontos"}, FieldName: nil})
	assert.Equal(t, []string{"pontos"}, merged[FieldScore])
	assert.Equal(t, DefaultAliases()[FieldName], merged[FieldName])
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		file   string
		prefix string
		want   string
	}{
		{"score_engagement.csv", "", "engagement"},
		{"/data/2024-01/Score_Quality.CSV", "score_", "quality"},
		{" score_ growth .xlsx", "score_", "growth"},
		{"attendance.csv", "score_", "attendance"},
		{"score_.csv", "score_", "score_"},
		{"kpi-visits.txt", "kpi-", "visits"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryLabel(tt.file, tt.prefix))
		})
	}
	assert.Equal(t, "Score_engagement", ColumnName("engagement"))
}
