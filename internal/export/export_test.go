package export

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/pkg/scores"
)

func monthTable(t *testing.T) *scores.MonthTable {
	t.Helper()
	reg := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	return &scores.MonthTable{
		Month:      "2024-01",
		Policy:     scores.PolicyFloat,
		Categories: []string{"engagement", "quality"},
		Rows: []scores.Row{
			{
				ID: "10", Name: "Alpha", Reconciled: true,
				Scores: map[string]decimal.Decimal{
					"engagement": decimal.RequireFromString("1000.5"),
					"quality":    decimal.RequireFromString("2.5"),
				},
				Total:      decimal.RequireFromString("1003"),
				Registered: &reg,
			},
			{
				ID: "0", Name: "Sem Id", Reconciled: false,
				Scores: map[string]decimal.Decimal{"quality": decimal.RequireFromString("1")},
				Total:  decimal.RequireFromString("1"),
			},
		},
		HasRegistration: true,
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "planilha_unificada_2024-01.csv", FileName("", "2024-01"))
	assert.Equal(t, "scores-2024-01.csv", FileName("scores-{month}.csv", "2024-01"))
	assert.Equal(t, "x.csv", FileName("../../x.csv", "2024-01"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, monthTable(t), nil, scores.DefaultLayout()))

	want := "Id Igreja,Nome Igreja,Score_engagement,Score_quality,Score Total,Data Cadastro\n" +
		"10,Alpha,1000.50,2.50,1003.00,2020-03-15\n" +
		"0,Sem Id,0.00,1.00,1.00,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVSubset(t *testing.T) {
	table := monthTable(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table, table.Rows[:1], scores.Layout{IDColumn: "Id", NameColumn: "Nome"}))
	assert.Equal(t, "Id,Nome,Score_engagement,Score_quality,Score Total,Data Cadastro\n10,Alpha,1000.50,2.50,1003.00,2020-03-15\n", buf.String())
}

func TestWriteMonthFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteMonthFile(dir, "", monthTable(t), scores.DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "planilha_unificada_2024-01.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "10,Alpha,1000.50,2.50,1003.00,2020-03-15")
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "month_2024_01", TableName("2024-01"))
	assert.Equal(t, "month_março_2024", TableName("Março 2024"))
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	integer := monthTable(t)
	integer.Month = "2024-02"
	integer.Policy = scores.PolicyInteger
	integer.HasRegistration = false

	ctx := context.Background()
	require.NoError(t, WriteSQLite(ctx, path, []*scores.MonthTable{monthTable(t), integer}))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var months int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM months`).Scan(&months))
	assert.Equal(t, 2, months)

	var (
		name       string
		total      float64
		date       sql.NullString
		reconciled int
	)
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT name, total, registration_date, reconciled FROM month_2024_01 WHERE id = '10'`,
	).Scan(&name, &total, &date, &reconciled))
	assert.Equal(t, "Alpha", name)
	assert.InDelta(t, 1003.0, total, 0.001)
	assert.Equal(t, "2020-03-15", date.String)
	assert.Equal(t, 1, reconciled)

	var engagement int64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT score_engagement FROM month_2024_02 WHERE id = '10'`,
	).Scan(&engagement))
	assert.Equal(t, int64(1000), engagement)

	var unreconciled int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT unreconciled FROM months WHERE month = '2024-01'`,
	).Scan(&unreconciled))
	assert.Equal(t, 1, unreconciled)
}

func TestWriteSQLiteTableNameClash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	underscore := monthTable(t)
	underscore.Month = "2024_01"
	suffixed := monthTable(t)
	suffixed.Month = "2024-01-2"

	ctx := context.Background()
	require.NoError(t, WriteSQLite(ctx, path, []*scores.MonthTable{monthTable(t), underscore, suffixed}))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `SELECT month, table_name FROM months ORDER BY month`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	names := map[string]string{}
	for rows.Next() {
		var month, table string
		require.NoError(t, rows.Scan(&month, &table))
		names[month] = table
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]string{
		"2024-01":   "month_2024_01",
		"2024_01":   "month_2024_01_2",
		"2024-01-2": "month_2024_01_2_2",
	}, names)

	for _, table := range names {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quote(table)).Scan(&count))
		assert.Equal(t, 2, count, table)
	}
}
