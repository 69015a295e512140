package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// TableName returns the SQLite table name derived from a month. Distinct
// months may share a name ("2024-01", "2024_01"); WriteSQLite suffixes the
// later ones and records the final name in the months table.
func TableName(month string) string {
	var b strings.Builder
	b.WriteString("month_")
	for _, r := range strings.ToLower(month) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// WriteSQLite writes a snapshot database with one table per month and a
// months index table. An existing file at path is replaced.
func WriteSQLite(ctx context.Context, path string, tables []*scores.MonthTable) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE "months" (
		"month" TEXT PRIMARY KEY,
		"table_name" TEXT NOT NULL,
		"policy" TEXT NOT NULL,
		"categories" TEXT NOT NULL,
		"entities" INTEGER NOT NULL,
		"unreconciled" INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create months table: %w", err)
	}

	taken := make(map[string]bool, len(tables))
	for _, t := range tables {
		name := uniqueTableName(TableName(t.Month), taken)
		taken[name] = true
		if err := writeMonth(ctx, tx, t, name); err != nil {
			return fmt.Errorf("month %s: %w", t.Month, err)
		}
	}
	return tx.Commit()
}

// uniqueTableName returns name, or name_2, name_3, ... when taken.
func uniqueTableName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func writeMonth(ctx context.Context, tx *sql.Tx, t *scores.MonthTable, name string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO "months" VALUES (?, ?, ?, ?, ?, ?)`,
		t.Month, name, string(t.Policy), strings.Join(t.Categories, ","), len(t.Rows), t.Unreconciled(),
	); err != nil {
		return err
	}

	scoreType := "REAL"
	if t.Policy == scores.PolicyInteger {
		scoreType = "INTEGER"
	}
	cols := []string{"id", "name", "reconciled"}
	defs := []string{`"id" TEXT NOT NULL`, `"name" TEXT`, `"reconciled" INTEGER NOT NULL`}
	for _, c := range t.Categories {
		col := "score_" + c
		cols = append(cols, col)
		defs = append(defs, quote(col)+" "+scoreType)
	}
	cols = append(cols, "total")
	defs = append(defs, `"total" `+scoreType)
	if t.HasRegistration {
		cols = append(cols, "registration_date")
		defs = append(defs, `"registration_date" TEXT`)
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quote(name)+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quote(name)+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range t.Rows {
		args := make([]any, 0, len(cols))
		reconciled := 0
		if r.Reconciled {
			reconciled = 1
		}
		args = append(args, r.ID, r.Name, reconciled)
		for _, c := range t.Categories {
			args = append(args, sqliteScore(t.Policy, r, c))
		}
		args = append(args, sqliteNumber(t.Policy, r.Total))
		if t.HasRegistration {
			var date any
			if r.Registered != nil {
				date = r.Registered.Format(constants.RegistrationDateLayout)
			}
			args = append(args, date)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX `+quote("idx_"+name+"_id")+` ON `+quote(name)+`("id")`)
	return err
}

func sqliteScore(p scores.Policy, r scores.Row, category string) any {
	return sqliteNumber(p, r.Score(category))
}

func sqliteNumber(p scores.Policy, d decimal.Decimal) any {
	if p == scores.PolicyInteger {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
