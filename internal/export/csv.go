// Package export writes unified month tables to files.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// FileName expands the export template for a month. An empty template
// uses the default planilha_unificada_{month}.csv.
func FileName(template, month string) string {
	if template == "" {
		template = constants.DefaultExportTemplate
	}
	name := strings.ReplaceAll(template, constants.MonthPlaceholder, month)
	return filepath.Base(name)
}

// WriteCSV writes rows of a month table as comma delimited UTF-8. A nil
// rows slice writes the whole table.
func WriteCSV(w io.Writer, t *scores.MonthTable, rows []scores.Row, layout scores.Layout) error {
	if rows == nil {
		rows = t.Rows
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header(layout)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(t.Record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthFile writes the full table of a month into dir and returns the
// path written.
func WriteMonthFile(dir, template string, t *scores.MonthTable, layout scores.Layout) (string, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, FileName(template, t.Month))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions) //nolint:gosec // export path
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	if err := WriteCSV(f, t, nil, layout); err != nil {
		_ = f.Close()
		return "", errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapIO("close", path, err)
	}
	return path, nil
}
