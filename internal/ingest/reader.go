package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	pkgerrors "github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Table is the raw cell content of one source file.
type Table struct {
	Header  []string
	Records [][]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidate delimiters, in tie-break order
var delimiters = []rune{',', ';', '\t', '|'}

// Supported reports whether a file name has a readable source extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv", ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xlsm"
}

// Reader reads source files into raw tables.
type Reader struct {
	// Delimiter forces the field separator of text files. Zero detects it
	// from the header line.
	Delimiter rune
}

// ReadFile reads a delimited text file or the first sheet of a workbook.
func (r Reader) ReadFile(path string) (*Table, error) {
	name := filepath.Base(path)
	if isWorkbook(name) {
		return readWorkbook(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.WrapIO("read", path, err)
	}
	return r.ParseDelimited(name, data)
}

// ParseDelimited parses delimited text. A UTF-8 byte order mark is dropped
// and input that is not valid UTF-8 is decoded as Windows-1252.
func (r Reader) ParseDelimited(name string, data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, pkgerrors.NewParseError("csv", name, "cannot decode text", err)
		}
		data = decoded
	}

	delim := r.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(data, name)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, &pkgerrors.ParseError{Format: "csv", File: name, Line: perr.Line, Message: perr.Err.Error(), Err: err}
		}
		return nil, pkgerrors.WrapParse("csv", name, err)
	}
	return split(name, "csv", rows)
}

// DetectDelimiter picks the candidate that occurs most often, outside
// quotes, on the first line. Files ending in .tsv default to a tab, every
// other file to a comma.
func DetectDelimiter(data []byte, name string) rune {
	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	counts := make(map[rune]int, len(delimiters))
	quoted := false
	for _, c := range string(line) {
		if c == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[c]++
		}
	}

	best, bestCount := rune(0), 0
	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	if best != 0 {
		return best
	}
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return '\t'
	}
	return ','
}

// readWorkbook reads the first sheet of an Excel workbook. Numeric cells
// are rendered in the comma-decimal form the score parser expects, except
// when their display value is a date.
func readWorkbook(path string) (*Table, error) {
	name := filepath.Base(path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, pkgerrors.WrapParse("xlsx", name, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.NewParseError("xlsx", name, "workbook has no sheets", nil)
	}
	sheet := sheets[0]

	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, pkgerrors.WrapParse("xlsx", name, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, pkgerrors.WrapParse("xlsx", name, err)
	}

	for r, row := range display {
		for c, shown := range row {
			if r >= len(raw) || c >= len(raw[r]) || raw[r][c] == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil || (typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset) {
				continue
			}
			if _, isDate := scores.ParseDate(shown); isDate {
				continue
			}
			if v, err := strconv.ParseFloat(raw[r][c], 64); err == nil {
				row[c] = strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
			}
		}
	}
	return split(name, "xlsx", display)
}

func split(name, format string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.NewParseError(format, name, "no header row", nil)
	}
	return &Table{Header: rows[0], Records: rows[1:]}, nil
}
