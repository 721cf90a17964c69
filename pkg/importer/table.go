package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/xuri/excelize/v2"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NormalizeHeaderKey lowercases a header and collapses every run of other
// characters to "_", so "Contributor Zip" and "contributor_zip" agree.
func NormalizeHeaderKey(header string) string {
	key := nonAlphanumeric.ReplaceAllString(strings.ToLower(header), "_")
	return strings.Trim(key, "_")
}

// Row is one data row keyed by header key.
type Row struct {
	// Number is the 1-based row in the source file.
	Number int
	Values map[string]string
}

// Get returns the trimmed value under key, or "" when absent.
func (r Row) Get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

// Table is a parsed tabular file.
type Table struct {
	// Headers are the disambiguated header keys in column order.
	Headers []string
	Rows    []Row
}

// Has reports whether the table has a column with key.
func (t *Table) Has(key string) bool {
	return ectolinq.Contains(t.Headers, key)
}

// HeaderKeys normalizes raw headers. A repeated key keeps its first
// occurrence and later ones become key_2, key_3, ... Blank headers become
// column_<n>.
func HeaderKeys(raw []string) []string {
	keys := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		base := NormalizeHeaderKey(h)
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		key := base
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

// newTable builds a table from a header record and data records. Row numbers
// start at 2; blank records are skipped.
func newTable(header []string, records [][]string) *Table {
	table := &Table{Headers: HeaderKeys(header)}
	for i, record := range records {
		if isBlank(record) {
			continue
		}
		values := make(map[string]string, len(table.Headers))
		for j, key := range table.Headers {
			if j < len(record) {
				values[key] = record[j]
			}
		}
		table.Rows = append(table.Rows, Row{Number: i + 2, Values: values})
	}
	return table
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadCSV parses a delimited text file whose first record is the header.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}
	return newTable(records[0], records[1:]), nil
}

// ReadXLSX parses a worksheet whose first row is the header. An empty sheet
// name selects the first sheet.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !ectolinq.Contains(sheets, sheet) {
		return nil, fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	return newTable(rows[0], rows[1:]), nil
}

// ReadTable dispatches on the file extension.
func ReadTable(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	}
	return nil, fmt.Errorf("unsupported file type %q (use .csv, .txt, .xlsx or .xlsm)", filepath.Ext(path))
}
