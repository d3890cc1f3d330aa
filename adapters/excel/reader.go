package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datapulse/domain/table"

	"github.com/xuri/excelize/v2"
)

// TableReader reads Excel and CSV files into a RawTable. The first row is
// treated as the header; trailing short rows are padded with blanks so every
// column carries the same row count.
type TableReader struct{}

// NewTableReader creates a reader handling both xlsx and csv
func NewTableReader() *TableReader {
	return &TableReader{}
}

// Read parses the named file from disk
func (r *TableReader) Read(path string) (*table.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.ReadFrom(f, filepath.Base(path))
}

// ReadFrom parses an in-memory upload; the name's extension selects the format
func (r *TableReader) ReadFrom(reader io.Reader, name string) (*table.RawTable, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return r.readCSV(reader)
	case ".xlsx", ".xls":
		return r.readExcel(reader)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", name)
	}
}

func (r *TableReader) readCSV(reader io.Reader) (*table.RawTable, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rowsToTable(records)
}

func (r *TableReader) readExcel(reader io.Reader) (*table.RawTable, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rowsToTable(rows)
}

// rowsToTable pivots header+rows into named columns of untyped cells.
// Blank strings become nil cells so the schema layer sees explicit nulls.
func rowsToTable(rows [][]string) (*table.RawTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no rows")
	}

	header := rows[0]
	data := rows[1:]

	columns := make([]table.RawColumn, len(header))
	for c, name := range header {
		cells := make([]interface{}, len(data))
		for r, row := range data {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				cells[r] = row[c]
			}
		}
		columns[c] = table.RawColumn{Name: name, Cells: cells}
	}
	return &table.RawTable{Columns: columns}, nil
}
