package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `id,category,amount
1,A,10.5
2,B,
3,A,30.25
`

func TestReadFrom_CSV(t *testing.T) {
	raw, err := NewTableReader().ReadFrom(strings.NewReader(sampleCSV), "sales.csv")
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}

	if len(raw.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(raw.Columns))
	}
	if raw.Columns[0].Name != "id" || raw.Columns[2].Name != "amount" {
		t.Errorf("header misread: %v", raw.ColumnNames())
	}
	if raw.RowCount() != 3 {
		t.Errorf("row count = %d, want 3", raw.RowCount())
	}
	if raw.Columns[2].Cells[1] != nil {
		t.Errorf("blank cell should be nil, got %v", raw.Columns[2].Cells[1])
	}
	if raw.Columns[2].Cells[0] != "10.5" {
		t.Errorf("cell value = %v, want 10.5", raw.Columns[2].Cells[0])
	}
}

func TestReadFrom_RaggedCSVPadded(t *testing.T) {
	ragged := "a,b,c\n1,2,3\n4,5\n"
	raw, err := NewTableReader().ReadFrom(strings.NewReader(ragged), "ragged.csv")
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if raw.Columns[2].Cells[1] != nil {
		t.Errorf("short row should pad with nil, got %v", raw.Columns[2].Cells[1])
	}
}

func TestReadFrom_Xlsx(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"name", "score"},
		{"alice", 10},
		{"bob", 20},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	raw, err := NewTableReader().ReadFrom(&buf, "scores.xlsx")
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(raw.Columns) != 2 || raw.RowCount() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", len(raw.Columns), raw.RowCount())
	}
	if raw.Columns[0].Cells[0] != "alice" {
		t.Errorf("cell = %v, want alice", raw.Columns[0].Cells[0])
	}
}

func TestReadFrom_UnsupportedExtension(t *testing.T) {
	_, err := NewTableReader().ReadFrom(strings.NewReader("{}"), "data.json")
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("got %v, want unsupported file type error", err)
	}
}

func TestReadFrom_EmptyFile(t *testing.T) {
	_, err := NewTableReader().ReadFrom(strings.NewReader(""), "empty.csv")
	if err == nil {
		t.Fatal("an empty file must error, not yield a table")
	}
}

func TestRead_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	raw, err := NewTableReader().Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if raw.RowCount() != 3 {
		t.Errorf("row count = %d, want 3", raw.RowCount())
	}
}
