package schema

import (
	"reflect"
	"testing"

	"datapulse/domain/core"
	"datapulse/domain/table"
)

func rawColumn(name string, cells ...interface{}) table.RawColumn {
	return table.RawColumn{Name: name, Cells: cells}
}

func TestInfer_TypeAssignments(t *testing.T) {
	tests := []struct {
		name     string
		cells    []interface{}
		want     table.ColumnType
		nullable bool
	}{
		{"integers", []interface{}{"1", "2", "3", "42"}, table.TypeInteger, false},
		{"floats", []interface{}{"1.5", "2.25", "3.0"}, table.TypeFloat, false},
		{"currency_floats", []interface{}{"$1,200.50", "$900.25", "(3.5)"}, table.TypeFloat, false},
		{"booleans_mixed_case", []interface{}{"TRUE", "False", "true"}, table.TypeBoolean, false},
		{"booleans_yes_no", []interface{}{"yes", "NO", "Yes", "no"}, table.TypeBoolean, false},
		{"dates", []interface{}{"2024-01-01", "2024-02-15", "2023-12-31"}, table.TypeDatetime, false},
		{"categorical", []interface{}{"A", "B", "A", "A", "B", "A", "B", "A"}, table.TypeCategorical, false},
		{"all_null", []interface{}{nil, "", "  ", "N/A"}, table.TypeText, true},
		{"nullable_integers", []interface{}{"1", nil, "3", "4"}, table.TypeInteger, true},
	}

	inf := NewInferencer(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &table.RawTable{Columns: []table.RawColumn{rawColumn("col", tt.cells...)}}
			schemas, err := inf.Infer(raw)
			if err != nil {
				t.Fatalf("Infer failed: %v", err)
			}
			if schemas[0].Type != tt.want {
				t.Errorf("got type %s, want %s", schemas[0].Type, tt.want)
			}
			if schemas[0].Nullable != tt.nullable {
				t.Errorf("got nullable=%v, want %v", schemas[0].Nullable, tt.nullable)
			}
		})
	}
}

func TestInfer_BooleanBeatsCategorical(t *testing.T) {
	// A low-cardinality true/false column must infer boolean, never categorical
	cells := make([]interface{}, 40)
	for i := range cells {
		if i%3 == 0 {
			cells[i] = "True"
		} else {
			cells[i] = "FALSE"
		}
	}
	raw := &table.RawTable{Columns: []table.RawColumn{rawColumn("active", cells...)}}

	schemas, err := NewInferencer(DefaultConfig()).Infer(raw)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if schemas[0].Type != table.TypeBoolean {
		t.Errorf("got %s, want boolean", schemas[0].Type)
	}
}

func TestInfer_ShapeErrors(t *testing.T) {
	inf := NewInferencer(DefaultConfig())

	_, err := inf.Infer(&table.RawTable{})
	if !core.IsSchemaError(err) {
		t.Errorf("zero columns: got %v, want schema error", err)
	}

	ragged := &table.RawTable{Columns: []table.RawColumn{
		rawColumn("a", "1", "2", "3"),
		rawColumn("b", "x"),
	}}
	_, err = inf.Infer(ragged)
	if !core.IsSchemaError(err) {
		t.Errorf("ragged rows: got %v, want schema error", err)
	}
}

func TestApply_UnparsableCellsBecomeNull(t *testing.T) {
	raw := &table.RawTable{Columns: []table.RawColumn{
		rawColumn("amount", "10", "20", "30", "40", "50", "60"),
	}}
	inf := NewInferencer(DefaultConfig())
	schemas, err := inf.Infer(raw)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}

	// Corrupt one cell after inference; Apply must null it, not fail
	raw.Columns[0].Cells[2] = "not-a-number"
	normalized, err := inf.Apply(raw, schemas)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	cells, _ := normalized.Column("amount")
	if !cells[2].Null {
		t.Errorf("unparsable cell should be null, got %+v", cells[2])
	}
	if cells[0].Null || cells[0].Int != 10 {
		t.Errorf("valid cell mangled: %+v", cells[0])
	}
}

func TestInferApply_Idempotent(t *testing.T) {
	raw := &table.RawTable{Columns: []table.RawColumn{
		rawColumn("id", "1", "2", "3", "4", "5"),
		rawColumn("price", "1.5", "2.75", nil, "4.25", "9.99"),
		rawColumn("active", "true", "FALSE", "yes", "no", "t"),
		rawColumn("joined", "2024-01-01", "2024-02-02", "2024-03-03", nil, "2024-05-05"),
		rawColumn("note", "alpha", "beta", "alpha", "gamma", "beta"),
	}}

	inf := NewInferencer(DefaultConfig())
	schemas, err := inf.Infer(raw)
	if err != nil {
		t.Fatalf("first Infer failed: %v", err)
	}
	first, err := inf.Apply(raw, schemas)
	if err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}

	// Round-trip: rebuild a raw table from the normalized labels and run the
	// whole inference again. The result must be identical.
	rebuilt := &table.RawTable{Columns: make([]table.RawColumn, len(first.Schemas))}
	for c, s := range first.Schemas {
		cells := make([]interface{}, first.RowCount())
		for r, v := range first.Columns[c] {
			if !v.Null {
				cells[r] = v.Label()
			}
		}
		rebuilt.Columns[c] = table.RawColumn{Name: s.Name, Cells: cells}
	}

	schemas2, err := inf.Infer(rebuilt)
	if err != nil {
		t.Fatalf("second Infer failed: %v", err)
	}
	second, err := inf.Apply(rebuilt, schemas2)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}

	for c := range first.Columns {
		if first.Schemas[c].Type != second.Schemas[c].Type {
			t.Errorf("column %s: type changed %s -> %s",
				first.Schemas[c].Name, first.Schemas[c].Type, second.Schemas[c].Type)
		}
		for r := range first.Columns[c] {
			a, b := first.Columns[c][r], second.Columns[c][r]
			if a.Null != b.Null || a.Label() != b.Label() {
				t.Errorf("column %s row %d: %q != %q", first.Schemas[c].Name, r, a.Label(), b.Label())
			}
		}
	}
}

func TestCleanColumnNames(t *testing.T) {
	got := cleanColumnNames([]string{"Order ID", "Total ($)", "", "Order ID"})
	want := []string{"order_id", "total", "column_3", "order_id_2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
