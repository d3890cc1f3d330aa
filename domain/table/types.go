package table

import (
	"fmt"
	"strconv"
	"time"
)

// ColumnType is the semantic type assigned to a column during inference
type ColumnType string

const (
	TypeInteger     ColumnType = "integer"
	TypeFloat       ColumnType = "float"
	TypeCategorical ColumnType = "categorical"
	TypeBoolean     ColumnType = "boolean"
	TypeDatetime    ColumnType = "datetime"
	TypeText        ColumnType = "text"
)

// IsNumeric reports whether columns of this type participate in numeric analysis
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// RawColumn holds one named column of untyped cells as read from a source file.
// Cells are string, float64, int, bool or nil (blank).
type RawColumn struct {
	Name  string        `json:"name"`
	Cells []interface{} `json:"cells"`
}

// RawTable is an ordered set of raw columns. Column count and row count are
// fixed once loaded; consistency is verified by the schema inferencer.
type RawTable struct {
	Columns []RawColumn `json:"columns"`
}

// RowCount returns the number of rows based on the first column
func (r *RawTable) RowCount() int {
	if len(r.Columns) == 0 {
		return 0
	}
	return len(r.Columns[0].Cells)
}

// ColumnNames returns the column names in order
func (r *RawTable) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnSchema describes the inferred type and normalization rule for one column.
// Immutable after inference.
type ColumnSchema struct {
	Name         string     `json:"name"`
	OriginalName string     `json:"original_name"`
	Type         ColumnType `json:"type"`
	Nullable     bool       `json:"nullable"`
	// DatetimeLayout is the layout the column's values parsed against,
	// recorded so Apply stays deterministic for datetime columns.
	DatetimeLayout string `json:"datetime_layout,omitempty"`
}

// Value is a typed cell in a NormalizedTable. Missing values carry an explicit
// null marker and are never coerced to zero or empty string.
type Value struct {
	Type ColumnType `json:"type"`
	Null bool       `json:"null"`

	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Bool  bool      `json:"bool,omitempty"`
	Time  time.Time `json:"time,omitempty"`
	Str   string    `json:"str,omitempty"`
}

// NewNullValue creates the null marker for a column of the given type
func NewNullValue(t ColumnType) Value {
	return Value{Type: t, Null: true}
}

// NewIntValue creates an integer value
func NewIntValue(v int64) Value {
	return Value{Type: TypeInteger, Int: v}
}

// NewFloatValue creates a float value
func NewFloatValue(v float64) Value {
	return Value{Type: TypeFloat, Float: v}
}

// NewBoolValue creates a boolean value
func NewBoolValue(v bool) Value {
	return Value{Type: TypeBoolean, Bool: v}
}

// NewTimeValue creates a datetime value
func NewTimeValue(v time.Time) Value {
	return Value{Type: TypeDatetime, Time: v}
}

// NewStringValue creates a categorical or text value
func NewStringValue(t ColumnType, v string) Value {
	return Value{Type: t, Str: v}
}

// AsFloat returns the numeric content of an integer or float value
func (v Value) AsFloat() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Type {
	case TypeInteger:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	}
	return 0, false
}

// Label returns the value rendered for frequency counting and display
func (v Value) Label() string {
	if v.Null {
		return "<null>"
	}
	switch v.Type {
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeDatetime:
		return v.Time.Format(time.RFC3339)
	case TypeCategorical, TypeText:
		return v.Str
	}
	return fmt.Sprintf("<%s>", v.Type)
}

// NormalizedTable is a RawTable after schema application: every cell in a
// column shares the column's inferred type, missing cells are explicit nulls.
// Analyzers receive it read-only and never mutate it.
type NormalizedTable struct {
	Schemas []ColumnSchema `json:"schemas"`
	Columns [][]Value      `json:"columns"`
}

// RowCount returns the number of rows
func (t *NormalizedTable) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// ColumnCount returns the number of columns
func (t *NormalizedTable) ColumnCount() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1
func (t *NormalizedTable) ColumnIndex(name string) int {
	for i, s := range t.Schemas {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of the named column
func (t *NormalizedTable) Column(name string) ([]Value, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	return t.Columns[idx], true
}

// NumericColumns returns the names of integer and float columns in order
func (t *NormalizedTable) NumericColumns() []string {
	var names []string
	for _, s := range t.Schemas {
		if s.Type.IsNumeric() {
			names = append(names, s.Name)
		}
	}
	return names
}

// NumericColumn extracts a column as float64 values plus a null mask.
// Null cells hold 0 in the slice and true in the mask.
func (t *NormalizedTable) NumericColumn(name string) ([]float64, []bool, bool) {
	cells, ok := t.Column(name)
	if !ok {
		return nil, nil, false
	}
	values := make([]float64, len(cells))
	nulls := make([]bool, len(cells))
	for i, cell := range cells {
		if f, ok := cell.AsFloat(); ok {
			values[i] = f
		} else {
			nulls[i] = true
		}
	}
	return values, nulls, true
}
