package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"datapulse/domain/core"
	"datapulse/domain/table"
)

// Inferencer assigns a semantic type to each raw column and applies the
// resulting schemas to produce a normalized table. Classification order is
// boolean > integer > float > datetime > categorical > text, most specific
// first, so a column matching several rules gets the narrowest type.
type Inferencer struct {
	cfg Config
}

// Config defines the inference thresholds
type Config struct {
	// CategoricalCardinalityRatio is the max distinct/row ratio for a string
	// column to be treated as categorical rather than free text.
	CategoricalCardinalityRatio float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{CategoricalCardinalityRatio: 0.5}
}

// NewInferencer creates an inferencer with the given config
func NewInferencer(cfg Config) *Inferencer {
	if cfg.CategoricalCardinalityRatio <= 0 {
		cfg.CategoricalCardinalityRatio = DefaultConfig().CategoricalCardinalityRatio
	}
	return &Inferencer{cfg: cfg}
}

// datetimeLayouts are the accepted date/time patterns, tried in order
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

var (
	trueWords  = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "on": true}
	falseWords = map[string]bool{"false": true, "f": true, "no": true, "n": true, "off": true}
	nullWords  = map[string]bool{"na": true, "n/a": true, "null": true, "nan": true, "none": true}

	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Infer inspects every column and produces one immutable schema per column.
// It fails only on a structurally broken table: zero columns or ragged rows.
func (inf *Inferencer) Infer(raw *table.RawTable) ([]table.ColumnSchema, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}

	names := cleanColumnNames(raw.ColumnNames())
	schemas := make([]table.ColumnSchema, len(raw.Columns))
	for i, col := range raw.Columns {
		values, sawNull := nonNullStrings(col.Cells)
		colType, layout := classify(values, raw.RowCount(), inf.cfg.CategoricalCardinalityRatio)
		schemas[i] = table.ColumnSchema{
			Name:           names[i],
			OriginalName:   col.Name,
			Type:           colType,
			Nullable:       sawNull,
			DatetimeLayout: layout,
		}
	}
	return schemas, nil
}

// Apply converts every cell to its column's inferred type. Cells that fail to
// parse become explicit nulls; Apply never fails on cell content, only on a
// table whose shape disagrees with the schemas.
func (inf *Inferencer) Apply(raw *table.RawTable, schemas []table.ColumnSchema) (*table.NormalizedTable, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}
	if len(raw.Columns) != len(schemas) {
		return nil, core.NewSchemaError(fmt.Sprintf("schema count %d does not match column count %d", len(schemas), len(raw.Columns)))
	}

	columns := make([][]table.Value, len(raw.Columns))
	for i, col := range raw.Columns {
		s := schemas[i]
		cells := make([]table.Value, len(col.Cells))
		for j, cell := range col.Cells {
			cells[j] = normalizeCell(cell, s)
		}
		columns[i] = cells
	}
	return &table.NormalizedTable{Schemas: schemas, Columns: columns}, nil
}

func checkShape(raw *table.RawTable) error {
	if len(raw.Columns) == 0 {
		return core.NewSchemaError("table has no columns")
	}
	rows := len(raw.Columns[0].Cells)
	for _, col := range raw.Columns[1:] {
		if len(col.Cells) != rows {
			return core.NewSchemaError(fmt.Sprintf("column %q has %d rows, expected %d", col.Name, len(col.Cells), rows))
		}
	}
	return nil
}

// classify picks the narrowest type matching every sampled value
func classify(values []string, rowCount int, cardinalityRatio float64) (table.ColumnType, string) {
	if len(values) == 0 {
		// Entirely null columns carry no type evidence
		return table.TypeText, ""
	}

	distinct := distinctSet(values)

	if allBoolean(distinct) {
		return table.TypeBoolean, ""
	}

	numeric, whole := countNumeric(values)
	if numeric == len(values) {
		if whole == len(values) {
			return table.TypeInteger, ""
		}
		return table.TypeFloat, ""
	}

	if layout := datetimeLayoutFor(values); layout != "" {
		return table.TypeDatetime, layout
	}

	if float64(len(distinct)) <= cardinalityRatio*float64(rowCount) {
		return table.TypeCategorical, ""
	}
	return table.TypeText, ""
}

func normalizeCell(raw interface{}, s table.ColumnSchema) table.Value {
	str, null := cellString(raw)
	if null {
		return table.NewNullValue(s.Type)
	}

	switch s.Type {
	case table.TypeBoolean:
		lower := strings.ToLower(str)
		if trueWords[lower] {
			return table.NewBoolValue(true)
		}
		if falseWords[lower] {
			return table.NewBoolValue(false)
		}
	case table.TypeInteger:
		if f, ok := parseNumeric(str); ok && f == math.Trunc(f) {
			return table.NewIntValue(int64(f))
		}
	case table.TypeFloat:
		if f, ok := parseNumeric(str); ok {
			return table.NewFloatValue(f)
		}
	case table.TypeDatetime:
		if t, ok := parseDatetime(str, s.DatetimeLayout); ok {
			return table.NewTimeValue(t)
		}
	case table.TypeCategorical, table.TypeText:
		return table.NewStringValue(s.Type, whitespace.ReplaceAllString(str, " "))
	}

	// Unparsable under the column's type maps to null, never a column failure
	return table.NewNullValue(s.Type)
}

// cellString renders a raw cell for parsing; the second return flags nulls
func cellString(raw interface{}) (string, bool) {
	if raw == nil {
		return "", true
	}
	var str string
	switch v := raw.(type) {
	case string:
		str = strings.TrimSpace(v)
	case float64:
		str = strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		str = strconv.FormatFloat(float64(v), 'g', -1, 32)
	case int:
		str = strconv.Itoa(v)
	case int64:
		str = strconv.FormatInt(v, 10)
	case bool:
		str = strconv.FormatBool(v)
	case time.Time:
		str = v.Format(time.RFC3339)
	default:
		str = strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	if str == "" || nullWords[strings.ToLower(str)] {
		return "", true
	}
	return str, false
}

func nonNullStrings(cells []interface{}) ([]string, bool) {
	values := make([]string, 0, len(cells))
	sawNull := false
	for _, cell := range cells {
		if str, null := cellString(cell); null {
			sawNull = true
		} else {
			values = append(values, str)
		}
	}
	return values, sawNull
}

func distinctSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

// allBoolean reports whether the distinct value set is a subset of the
// canonical true/false vocabulary. "0"/"1" are deliberately excluded so
// binary indicator columns keep their numeric type.
func allBoolean(distinct map[string]bool) bool {
	for v := range distinct {
		if !trueWords[v] && !falseWords[v] {
			return false
		}
	}
	return true
}

func countNumeric(values []string) (numeric, whole int) {
	for _, v := range values {
		f, ok := parseNumeric(v)
		if !ok {
			continue
		}
		numeric++
		if f == math.Trunc(f) {
			whole++
		}
	}
	return numeric, whole
}

// parseNumeric parses business-formatted numbers: thousands separators,
// currency symbols, percent signs, and parentheses for negatives.
func parseNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = clean[1 : len(clean)-1]
		negative = true
	}
	for _, symbol := range []string{"$", "€", "£", "%"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)
	if negative {
		clean = "-" + clean
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// datetimeLayoutFor returns the first layout that parses every value, or ""
func datetimeLayoutFor(values []string) string {
	for _, layout := range datetimeLayouts {
		ok := true
		for _, v := range values {
			if _, err := time.Parse(layout, v); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout
		}
	}
	return ""
}

func parseDatetime(s, layout string) (time.Time, bool) {
	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, l := range datetimeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanColumnNames converts headers to snake_case identifiers, keeping them
// unique and non-empty.
func cleanColumnNames(names []string) []string {
	cleaned := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		n = nonAlnum.ReplaceAllString(n, "_")
		n = strings.Trim(n, "_")
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		count := seen[n]
		seen[n] = count + 1
		if count > 0 {
			n = fmt.Sprintf("%s_%d", n, count+1)
		}
		cleaned[i] = n
	}
	return cleaned
}
