package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"datapulse/domain/table"
)

// Generator produces deterministic synthetic business tables for tests and
// demos: an id column, a skewed category column, a normally distributed
// amount column with injected outliers, and a signup date column.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// SalesTableSpec controls the generated shape
type SalesTableSpec struct {
	Rows          int
	TopShare      float64 // share of rows carrying the dominant category
	OutlierRows   int     // rows whose amount is scaled by OutlierFactor
	OutlierFactor float64
	AmountMean    float64
	AmountStdDev  float64
	MissingEvery  int // every Nth amount becomes blank; 0 disables
}

// DefaultSalesSpec matches the canonical demo dataset: 100 rows, category A
// at 95%, three 100x outliers.
func DefaultSalesSpec() SalesTableSpec {
	return SalesTableSpec{
		Rows:          100,
		TopShare:      0.95,
		OutlierRows:   3,
		OutlierFactor: 100,
		AmountMean:    50,
		AmountStdDev:  10,
	}
}

// SalesTable generates a raw table per the spec. Outliers are placed at the
// end so tests can assert their row indices; OutlierRows returns them.
func (g *Generator) SalesTable(spec SalesTableSpec) (*table.RawTable, []int) {
	ids := make([]interface{}, spec.Rows)
	categories := make([]interface{}, spec.Rows)
	amounts := make([]interface{}, spec.Rows)
	dates := make([]interface{}, spec.Rows)

	topRows := int(spec.TopShare * float64(spec.Rows))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	outliers := make([]int, 0, spec.OutlierRows)
	for i := 0; i < spec.Rows; i++ {
		ids[i] = fmt.Sprintf("%d", i+1)
		if i < topRows {
			categories[i] = "A"
		} else {
			categories[i] = "B"
		}

		amount := spec.AmountMean + g.rng.NormFloat64()*spec.AmountStdDev
		if i >= spec.Rows-spec.OutlierRows {
			amount *= spec.OutlierFactor
			outliers = append(outliers, i)
		}
		amounts[i] = fmt.Sprintf("%.2f", amount)
		if spec.MissingEvery > 0 && i%spec.MissingEvery == spec.MissingEvery-1 {
			amounts[i] = nil
		}

		dates[i] = base.AddDate(0, 0, i).Format("2006-01-02")
	}

	return &table.RawTable{Columns: []table.RawColumn{
		{Name: "id", Cells: ids},
		{Name: "category", Cells: categories},
		{Name: "amount", Cells: amounts},
		{Name: "signup_date", Cells: dates},
	}}, outliers
}

// NumericColumn generates a standalone numeric raw column
func (g *Generator) NumericColumn(name string, n int, mean, stddev float64) table.RawColumn {
	cells := make([]interface{}, n)
	for i := range cells {
		cells[i] = fmt.Sprintf("%.4f", mean+g.rng.NormFloat64()*stddev)
	}
	return table.RawColumn{Name: name, Cells: cells}
}
