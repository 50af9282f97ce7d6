package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Indicator column names.
const (
	ColRSI       = "RSI"
	ColSMA       = "SMA"
	ColSTD       = "STD"
	ColUpperBand = "UpperBand"
	ColLowerBand = "LowerBand"
	ColZScore    = "ZScore"
)

// MomentumColumn names the percentage-change column for a lookback in days.
func MomentumColumn(period int) string {
	return "Momentum_" + strconv.Itoa(period) + "D"
}

// Value is a float that may be undefined, e.g. during an indicator's warm-up.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the undefined value.
var None = Value{}

// Get returns the value and whether it is defined.
func (v Value) Get() (float64, bool) { return v.V, v.Valid }

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// IndicatorFrame holds derived indicator columns aligned 1:1 with a PriceSeries.
type IndicatorFrame struct {
	Times   []time.Time        `json:"times"`
	Columns map[string][]Value `json:"columns"`
}

// NewIndicatorFrame creates an empty frame keyed by the given timestamps.
func NewIndicatorFrame(times []time.Time) *IndicatorFrame {
	return &IndicatorFrame{Times: times, Columns: make(map[string][]Value)}
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return len(f.Times) }

// Set stores a column. The column must have exactly one value per row.
func (f *IndicatorFrame) Set(name string, column []Value) error {
	if len(column) != len(f.Times) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(column), len(f.Times))
	}
	f.Columns[name] = column
	return nil
}

// Column returns the named column, or nil if absent.
func (f *IndicatorFrame) Column(name string) []Value { return f.Columns[name] }

// At returns the value of a column at row i; absent columns read as undefined.
func (f *IndicatorFrame) At(i int, name string) Value {
	col, ok := f.Columns[name]
	if !ok || i < 0 || i >= len(col) {
		return None
	}
	return col[i]
}

// Names returns the column names in sorted order.
func (f *IndicatorFrame) Names() []string {
	names := make([]string, 0, len(f.Columns))
	for name := range f.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Row returns every column's value at row i.
func (f *IndicatorFrame) Row(i int) map[string]Value {
	row := make(map[string]Value, len(f.Columns))
	for name, col := range f.Columns {
		row[name] = col[i]
	}
	return row
}
