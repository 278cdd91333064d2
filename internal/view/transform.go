// Package view derives plotting views from canonical price tables.
package view

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

// columnFunc maps one price column to its derived column. It must not
// look at any other column.
type columnFunc func([]null.Float) []null.Float

var transforms = map[model.ViewMode]columnFunc{
	model.ViewPrice:            identity,
	model.ViewRebasedIndex:     rebase,
	model.ViewDailyPctChange:   pctChange,
	model.ViewCumulativeReturn: cumulativeReturn,
}

// Transform applies mode to every column of table independently. The
// result has the same dates and symbols as table.
func Transform(table *model.PriceTable, mode model.ViewMode) (*model.DerivedView, error) {
	fn, ok := transforms[mode]
	if !ok {
		return nil, fmt.Errorf("unknown view mode %q", mode)
	}
	if table == nil {
		table = model.EmptyPriceTable()
	}

	series := table.Series()
	for i := range series {
		series[i].Values = fn(series[i].Values)
	}
	out, err := model.NewPriceTable(table.Dates(), series)
	if err != nil {
		return nil, fmt.Errorf("build %s view: %w", mode, err)
	}
	return &model.DerivedView{Mode: mode, Table: out}, nil
}

func identity(values []null.Float) []null.Float {
	return append([]null.Float(nil), values...)
}

// rebase scales a column so its first defined value is 100. Rows before
// that value stay missing; a zero base cannot be scaled and leaves the
// column missing.
func rebase(values []null.Float) []null.Float {
	out := make([]null.Float, len(values))
	start := -1
	for i, v := range values {
		if defined(v) {
			start = i
			break
		}
	}
	if start < 0 || values[start].Float64 == 0 {
		return out
	}
	base := values[start].Float64
	for i := start; i < len(values); i++ {
		if defined(values[i]) {
			out[i] = null.FloatFrom(values[i].Float64 / base * 100)
		}
	}
	return out
}

// pctChange is the day-over-day change in percent. The first row has no
// prior day and is missing, as is any row whose own or prior value is.
func pctChange(values []null.Float) []null.Float {
	out := make([]null.Float, len(values))
	for i := 1; i < len(values); i++ {
		if r, ok := change(values[i-1], values[i]); ok {
			out[i] = null.FloatFrom(r * 100)
		}
	}
	return out
}

// cumulativeReturn compounds daily changes into a running return in
// percent. A single missing change leaves every later row missing.
func cumulativeReturn(values []null.Float) []null.Float {
	out := make([]null.Float, len(values))
	if len(values) == 0 || !defined(values[0]) {
		return out
	}
	out[0] = null.FloatFrom(0)
	growth := 1.0
	for i := 1; i < len(values); i++ {
		r, ok := change(values[i-1], values[i])
		if !ok {
			break
		}
		growth *= 1 + r
		out[i] = null.FloatFrom((growth - 1) * 100)
	}
	return out
}

// change returns the fractional change from prev to cur.
func change(prev, cur null.Float) (float64, bool) {
	if !defined(prev) || !defined(cur) || prev.Float64 == 0 {
		return 0, false
	}
	return (cur.Float64 - prev.Float64) / prev.Float64, true
}

func defined(v null.Float) bool {
	return v.Valid && !math.IsNaN(v.Float64) && !math.IsInf(v.Float64, 0)
}
