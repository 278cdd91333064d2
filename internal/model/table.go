package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// RawColumn is one column of a provider result. Label holds one level for a
// flat axis (field name) or several levels for a hierarchical axis, in
// whatever order the provider used.
type RawColumn struct {
	Label  []string
	Values []null.Float
}

// RawPriceTable is an unprocessed fetch result indexed by date.
type RawPriceTable struct {
	Dates   []time.Time
	Columns []RawColumn
}

// Rows returns the number of rows in the table.
func (r *RawPriceTable) Rows() int {
	if r == nil {
		return 0
	}
	return len(r.Dates)
}

// Series is one ticker-keyed column of a PriceTable.
type Series struct {
	Symbol string       `json:"symbol"`
	Values []null.Float `json:"values"`
}

// PriceTable is a date-indexed, ticker-keyed table of prices. Dates are
// strictly ascending and every symbol appears once. A PriceTable is never
// modified after construction; accessors hand out copies.
type PriceTable struct {
	dates  []time.Time
	series []Series
}

// NewPriceTable validates and copies dates and series into a PriceTable.
func NewPriceTable(dates []time.Time, series []Series) (*PriceTable, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("dates not strictly ascending at row %d", i)
		}
	}
	seen := make(map[string]struct{}, len(series))
	t := &PriceTable{
		dates:  append([]time.Time(nil), dates...),
		series: make([]Series, 0, len(series)),
	}
	for _, s := range series {
		if _, dup := seen[s.Symbol]; dup {
			return nil, fmt.Errorf("duplicate column %q", s.Symbol)
		}
		seen[s.Symbol] = struct{}{}
		if len(s.Values) != len(dates) {
			return nil, fmt.Errorf("column %q has %d values for %d dates", s.Symbol, len(s.Values), len(dates))
		}
		t.series = append(t.series, Series{Symbol: s.Symbol, Values: append([]null.Float(nil), s.Values...)})
	}
	return t, nil
}

// EmptyPriceTable returns a table with no rows and no columns.
func EmptyPriceTable() *PriceTable {
	return &PriceTable{}
}

// Rows returns the number of dates.
func (t *PriceTable) Rows() int { return len(t.dates) }

// Cols returns the number of symbols.
func (t *PriceTable) Cols() int { return len(t.series) }

// Empty reports whether the table has nothing to render.
func (t *PriceTable) Empty() bool { return t == nil || len(t.dates) == 0 || len(t.series) == 0 }

// Dates returns a copy of the row index.
func (t *PriceTable) Dates() []time.Time {
	return append([]time.Time(nil), t.dates...)
}

// Symbols returns the column symbols in table order.
func (t *PriceTable) Symbols() []string {
	out := make([]string, len(t.series))
	for i, s := range t.series {
		out[i] = s.Symbol
	}
	return out
}

// Column returns a copy of the values for symbol.
func (t *PriceTable) Column(symbol string) ([]null.Float, bool) {
	for _, s := range t.series {
		if s.Symbol == symbol {
			return append([]null.Float(nil), s.Values...), true
		}
	}
	return nil, false
}

// Series returns a copy of every column.
func (t *PriceTable) Series() []Series {
	out := make([]Series, len(t.series))
	for i, s := range t.series {
		out[i] = Series{Symbol: s.Symbol, Values: append([]null.Float(nil), s.Values...)}
	}
	return out
}

// MarshalJSON encodes the table with calendar dates and missing cells as null.
func (t *PriceTable) MarshalJSON() ([]byte, error) {
	dates := make([]string, len(t.dates))
	for i, d := range t.dates {
		dates[i] = d.Format(time.DateOnly)
	}
	return json.Marshal(struct {
		Dates  []string `json:"dates"`
		Series []Series `json:"series"`
	}{dates, t.Series()})
}

// DerivedView is a PriceTable reinterpreted under a ViewMode.
type DerivedView struct {
	Mode  ViewMode    `json:"mode"`
	Table *PriceTable `json:"table"`
}
