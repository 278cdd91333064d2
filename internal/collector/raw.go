package collector

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

// history is one symbol's observations as delivered by a provider.
type history struct {
	symbol string
	dates  []time.Time
	fields []string
	values map[string][]null.Float // field -> one value per date
}

func newHistory(symbol string) *history {
	return &history{symbol: symbol, values: make(map[string][]null.Float)}
}

// add appends one observation. fields and values are parallel; fields not
// named here stay missing for this date.
func (h *history) add(date time.Time, fields []string, values []null.Float) {
	for _, field := range fields {
		if _, ok := h.values[field]; !ok {
			h.fields = append(h.fields, field)
			h.values[field] = make([]null.Float, len(h.dates))
		}
	}
	h.dates = append(h.dates, date)
	for _, field := range h.fields {
		h.values[field] = append(h.values[field], null.Float{})
	}
	last := len(h.dates) - 1
	for i, field := range fields {
		h.values[field][last] = values[i]
	}
}

// buildRaw lays histories out the way a multi-ticker download does: a flat
// axis of field names when a single symbol was requested, otherwise
// (field, symbol) pairs. Rows are the union of all dates.
func buildRaw(hs []*history, flat bool) *model.RawPriceTable {
	index := make(map[int64]int)
	var dates []time.Time
	for _, h := range hs {
		for _, d := range h.dates {
			if _, ok := index[d.Unix()]; !ok {
				index[d.Unix()] = 0
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, d := range dates {
		index[d.Unix()] = i
	}

	var fields []string
	seen := make(map[string]struct{})
	for _, h := range hs {
		for _, f := range h.fields {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				fields = append(fields, f)
			}
		}
	}

	raw := &model.RawPriceTable{Dates: dates}
	for _, field := range fields {
		for _, h := range hs {
			src, ok := h.values[field]
			if !ok {
				continue
			}
			values := make([]null.Float, len(dates))
			for i, d := range h.dates {
				if src[i].Valid {
					values[index[d.Unix()]] = src[i]
				}
			}
			label := []string{field, h.symbol}
			if flat {
				label = []string{field}
			}
			raw.Columns = append(raw.Columns, model.RawColumn{Label: label, Values: values})
		}
	}
	return raw
}

// calendarDay truncates t to its calendar date in UTC.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
