package model

import (
	"fmt"
	"strings"
)

// ViewMode selects how a price table is reinterpreted for display.
type ViewMode string

const (
	ViewPrice            ViewMode = "price"
	ViewRebasedIndex     ViewMode = "rebased"
	ViewDailyPctChange   ViewMode = "pct_change"
	ViewCumulativeReturn ViewMode = "cumulative"
)

// ViewModes lists the supported view modes.
var ViewModes = []ViewMode{ViewPrice, ViewRebasedIndex, ViewDailyPctChange, ViewCumulativeReturn}

var viewAliases = map[string]ViewMode{
	"price":      ViewPrice,
	"raw":        ViewPrice,
	"rebased":    ViewRebasedIndex,
	"index":      ViewRebasedIndex,
	"pct_change": ViewDailyPctChange,
	"pct":        ViewDailyPctChange,
	"daily":      ViewDailyPctChange,
	"cumulative": ViewCumulativeReturn,
	"cum":        ViewCumulativeReturn,
	"return":     ViewCumulativeReturn,
}

// ParseViewMode accepts a mode name or one of its short aliases.
func ParseViewMode(s string) (ViewMode, error) {
	if m, ok := viewAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown view %q (want price, rebased, pct_change or cumulative)", s)
}

// Label is the human-readable axis label of the mode.
func (m ViewMode) Label() string {
	switch m {
	case ViewPrice:
		return "Price (USD)"
	case ViewRebasedIndex:
		return "Index (first = 100)"
	case ViewDailyPctChange:
		return "Daily change (%)"
	case ViewCumulativeReturn:
		return "Cumulative return (%)"
	}
	return string(m)
}
