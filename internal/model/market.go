package model

import (
	"fmt"
	"strings"
	"time"
)

// Period is a lookback window for historical daily prices.
type Period string

const (
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// Periods lists every supported period, shortest first.
var Periods = []Period{Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y}

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q (want one of 1mo, 3mo, 6mo, 1y, 2y, 5y)", s)
}

// Start returns the first calendar day covered by the period ending at end.
func (p Period) Start(end time.Time) time.Time {
	switch p {
	case Period1mo:
		return end.AddDate(0, -1, 0)
	case Period3mo:
		return end.AddDate(0, -3, 0)
	case Period6mo:
		return end.AddDate(0, -6, 0)
	case Period1y:
		return end.AddDate(-1, 0, 0)
	case Period2y:
		return end.AddDate(-2, 0, 0)
	case Period5y:
		return end.AddDate(-5, 0, 0)
	}
	return end
}

// Field is a provider price field name.
type Field string

const (
	FieldClose         Field = "Close"
	FieldAdjustedClose Field = "Adjusted Close"
)

// fieldAliases maps provider spellings onto canonical field names.
var fieldAliases = map[string]Field{
	"close":          FieldClose,
	"adjusted close": FieldAdjustedClose,
	"adj close":      FieldAdjustedClose,
	"adjclose":       FieldAdjustedClose,
}

// CanonicalField returns the known field a provider label refers to, if any.
func CanonicalField(label string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(label))]
	return f, ok
}

// DefaultFieldPreference is the order in which price fields are selected.
var DefaultFieldPreference = []Field{FieldClose, FieldAdjustedClose}
