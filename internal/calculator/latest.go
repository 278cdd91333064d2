package calculator

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"
)

// Latest returns the last defined value of a column and its row index.
func Latest(values []null.Float) (float64, int, error) {
	for i := len(values) - 1; i >= 0; i-- {
		if v := values[i]; v.Valid && !math.IsNaN(v.Float64) {
			return v.Float64, i, nil
		}
	}
	return 0, -1, errors.New("no values in column")
}

// PeriodChange returns the percent change from the first to the last
// defined value of a column.
func PeriodChange(values []null.Float) (float64, error) {
	first := -1
	for i, v := range values {
		if v.Valid && !math.IsNaN(v.Float64) {
			first = i
			break
		}
	}
	if first < 0 {
		return 0, errors.New("no values in column")
	}
	last, idx, err := Latest(values)
	if err != nil {
		return 0, err
	}
	if idx == first {
		return 0, errors.New("need at least 2 values for period change")
	}
	base := values[first].Float64
	if base == 0 {
		return 0, errors.New("first value is zero")
	}
	return (last - base) / base * 100, nil
}
