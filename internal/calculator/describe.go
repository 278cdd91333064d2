package calculator

import (
	"errors"
	"math"
	"sort"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

// Describe computes count, mean, std, min, quartiles and max for every
// column of the table, skipping missing values.
func Describe(table *model.PriceTable) []model.ColumnStats {
	if table == nil {
		return nil
	}
	series := table.Series()
	stats := make([]model.ColumnStats, len(series))
	for i, s := range series {
		stats[i] = DescribeColumn(s.Symbol, s.Values)
	}
	return stats
}

// DescribeColumn computes the summary statistics of one column.
func DescribeColumn(symbol string, values []null.Float) model.ColumnStats {
	obs := extractValues(values)
	st := model.ColumnStats{Symbol: symbol, Count: len(obs)}
	if len(obs) == 0 {
		return st
	}

	sorted := make([]float64, len(obs))
	copy(sorted, obs)
	sort.Float64s(sorted)

	mean := Mean(obs)
	st.Mean = null.FloatFrom(mean)
	if std, err := StdDev(obs, mean); err == nil {
		st.Std = null.FloatFrom(std)
	}
	st.Min = null.FloatFrom(sorted[0])
	st.P25 = null.FloatFrom(Percentile(sorted, 0.25))
	st.P50 = null.FloatFrom(Percentile(sorted, 0.50))
	st.P75 = null.FloatFrom(Percentile(sorted, 0.75))
	st.Max = null.FloatFrom(sorted[len(sorted)-1])
	return st
}

// Mean is the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the sample standard deviation (n-1 denominator).
func StdDev(values []float64, mean float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.New("need at least 2 values for sample std")
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1)), nil
}

// Percentile interpolates linearly between closest ranks.
// sorted must be in ascending order; p is in [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	if lower+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

func extractValues(values []null.Float) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid && !math.IsNaN(v.Float64) {
			out = append(out, v.Float64)
		}
	}
	return out
}
