// Package normalizer turns irregular provider fetch results into canonical,
// ticker-keyed price tables.
//
// Providers label columns differently depending on how many symbols were
// requested: a single-symbol fetch has a flat axis of field names ("Close",
// "Adjusted Close"), a multi-symbol fetch pairs a field with a ticker. The
// shape is detected once (see DetectShape) and each shape has its own
// selection path.
package normalizer

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

// Normalizer converts raw tables using a field preference order.
type Normalizer struct {
	preference []model.Field
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithPreference sets the order in which price fields are tried.
func WithPreference(fields ...model.Field) Option {
	return func(n *Normalizer) {
		if len(fields) > 0 {
			n.preference = append([]model.Field(nil), fields...)
		}
	}
}

// New creates a Normalizer preferring Close over Adjusted Close unless told otherwise.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{preference: append([]model.Field(nil), model.DefaultFieldPreference...)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize runs the default Normalizer.
func Normalize(raw *model.RawPriceTable, requested []string) (*model.PriceTable, error) {
	return defaultNormalizer.Normalize(raw, requested)
}

// Normalize reshapes raw into a PriceTable holding one column per requested
// symbol that returned data, rows sorted by date. Symbols without data are
// absent rather than zero-filled. A raw table with no rows, or a malformed
// one, yields an empty table and no error.
func (n *Normalizer) Normalize(raw *model.RawPriceTable, requested []string) (*model.PriceTable, error) {
	symbols := dedupe(requested)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if raw.Rows() == 0 {
		return model.EmptyPriceTable(), nil
	}

	shape := DetectShape(raw, symbols)
	var (
		picked map[string][]null.Float
		err    error
	)
	switch shape {
	case ShapeMalformed:
		log.Printf("[WARN] malformed raw price table (%d rows, %d columns), treating as empty", raw.Rows(), len(raw.Columns))
		return model.EmptyPriceTable(), nil
	case ShapeFlat:
		picked, err = n.selectFlat(raw, symbols[0])
	default:
		picked, err = n.selectNested(raw, shape, symbols)
	}
	if err != nil {
		return nil, err
	}
	return assemble(raw.Dates, picked, symbols)
}

// selectFlat picks the preferred field column of a single-symbol fetch and
// names it after the symbol. Without a known field the first populated
// column is used.
func (n *Normalizer) selectFlat(raw *model.RawPriceTable, symbol string) (map[string][]null.Float, error) {
	if len(raw.Columns) == 0 {
		return nil, &NormalizationError{Kind: DataShapeUnrecognized, Shape: ShapeFlat}
	}
	labels := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		labels[i] = c.Label[0]
	}

	idx := -1
	if field, ok := n.preferredField(labels); ok {
		for i, l := range labels {
			if f, _ := model.CanonicalField(l); f == field {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = firstPopulated(raw.Columns)
	}
	return map[string][]null.Float{symbol: raw.Columns[idx].Values}, nil
}

// selectNested slices the preferred field out of a hierarchical axis and
// keys the remaining columns by ticker.
func (n *Normalizer) selectNested(raw *model.RawPriceTable, shape ColumnShape, symbols []string) (map[string][]null.Float, error) {
	depth := len(raw.Columns[0].Label)
	level := shape.fieldLevel(depth)

	labels := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		labels[i] = c.Label[level]
	}
	field, ok := n.preferredField(labels)
	if !ok {
		return nil, &NormalizationError{Kind: DataShapeUnrecognized, Shape: shape, Fields: distinct(labels)}
	}

	var (
		rests [][]string
		cols  [][]null.Float
	)
	for _, c := range raw.Columns {
		if f, ok := model.CanonicalField(c.Label[level]); !ok || f != field {
			continue
		}
		rest := make([]string, 0, depth-1)
		rest = append(rest, c.Label[:level]...)
		rest = append(rest, c.Label[level+1:]...)
		rests = append(rests, rest)
		cols = append(cols, c.Values)
	}

	symLevel := 0
	if depth > 2 {
		symLevel = tickerLevel(rests, symbols)
	}
	picked := make(map[string][]null.Float, len(rests))
	for i, rest := range rests {
		sym := rest[symLevel]
		picked[sym] = overlay(picked[sym], cols[i])
	}
	return picked, nil
}

// preferredField returns the first preferred field present among labels.
func (n *Normalizer) preferredField(labels []string) (model.Field, bool) {
	for _, want := range n.preference {
		for _, l := range labels {
			if f, ok := model.CanonicalField(l); ok && f == want {
				return f, true
			}
		}
	}
	return "", false
}

// tickerLevel chooses which of several remaining label levels names the
// ticker: the deepest level whose values are distinct requested symbols,
// else the deepest level with as many distinct values as requested symbols,
// else the deepest level.
func tickerLevel(rests [][]string, symbols []string) int {
	want := symbolSet(symbols)
	depth := len(rests[0])
	for lvl := depth - 1; lvl >= 0; lvl-- {
		seen := make(map[string]struct{}, len(rests))
		ok := true
		for _, r := range rests {
			if _, in := want[r[lvl]]; !in {
				ok = false
				break
			}
			if _, dup := seen[r[lvl]]; dup {
				ok = false
				break
			}
			seen[r[lvl]] = struct{}{}
		}
		if ok {
			return lvl
		}
	}
	for lvl := depth - 1; lvl >= 0; lvl-- {
		values := make([]string, len(rests))
		for i, r := range rests {
			values[i] = r[lvl]
		}
		if len(distinct(values)) == len(symbols) {
			return lvl
		}
	}
	return depth - 1
}

// assemble sorts rows by date, merges duplicate dates and keeps the
// requested symbols that hold at least one value, in request order.
func assemble(dates []time.Time, picked map[string][]null.Float, symbols []string) (*model.PriceTable, error) {
	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dates[order[a]].Before(dates[order[b]]) })

	var outDates []time.Time
	rowOf := make([]int, len(dates))
	for _, i := range order {
		if n := len(outDates); n > 0 && outDates[n-1].Equal(dates[i]) {
			rowOf[i] = n - 1
			continue
		}
		outDates = append(outDates, dates[i])
		rowOf[i] = len(outDates) - 1
	}

	series := make([]model.Series, 0, len(symbols))
	for _, sym := range symbols {
		vals, ok := picked[sym]
		if !ok {
			continue
		}
		out := make([]null.Float, len(outDates))
		populated := false
		for _, i := range order {
			if present(vals[i]) {
				out[rowOf[i]] = vals[i]
				populated = true
			}
		}
		if populated {
			series = append(series, model.Series{Symbol: sym, Values: out})
		}
	}
	if len(series) == 0 {
		return model.EmptyPriceTable(), nil
	}
	return model.NewPriceTable(outDates, series)
}

// overlay copies next over base wherever next has a value.
func overlay(base, next []null.Float) []null.Float {
	if base == nil {
		return append([]null.Float(nil), next...)
	}
	for i, v := range next {
		if present(v) {
			base[i] = v
		}
	}
	return base
}

func firstPopulated(cols []model.RawColumn) int {
	for i, c := range cols {
		for _, v := range c.Values {
			if present(v) {
				return i
			}
		}
	}
	return 0
}

func present(v null.Float) bool {
	return v.Valid && !math.IsNaN(v.Float64)
}

func dedupe(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
