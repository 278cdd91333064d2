package normalizer

import "PriceBoard/internal/model"

// ColumnShape is the labeling scheme of a raw table's column axis.
type ColumnShape int

const (
	ShapeMalformed ColumnShape = iota
	ShapeFlat
	ShapeFieldThenSymbol
	ShapeSymbolThenField
)

func (s ColumnShape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeFieldThenSymbol:
		return "field/symbol"
	case ShapeSymbolThenField:
		return "symbol/field"
	}
	return "malformed"
}

// fieldLevel is the label level holding field names for hierarchical shapes.
func (s ColumnShape) fieldLevel(depth int) int {
	if s == ShapeSymbolThenField {
		return depth - 1
	}
	return 0
}

// DetectShape inspects the column labels once and classifies the table.
// Ragged columns or mixed label depths are malformed.
func DetectShape(raw *model.RawPriceTable, requested []string) ColumnShape {
	if raw == nil {
		return ShapeMalformed
	}
	depth := 0
	for _, c := range raw.Columns {
		if len(c.Label) == 0 || len(c.Values) != len(raw.Dates) {
			return ShapeMalformed
		}
		if depth == 0 {
			depth = len(c.Label)
		} else if len(c.Label) != depth {
			return ShapeMalformed
		}
	}
	if depth <= 1 {
		return ShapeFlat
	}

	var fieldFirst, fieldLast int
	for _, c := range raw.Columns {
		if _, ok := model.CanonicalField(c.Label[0]); ok {
			fieldFirst++
		}
		if _, ok := model.CanonicalField(c.Label[depth-1]); ok {
			fieldLast++
		}
	}
	switch {
	case fieldFirst > 0 && fieldFirst >= fieldLast:
		return ShapeFieldThenSymbol
	case fieldLast > 0:
		return ShapeSymbolThenField
	}

	// No known field anywhere: orient by where the requested tickers sit so
	// the error can name the right field labels.
	want := symbolSet(requested)
	for _, c := range raw.Columns {
		if _, ok := want[c.Label[depth-1]]; ok {
			return ShapeFieldThenSymbol
		}
	}
	for _, c := range raw.Columns {
		if _, ok := want[c.Label[0]]; ok {
			return ShapeSymbolThenField
		}
	}
	return ShapeFieldThenSymbol
}

func symbolSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}
