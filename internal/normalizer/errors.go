package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a normalization failure.
type ErrorKind string

// DataShapeUnrecognized means no known price field could be located.
const DataShapeUnrecognized ErrorKind = "DataShapeUnrecognized"

// ErrDataShapeUnrecognized matches any NormalizationError of that kind via errors.Is.
var ErrDataShapeUnrecognized = &NormalizationError{Kind: DataShapeUnrecognized}

// ErrNoSymbols is returned when Normalize is called without symbols.
var ErrNoSymbols = errors.New("no symbols requested")

// NormalizationError reports a raw table the normalizer refuses to guess about.
type NormalizationError struct {
	Kind   ErrorKind
	Shape  ColumnShape
	Fields []string // field labels that were available
}

func (e *NormalizationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s table has no price columns", e.Kind, e.Shape)
	}
	return fmt.Sprintf("%s: no Close or Adjusted Close among fields [%s] (%s)",
		e.Kind, strings.Join(e.Fields, ", "), e.Shape)
}

// Is matches on Kind so callers can test against ErrDataShapeUnrecognized.
func (e *NormalizationError) Is(target error) bool {
	t, ok := target.(*NormalizationError)
	return ok && t.Kind == e.Kind
}
