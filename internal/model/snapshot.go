package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

// ColumnStats holds descriptive statistics of one column. Every value is
// missing when the column has no observations; Std is missing below two.
type ColumnStats struct {
	Symbol string     `json:"symbol"`
	Count  int        `json:"count"`
	Mean   null.Float `json:"mean"`
	Std    null.Float `json:"std"`
	Min    null.Float `json:"min"`
	P25    null.Float `json:"p25"`
	P50    null.Float `json:"p50"`
	P75    null.Float `json:"p75"`
	Max    null.Float `json:"max"`
}

// Selection is what a user asked the dashboard to show.
type Selection struct {
	Symbols []string `json:"symbols"`
	Period  Period   `json:"period"`
	Mode    ViewMode `json:"mode"`
}

// Snapshot is the result of one render cycle.
type Snapshot struct {
	ID         uuid.UUID     `json:"id"`
	Source     string        `json:"source"`
	Selection  Selection     `json:"selection"`
	Prices     *PriceTable   `json:"prices"`
	View       *DerivedView  `json:"view"`
	Stats      []ColumnStats `json:"stats"`
	Missing    []string      `json:"missing"` // requested symbols that returned no data
	RenderedAt time.Time     `json:"rendered_at"`
}

// Empty reports whether the render produced nothing to show.
func (s *Snapshot) Empty() bool {
	return s == nil || s.Prices.Empty()
}
