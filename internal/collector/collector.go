package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/model"
	"PriceBoard/internal/normalizer"
	"PriceBoard/internal/view"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64              // base price for generated series
	Raw   *model.RawPriceTable // returned as-is when set
	Err   error                // returned instead of data when set
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbols []string, period model.Period) (*model.RawPriceTable, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Raw != nil {
		return m.Raw, nil
	}
	end := calendarDay(time.Now())
	days := int(end.Sub(period.Start(end)).Hours() / 24)
	hs := make([]*history, len(symbols))
	for i, s := range symbols {
		hs[i] = generateMockHistory(s, m.Price*float64(i+1), end, days)
	}
	return buildRaw(hs, len(symbols) == 1), nil
}

func generateMockHistory(symbol string, basePrice float64, end time.Time, count int) *history {
	h := newHistory(symbol)
	fields := []string{string(model.FieldClose), string(model.FieldAdjustedClose)}
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		h.add(end.AddDate(0, 0, -(count-1-i)), fields, []null.Float{null.FloatFrom(p), null.FloatFrom(p * 0.99)})
	}
	return h
}

// Collector runs one render cycle: fetch, normalize, transform, describe.
type Collector struct {
	Fetcher    Fetcher
	Normalizer *normalizer.Normalizer
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, n *normalizer.Normalizer) *Collector {
	if n == nil {
		n = normalizer.New()
	}
	return &Collector{Fetcher: fetcher, Normalizer: n}
}

// Render fetches the selection and builds a Snapshot. Fetch failures are
// returned unchanged; an empty result is not an error and is reported
// through Snapshot.Empty.
func (c *Collector) Render(ctx context.Context, sel model.Selection) (*model.Snapshot, error) {
	if len(sel.Symbols) == 0 {
		return nil, normalizer.ErrNoSymbols
	}
	period, err := model.ParsePeriod(string(sel.Period))
	if err != nil {
		return nil, err
	}
	sel.Period = period
	if sel.Mode == "" {
		sel.Mode = model.ViewPrice
	}

	raw, err := c.Fetcher.FetchHistory(ctx, sel.Symbols, sel.Period)
	if err != nil {
		log.Printf("[ERROR] fetch %v (%s): %v", sel.Symbols, sel.Period, err)
		return nil, err
	}

	prices, err := c.Normalizer.Normalize(raw, sel.Symbols)
	if err != nil {
		log.Printf("[ERROR] normalize %v: %v", sel.Symbols, err)
		return nil, err
	}

	derived, err := view.Transform(prices, sel.Mode)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	snap := &model.Snapshot{
		ID:         uuid.New(),
		Source:     c.Fetcher.Name(),
		Selection:  sel,
		Prices:     prices,
		View:       derived,
		Stats:      calculator.Describe(derived.Table),
		Missing:    missingSymbols(sel.Symbols, prices),
		RenderedAt: time.Now(),
	}
	if len(snap.Missing) > 0 {
		log.Printf("[WARN] no data for %v", snap.Missing)
	}
	log.Printf("[INFO] rendered %s: %d rows x %d symbols (%s, %s)",
		snap.ID, prices.Rows(), prices.Cols(), sel.Period, sel.Mode)
	return snap, nil
}

func missingSymbols(requested []string, prices *model.PriceTable) []string {
	have := make(map[string]struct{}, prices.Cols())
	for _, s := range prices.Symbols() {
		have[s] = struct{}{}
	}
	var out []string
	for _, s := range requested {
		if _, ok := have[s]; ok {
			continue
		}
		have[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
