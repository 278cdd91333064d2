package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/model"
	"PriceBoard/internal/normalizer"
)

func TestMockFetcher_GeneratesPeriod(t *testing.T) {
	t.Parallel()

	m := &MockFetcher{Price: 100}
	raw, err := m.FetchHistory(context.Background(), []string{"A", "B"}, model.Period1mo)
	require.NoError(t, err)
	require.Equal(t, 1, m.Calls)
	require.NotEmpty(t, raw.Dates)
	require.Len(t, raw.Columns, 4)
	require.Equal(t, []string{"Close", "A"}, raw.Columns[0].Label)
	require.Equal(t, []string{"Close", "B"}, raw.Columns[1].Label)
}

func TestCollector_RenderRebased(t *testing.T) {
	t.Parallel()

	c := NewCollector(&MockFetcher{Price: 250}, nil)
	snap, err := c.Render(context.Background(), model.Selection{
		Symbols: []string{"SPY", "GLD"},
		Period:  model.Period3mo,
		Mode:    model.ViewRebasedIndex,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, snap.ID)
	require.Equal(t, "mock", snap.Source)
	require.False(t, snap.Empty())
	require.Empty(t, snap.Missing)
	require.Equal(t, []string{"SPY", "GLD"}, snap.Prices.Symbols())
	require.Equal(t, model.ViewRebasedIndex, snap.View.Mode)
	require.Len(t, snap.Stats, 2)

	for _, sym := range snap.Prices.Symbols() {
		values, ok := snap.View.Table.Column(sym)
		require.True(t, ok)
		require.InDelta(t, 100, values[0].Float64, 1e-9)
	}
}

func TestCollector_DefaultsToPriceView(t *testing.T) {
	t.Parallel()

	c := NewCollector(&MockFetcher{Price: 10}, nil)
	snap, err := c.Render(context.Background(), model.Selection{Symbols: []string{"X"}, Period: model.Period1mo})
	require.NoError(t, err)
	require.Equal(t, model.ViewPrice, snap.Selection.Mode)
	require.Equal(t, snap.Prices.Series(), snap.View.Table.Series())
}

func TestCollector_ReportsMissingSymbols(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	raw := &model.RawPriceTable{
		Dates: []time.Time{d, d.AddDate(0, 0, 1)},
		Columns: []model.RawColumn{
			{Label: []string{"Close", "BTC-USD"}, Values: []null.Float{null.FloatFrom(97000), null.FloatFrom(101000)}},
			{Label: []string{"Close", "ETH-USD"}, Values: []null.Float{{}, {}}},
		},
	}
	c := NewCollector(&MockFetcher{Raw: raw}, nil)
	snap, err := c.Render(context.Background(), model.Selection{
		Symbols: []string{"BTC-USD", "ETH-USD", "XYZ"},
		Period:  model.Period1mo,
		Mode:    model.ViewDailyPctChange,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"BTC-USD"}, snap.Prices.Symbols())
	require.Equal(t, []string{"ETH-USD", "XYZ"}, snap.Missing)
}

func TestCollector_EmptyResultIsNotError(t *testing.T) {
	t.Parallel()

	c := NewCollector(&MockFetcher{Raw: &model.RawPriceTable{}}, nil)
	snap, err := c.Render(context.Background(), model.Selection{Symbols: []string{"NOPE"}, Period: model.Period1y})
	require.NoError(t, err)
	require.True(t, snap.Empty())
	require.Equal(t, []string{"NOPE"}, snap.Missing)
	require.Empty(t, snap.Stats)
}

func TestCollector_FetchErrorPassesThrough(t *testing.T) {
	t.Parallel()

	fe := &FetchError{Source: "mock", Symbols: []string{"A"}, Err: errors.New("timeout")}
	c := NewCollector(&MockFetcher{Err: fe}, nil)
	_, err := c.Render(context.Background(), model.Selection{Symbols: []string{"A"}, Period: model.Period1mo})
	require.Same(t, fe, err)
}

func TestCollector_ShapeErrorPassesThrough(t *testing.T) {
	t.Parallel()

	raw := &model.RawPriceTable{
		Dates: []time.Time{time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		Columns: []model.RawColumn{
			{Label: []string{"Volume", "A"}, Values: []null.Float{null.FloatFrom(1)}},
			{Label: []string{"Volume", "B"}, Values: []null.Float{null.FloatFrom(2)}},
		},
	}
	c := NewCollector(&MockFetcher{Raw: raw}, nil)
	_, err := c.Render(context.Background(), model.Selection{Symbols: []string{"A", "B"}, Period: model.Period1mo})
	require.ErrorIs(t, err, normalizer.ErrDataShapeUnrecognized)
}

func TestCollector_RejectsBadSelection(t *testing.T) {
	t.Parallel()

	m := &MockFetcher{Price: 1}
	c := NewCollector(m, nil)

	_, err := c.Render(context.Background(), model.Selection{Period: model.Period1mo})
	require.ErrorIs(t, err, normalizer.ErrNoSymbols)

	_, err = c.Render(context.Background(), model.Selection{Symbols: []string{"A"}, Period: "7d"})
	require.Error(t, err)
	require.Zero(t, m.Calls)
}

func TestNewFetcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		sheet    string
		want     string
		wantErr  bool
	}{
		{"yahoo", "", "yahoo", false},
		{"", "", "yahoo", false},
		{"sheet", "prices.csv", "sheet", false},
		{"sheet", "", "", true},
		{"mock", "", "mock", false},
		{"bloomberg", "", "", true},
	}
	for _, tt := range tests {
		f, err := NewFetcher(tt.provider, tt.sheet, "")
		if tt.wantErr {
			require.Error(t, err, tt.provider)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, f.Name())
	}
}
