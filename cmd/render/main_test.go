package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/collector"
	"PriceBoard/internal/model"
	"PriceBoard/internal/notifier"
)

func TestWriteReport(t *testing.T) {
	d := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	raw := &model.RawPriceTable{
		Dates: []time.Time{d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2)},
		Columns: []model.RawColumn{
			{Label: []string{"Close", "SPY"}, Values: []null.Float{null.FloatFrom(100), {}, null.FloatFrom(121)}},
			{Label: []string{"Close", "GLD"}, Values: []null.Float{null.FloatFrom(200), null.FloatFrom(220), null.FloatFrom(242)}},
		},
	}
	col := collector.NewCollector(&collector.MockFetcher{Raw: raw}, nil)
	snap, err := col.Render(context.Background(), model.Selection{
		Symbols: []string{"SPY", "GLD"}, Period: model.Period1mo, Mode: model.ViewRebasedIndex,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, snap))
	out := buf.String()

	require.Contains(t, out, "SPY, GLD | 1mo | Index (first = 100)")
	lines := strings.Split(out, "\n")
	require.Contains(t, lines[2], "date")
	require.Regexp(t, `2025-01-03\s+-\s+110\.00`, out)
	require.Regexp(t, `2025-01-04\s+121\.00\s+121\.00`, out)
	require.Contains(t, out, "symbol")
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &model.Snapshot{Prices: model.EmptyPriceTable()}))
	require.Equal(t, notifier.NoDataMessage+"\n", buf.String())
}
