package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/model"
	"PriceBoard/internal/normalizer"
	"PriceBoard/internal/recorder"
	"PriceBoard/internal/view"
)

func testSnapshot(t *testing.T, mode model.ViewMode) *model.Snapshot {
	t.Helper()
	dates := []time.Time{
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	prices, err := model.NewPriceTable(dates, []model.Series{
		{Symbol: "BTC-USD", Values: []null.Float{null.FloatFrom(96886.88), null.FloatFrom(98107.43)}},
		{Symbol: "SPY", Values: []null.Float{null.FloatFrom(100), null.FloatFrom(110)}},
	})
	require.NoError(t, err)
	v, err := view.Transform(prices, mode)
	require.NoError(t, err)
	return &model.Snapshot{
		Selection: model.Selection{Symbols: []string{"BTC-USD", "SPY", "X<Y"}, Period: model.Period1mo, Mode: mode},
		Prices:    prices,
		View:      v,
		Stats:     calculator.Describe(v.Table),
		Missing:   []string{"X<Y"},
	}
}

func TestFormatSnapshot(t *testing.T) {
	msg := FormatSnapshot(testSnapshot(t, model.ViewRebasedIndex))

	require.Contains(t, msg, "2025-01-03")
	require.Contains(t, msg, "<b>SPY</b>: 110.00 (+10.00%) | rebased 110.00")
	require.Contains(t, msg, "<b>BTC-USD</b>: 98107")
	require.Contains(t, msg, "No data for: X&lt;Y")
	require.Contains(t, msg, "<pre>")
	require.Contains(t, msg, "Index (first = 100)")
}

func TestFormatSnapshot_PriceViewHasNoViewColumn(t *testing.T) {
	msg := FormatSnapshot(testSnapshot(t, model.ViewPrice))
	require.Contains(t, msg, "<b>SPY</b>: 110.00 (+10.00%)\n")
}

func TestFormatSnapshot_Empty(t *testing.T) {
	require.Equal(t, NoDataMessage, FormatSnapshot(nil))

	snap := &model.Snapshot{Prices: model.EmptyPriceTable(), Missing: []string{"NOPE"}}
	msg := FormatSnapshot(snap)
	require.True(t, strings.HasPrefix(msg, NoDataMessage))
	require.Contains(t, msg, "NOPE")
}

func TestFormatStats_MissingCells(t *testing.T) {
	out := FormatStats([]model.ColumnStats{{Symbol: "A", Count: 1, Mean: null.FloatFrom(5)}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "5.00")
	require.Contains(t, lines[1], "-")
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no symbols", normalizer.ErrNoSymbols, "Pick at least one asset"},
		{"fetch", &collector.FetchError{Source: "yahoo", Err: errors.New("timeout")}, "Error fetching data: timeout"},
		{"shape", &normalizer.NormalizationError{Kind: normalizer.DataShapeUnrecognized, Fields: []string{"Volume"}}, "Unrecognized data layout"},
		{"other", fmt.Errorf("unknown period %q", "7d"), "unknown period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, FormatError(tt.err), tt.want)
		})
	}
}

func TestFormatSelection(t *testing.T) {
	msg := FormatSelection(model.Selection{Symbols: []string{"GLD"}, Period: model.Period5y, Mode: model.ViewCumulativeReturn})
	require.Contains(t, msg, "GLD")
	require.Contains(t, msg, "5y")
	require.Contains(t, msg, "Cumulative return")
}

func TestTelegramNotifier_SendTo(t *testing.T) {
	var mu sync.Mutex
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		mu.Lock()
		defer mu.Unlock()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "100", "")
	tn.APIBase = srv.URL
	require.NoError(t, tn.SendTo("200", "<b>hi</b>"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "200", got["chat_id"])
	require.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "100", "")
	tn.APIBase = srv.URL
	err := tn.Send("x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}

func TestTelegramNotifier_DispatchRepliesToSender(t *testing.T) {
	var mu sync.Mutex
	var chats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		chats = append(chats, payload["chat_id"])
		mu.Unlock()
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "100", "")
	tn.APIBase = srv.URL

	var update telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":7,"message":{"text":" /help ","chat":{"id":-555}}}`), &update))

	var gotChat, gotText string
	tn.dispatch(update, func(chatID, command string) string {
		gotChat, gotText = chatID, command
		return "ok"
	})
	require.Equal(t, "-555", gotChat)
	require.Equal(t, "/help", gotText)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"-555"}, chats)
}

func TestFormatHistory(t *testing.T) {
	require.Equal(t, "No renders recorded yet.", FormatHistory(nil))

	msg := FormatHistory([]recorder.RenderSummary{
		{Timestamp: time.Date(2025, 1, 3, 9, 30, 0, 0, time.Local), Symbols: []string{"SPY"}, Period: model.Period1y, Mode: model.ViewPrice, Rows: 250},
		{Timestamp: time.Date(2025, 1, 3, 9, 31, 0, 0, time.Local), Symbols: []string{"NOPE"}, Period: model.Period1mo, Mode: model.ViewPrice},
		{Timestamp: time.Date(2025, 1, 3, 9, 32, 0, 0, time.Local), Symbols: []string{"QQQ"}, Period: model.Period1mo, Mode: model.ViewPrice, Error: "timeout"},
	})
	require.Contains(t, msg, "01-03 09:30 SPY 1y price (250 rows)")
	require.Contains(t, msg, "NOPE 1mo price (no data)")
	require.Contains(t, msg, "QQQ 1mo price ❌")
}
