package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client    HTTPClient
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: yahooBaseURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []null.Float `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []null.Float `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// errNoData marks a symbol the provider knows nothing about for the period.
var errNoData = errors.New("no data returned")

// FetchHistory downloads daily closes for every symbol. Symbols the
// provider has no data for are left out of the result; any other failure
// aborts the fetch with a FetchError.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbols []string, period model.Period) (*model.RawPriceTable, error) {
	if len(symbols) == 0 {
		return nil, &FetchError{Source: f.Name(), Err: errors.New("no symbols")}
	}
	hs := make([]*history, 0, len(symbols))
	for _, symbol := range symbols {
		h, err := f.fetchChart(ctx, symbol, period)
		if errors.Is(err, errNoData) {
			log.Printf("[WARN] yahoo: %s: %v", symbol, err)
			continue
		}
		if err != nil {
			return nil, &FetchError{Source: f.Name(), Symbols: symbols, Err: err}
		}
		hs = append(hs, h)
	}
	return buildRaw(hs, len(symbols) == 1), nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, period model.Period) (*history, error) {
	base := f.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		base, url.PathEscape(f.yahooSymbol(symbol)), period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w (status 404)", errNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", errNoData, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errNoData
	}

	result := chart.Chart.Result[0]
	var closes, adjCloses []null.Float
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	var fields []string
	var series [][]null.Float
	if closes != nil {
		fields = append(fields, string(model.FieldClose))
		series = append(series, closes)
	}
	if adjCloses != nil {
		fields = append(fields, string(model.FieldAdjustedClose))
		series = append(series, adjCloses)
	}

	h := newHistory(symbol)
	for i, ts := range result.Timestamp {
		row := make([]null.Float, len(series))
		for j, s := range series {
			row[j] = at(s, i)
		}
		// shift to exchange local time so the bar lands on its trading day
		h.add(calendarDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()), fields, row)
	}
	return h, nil
}

func at(values []null.Float, i int) null.Float {
	if i < len(values) {
		return values[i]
	}
	return null.Float{}
}
