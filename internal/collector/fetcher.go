package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"PriceBoard/internal/model"
)

// Fetcher retrieves raw daily price history for a set of symbols.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbols []string, period model.Period) (*model.RawPriceTable, error)
	Name() string
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=collector -destination=mock_http_client_test.go -source=fetcher.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError is a provider or transport failure. It is passed to the
// caller as-is and never treated as a data-shape problem.
type FetchError struct {
	Source  string
	Symbols []string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch [%s]: %v", e.Source, strings.Join(e.Symbols, ","), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetcher builds the Fetcher for a configured provider name.
func NewFetcher(provider, sheetPath, proxyURL string) (Fetcher, error) {
	switch provider {
	case "", "yahoo":
		return NewYahooFetcher(proxyURL), nil
	case "sheet":
		if sheetPath == "" {
			return nil, fmt.Errorf("sheet provider needs a sheet path")
		}
		return NewSheetFetcher(sheetPath), nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}
