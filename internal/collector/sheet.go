package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/model"
)

// SheetFetcher implements Fetcher over a spreadsheet export in long format:
//
//	Date,Symbol,Close,Adj Close
//	2025-01-02,BTC-USD,94419.76,94419.76
//
// Every column other than Date and Symbol is a price field. The period
// window ends at the last date found in the sheet.
type SheetFetcher struct {
	Path string
}

// NewSheetFetcher creates a fetcher reading the CSV file at path.
func NewSheetFetcher(path string) *SheetFetcher {
	return &SheetFetcher{Path: path}
}

func (f *SheetFetcher) Name() string { return "sheet" }

var sheetDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "01/02/2006"}

type sheetRow struct {
	date   time.Time
	symbol string
	values []null.Float
}

func (f *SheetFetcher) FetchHistory(ctx context.Context, symbols []string, period model.Period) (*model.RawPriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.Name(), Symbols: symbols, Err: err}
	}
	fields, rows, err := f.read()
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Symbols: symbols, Err: err}
	}

	var last time.Time
	for _, r := range rows {
		if r.date.After(last) {
			last = r.date
		}
	}
	start := period.Start(last)

	bySymbol := make(map[string]*history, len(symbols))
	for _, s := range symbols {
		bySymbol[s] = nil
	}
	for _, r := range rows {
		h, wanted := bySymbol[r.symbol]
		if !wanted || r.date.Before(start) {
			continue
		}
		if h == nil {
			h = newHistory(r.symbol)
			bySymbol[r.symbol] = h
		}
		h.add(r.date, fields, r.values)
	}

	hs := make([]*history, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if h := bySymbol[s]; h != nil {
			hs = append(hs, h)
		}
	}
	return buildRaw(hs, len(symbols) == 1), nil
}

// read parses the whole sheet and returns its field names and rows.
func (f *SheetFetcher) read() ([]string, []sheetRow, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sheet: %w", err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet header: %w", err)
	}

	dateCol, symbolCol := -1, -1
	var fields []string
	var fieldCols []int
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch strings.ToLower(name) {
		case "date":
			dateCol = i
		case "symbol", "ticker":
			symbolCol = i
		default:
			if field, ok := model.CanonicalField(name); ok {
				name = string(field)
			}
			fields = append(fields, name)
			fieldCols = append(fieldCols, i)
		}
	}
	if dateCol < 0 || symbolCol < 0 {
		return nil, nil, errors.New("sheet header needs Date and Symbol columns")
	}

	var rows []sheetRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet line %d: %w", line, err)
		}
		date, err := parseSheetDate(rec[dateCol])
		if err != nil {
			return nil, nil, fmt.Errorf("sheet line %d: %w", line, err)
		}
		row := sheetRow{date: date, symbol: strings.TrimSpace(rec[symbolCol]), values: make([]null.Float, len(fieldCols))}
		for j, c := range fieldCols {
			v, err := parseSheetValue(rec[c])
			if err != nil {
				return nil, nil, fmt.Errorf("sheet line %d, %s: %w", line, fields[j], err)
			}
			row.values[j] = v
		}
		rows = append(rows, row)
	}
	return fields, rows, nil
}

func parseSheetDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseSheetValue reads a cell; blanks and spreadsheet error markers are missing.
func parseSheetValue(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "nan", "n/a", "#n/a", "-":
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return null.FloatFrom(v), nil
}
