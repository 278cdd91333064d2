// Command render fetches one dashboard selection and prints the derived
// view and its summary statistics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"PriceBoard/internal/collector"
	"PriceBoard/internal/config"
	"PriceBoard/internal/model"
	"PriceBoard/internal/normalizer"
	"PriceBoard/internal/notifier"
	"PriceBoard/internal/recorder"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var configPath, symbols, period, view, provider, sheet string
	var asJSON, record bool
	var timeout int

	flag.StringVar(&configPath, "config", getenv("CONFIG_PATH", "configs/config.yaml"), "path to config.yaml (optional)")
	flag.StringVar(&symbols, "symbols", "", "comma-separated tickers (default: dashboard.symbols)")
	flag.StringVar(&period, "period", "", "lookback: 1mo, 3mo, 6mo, 1y, 2y or 5y")
	flag.StringVar(&view, "view", "", "price, rebased, pct_change or cumulative")
	flag.StringVar(&provider, "provider", "", "data source: yahoo, sheet or mock")
	flag.StringVar(&sheet, "sheet", "", "CSV export to read with the sheet provider")
	flag.BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	flag.BoolVar(&record, "record", false, "store the render in the sqlite history")
	flag.IntVar(&timeout, "timeout", 60, "fetch timeout seconds")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if symbols != "" {
		cfg.Dashboard.Symbols = config.SplitSymbols(symbols)
	}
	if period != "" {
		cfg.Dashboard.Period = period
	}
	if view != "" {
		cfg.Dashboard.View = view
	}
	if sheet != "" {
		cfg.DataSource.Provider = "sheet"
		cfg.DataSource.SheetPath = sheet
	}
	if provider != "" {
		cfg.DataSource.Provider = provider
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.SheetPath, cfg.Proxy)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	col := collector.NewCollector(fetcher, normalizer.New(normalizer.WithPreference(cfg.FieldPreference()...)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	sel := cfg.Selection()
	snap, renderErr := col.Render(ctx, sel)

	if record {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] open sqlite recorder: %v", err)
		} else {
			if err := rec.RecordRender(&recorder.RenderEvent{
				Snapshot: snap, Selection: sel, Trigger: recorder.TriggerCLI, Err: renderErr,
			}); err != nil {
				log.Printf("[ERROR] record render: %v", err)
			}
			rec.Close()
		}
	}

	if renderErr != nil {
		log.Fatalf("[FATAL] render: %v", renderErr)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("[FATAL] encode snapshot: %v", err)
		}
		return
	}
	if err := writeReport(os.Stdout, snap); err != nil {
		log.Fatalf("[FATAL] write report: %v", err)
	}
}

// writeReport prints the view as a tab-aligned table followed by its
// summary statistics.
func writeReport(w io.Writer, snap *model.Snapshot) error {
	if snap.Empty() {
		_, err := fmt.Fprintln(w, notifier.NoDataMessage)
		return err
	}
	if len(snap.Missing) > 0 {
		fmt.Fprintf(w, "no data for: %s\n", strings.Join(snap.Missing, ", "))
	}
	fmt.Fprintf(w, "%s | %s | %s\n\n", strings.Join(snap.Prices.Symbols(), ", "),
		snap.Selection.Period, snap.View.Mode.Label())

	if err := writeTable(w, snap.View.Table); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s", notifier.FormatStats(snap.Stats))
	return err
}

func writeTable(w io.Writer, table *model.PriceTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "date\t%s\t\n", strings.Join(table.Symbols(), "\t"))
	series := table.Series()
	for i, d := range table.Dates() {
		cells := make([]string, len(series))
		for j, s := range series {
			cells[j] = "-"
			if v := s.Values[i]; v.Valid {
				cells[j] = fmt.Sprintf("%.2f", v.Float64)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", d.Format(time.DateOnly), strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
