package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/guregu/null/v6"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/model"
	"PriceBoard/internal/normalizer"
	"PriceBoard/internal/recorder"
	"PriceBoard/internal/session"
)

// NoDataMessage is shown when a render produced no rows or no symbols.
const NoDataMessage = "No data returned. Try a different ticker or time period."

// HelpText lists the bot commands.
const HelpText = `📊 <b>PriceBoard</b>

/prices - render the current selection
/symbols BTC-USD SPY ... - choose assets
/period 1mo|3mo|6mo|1y|2y|5y - choose lookback
/view price|rebased|pct_change|cumulative - choose view
/selection - show the current selection
/reset - back to the default watchlist
/history - your recent renders
/help - this message`

// FormatSnapshot renders a snapshot as a Telegram HTML message: the latest
// price and period change per symbol, the latest view value when the view
// is not plain price, and the summary statistics of the view.
func FormatSnapshot(snap *model.Snapshot) string {
	if snap.Empty() {
		msg := NoDataMessage
		if snap != nil && len(snap.Missing) > 0 {
			msg += fmt.Sprintf("\nNo data for: %s", escapeJoin(snap.Missing))
		}
		return msg
	}

	var b strings.Builder
	dates := snap.Prices.Dates()
	b.WriteString(fmt.Sprintf("📊 <b>PriceBoard</b> | %s\n", dates[len(dates)-1].Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("%s to %s · %s · %s\n\n",
		dates[0].Format("2006-01-02"), dates[len(dates)-1].Format("2006-01-02"),
		snap.Selection.Period, html.EscapeString(snap.View.Mode.Label())))

	for _, s := range snap.Prices.Series() {
		b.WriteString(fmt.Sprintf("<b>%s</b>: ", html.EscapeString(s.Symbol)))
		if last, _, err := calculator.Latest(s.Values); err == nil {
			b.WriteString(formatPrice(last))
		} else {
			b.WriteString("n/a")
		}
		if chg, err := calculator.PeriodChange(s.Values); err == nil {
			b.WriteString(fmt.Sprintf(" (%+.2f%%)", chg))
		}
		if snap.View.Mode != model.ViewPrice {
			if values, ok := snap.View.Table.Column(s.Symbol); ok {
				if v, _, err := calculator.Latest(values); err == nil {
					b.WriteString(fmt.Sprintf(" | %s %.2f", snap.View.Mode, v))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(snap.Missing) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No data for: %s\n", escapeJoin(snap.Missing)))
	}

	if len(snap.Stats) > 0 {
		b.WriteString("\n<b>Summary stats</b>\n")
		b.WriteString("<pre>")
		b.WriteString(html.EscapeString(FormatStats(snap.Stats)))
		b.WriteString("</pre>")
	}
	return b.String()
}

// FormatStats lays out column statistics as a fixed-width text table.
func FormatStats(stats []model.ColumnStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %5s %10s %10s %10s %10s %10s %10s %10s\n",
		"symbol", "count", "mean", "std", "min", "25%", "50%", "75%", "max"))
	for _, st := range stats {
		b.WriteString(fmt.Sprintf("%-10s %5d %10s %10s %10s %10s %10s %10s %10s\n",
			st.Symbol, st.Count,
			cell(st.Mean), cell(st.Std), cell(st.Min),
			cell(st.P25), cell(st.P50), cell(st.P75), cell(st.Max)))
	}
	return b.String()
}

// FormatSelection describes a chat's current selection.
func FormatSelection(sel model.Selection) string {
	symbols := "(none)"
	if len(sel.Symbols) > 0 {
		symbols = escapeJoin(sel.Symbols)
	}
	return fmt.Sprintf("⚙️ <b>Selection</b>\nAssets: %s\nPeriod: %s\nView: %s",
		symbols, sel.Period, html.EscapeString(sel.Mode.Label()))
}

// FormatError turns a render failure into a user-facing message.
func FormatError(err error) string {
	var fe *collector.FetchError
	switch {
	case errors.Is(err, normalizer.ErrNoSymbols), errors.Is(err, session.ErrNoSymbols):
		return "Pick at least one asset"
	case errors.As(err, &fe):
		return fmt.Sprintf("❌ Error fetching data: %s", html.EscapeString(fe.Err.Error()))
	case errors.Is(err, normalizer.ErrDataShapeUnrecognized):
		return fmt.Sprintf("❌ Unrecognized data layout from the provider: %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
}

func formatPrice(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func cell(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func escapeJoin(values []string) string {
	return html.EscapeString(strings.Join(values, ", "))
}

// FormatHistory lists recent renders, newest first.
func FormatHistory(renders []recorder.RenderSummary) string {
	if len(renders) == 0 {
		return "No renders recorded yet."
	}
	var b strings.Builder
	b.WriteString("🕘 <b>Recent renders</b>\n\n")
	for _, r := range renders {
		b.WriteString(fmt.Sprintf("%s %s %s %s", r.Timestamp.Format("01-02 15:04"),
			escapeJoin(r.Symbols), r.Period, r.Mode))
		switch {
		case r.Error != "":
			b.WriteString(" ❌")
		case r.Rows == 0:
			b.WriteString(" (no data)")
		default:
			b.WriteString(fmt.Sprintf(" (%d rows)", r.Rows))
		}
		b.WriteString("\n")
	}
	return b.String()
}
