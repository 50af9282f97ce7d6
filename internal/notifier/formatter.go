package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

const na = "n/a"

// fixed renders v with the given number of decimals.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func fmtValue(v model.Value, places int32) string {
	if !v.Valid {
		return na
	}
	return fixed(v.V, places)
}

// fmtPct renders a fractional change as a signed percentage.
func fmtPct(v model.Value) string {
	if !v.Valid {
		return na
	}
	d := decimal.NewFromFloat(v.V).Mul(decimal.NewFromInt(100))
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

func signalBadge(s model.Signal) string {
	switch s {
	case model.Buy:
		return "🟢 BUY"
	case model.Sell:
		return "🔴 SELL"
	default:
		return "⚪ NEUTRAL"
	}
}

// FormatSignalReport formats the latest row of an analysis into a Telegram message.
func FormatSignalReport(a *model.Analysis) string {
	if a == nil || a.Len() == 0 {
		return "No analysis available yet."
	}
	var b strings.Builder
	last := a.Latest()
	th := a.Thresholds

	b.WriteString(fmt.Sprintf("📊 <b>SignalSentinel</b> | %s | %s\n\n", a.Symbol, last.Time.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %s\n", fixed(last.Close, 2)))

	if high, low, err := calculator.TrailingRange(closeBars(a), calculator.TradingDays52w); err == nil {
		pos, _ := calculator.RangePosition(last.Close, high, low)
		b.WriteString(fmt.Sprintf("52w range: %s ~ %s (at %s%%)\n", fixed(low, 2), fixed(high, 2), fixed(pos*100, 0)))
	}

	b.WriteString("\n📈 <b>Momentum</b>\n")
	for _, p := range th.MomentumPeriods {
		col := model.MomentumColumn(p)
		b.WriteString(fmt.Sprintf("  %s: %s\n", col, fmtPct(last.Indicators[col])))
	}
	b.WriteString(fmt.Sprintf("  RSI(%d, %s): %s (%s/%s)\n", th.RSIPeriod, th.RSISmoothing,
		fmtValue(last.Indicators[model.ColRSI], 1), fixed(th.RSILower, 0), fixed(th.RSIUpper, 0)))
	b.WriteString(fmt.Sprintf("  Signal: %s\n", signalBadge(last.Momentum)))

	b.WriteString("\n📉 <b>Mean reversion</b>\n")
	b.WriteString(fmt.Sprintf("  SMA(%d): %s ± %s\n", th.Window,
		fmtValue(last.Indicators[model.ColSMA], 2), fmtValue(last.Indicators[model.ColSTD], 2)))
	b.WriteString(fmt.Sprintf("  Bands: %s / %s\n",
		fmtValue(last.Indicators[model.ColLowerBand], 2), fmtValue(last.Indicators[model.ColUpperBand], 2)))
	b.WriteString(fmt.Sprintf("  Z-score: %s (±%s)\n", fmtValue(last.Indicators[model.ColZScore], 2), fixed(th.BandK, 2)))
	b.WriteString(fmt.Sprintf("  Signal: %s\n", signalBadge(last.MeanReversion)))

	mc, rc := a.Count(model.EngineMomentum), a.Count(model.EngineMeanReversion)
	b.WriteString(fmt.Sprintf("\n🧮 Over %d bars: momentum %d buy / %d sell, mean reversion %d buy / %d sell\n",
		a.Len(), mc[model.Buy], mc[model.Sell], rc[model.Buy], rc[model.Sell]))
	return b.String()
}

// FormatHistory lists the most recent n rows on which either engine fired.
func FormatHistory(a *model.Analysis, n int) string {
	if a == nil || a.Len() == 0 {
		return "No analysis available yet."
	}
	var rows []model.Snapshot
	for i := a.Len() - 1; i >= 0 && len(rows) < n; i-- {
		if a.Momentum[i] != model.Neutral || a.MeanReversion[i] != model.Neutral {
			rows = append(rows, a.At(i))
		}
	}
	if len(rows) == 0 {
		return fmt.Sprintf("🕒 <b>%s</b>: no signals in the last %d bars", a.Symbol, a.Len())
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕒 <b>Recent signals</b> | %s\n\n", a.Symbol))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		b.WriteString(fmt.Sprintf("%s  %s  mom=%s  mr=%s\n",
			r.Time.Format("2006-01-02"), fixed(r.Close, 2), r.Momentum, r.MeanReversion))
	}
	return b.String()
}

func closeBars(a *model.Analysis) []model.OHLCV {
	bars := make([]model.OHLCV, a.Len())
	for i := range bars {
		bars[i] = model.OHLCV{Time: a.Frame.Times[i], Close: a.Closes[i]}
	}
	return bars
}
