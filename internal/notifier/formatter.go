package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPulse/internal/model"
)

// maxReportRows bounds the ranking table so a message stays under Telegram's size limit.
const maxReportRows = 20

func recommendationIcon(r model.Recommendation) string {
	switch r {
	case model.RecommendBuy:
		return "🟢"
	case model.RecommendSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatRanking formats a ranking run into a Telegram message.
func FormatRanking(r *model.Ranking, period, interval string, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>StockPulse ranking</b> | %s\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("%s @ %s\n\n", period, interval))

	if len(r.Ranked) == 0 {
		b.WriteString("No symbol could be scored.\n")
	}
	for i, res := range r.Ranked {
		if i == maxReportRows {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(r.Ranked)-maxReportRows))
			break
		}
		b.WriteString(fmt.Sprintf("%2d. %s <b>%s</b> %+.3f %s | %s | RSI %.1f | %.2f\n",
			i+1, recommendationIcon(res.Recommendation), html.EscapeString(res.Symbol),
			res.Score, res.Recommendation, res.Trend, res.RSI14, res.LastClose))
	}

	if len(r.Skipped) > 0 {
		names := make([]string, len(r.Skipped))
		for i, s := range r.Skipped {
			names[i] = html.EscapeString(s.Symbol)
		}
		b.WriteString(fmt.Sprintf("\n⚠️ skipped: %s\n", strings.Join(names, ", ")))
	}
	return b.String()
}

// FormatAnalysis formats a single-symbol analysis with its factor breakdown.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", recommendationIcon(a.Recommendation),
		html.EscapeString(a.Symbol), a.Recommendation))
	b.WriteString(fmt.Sprintf("Last close: %.2f | Trend: %s\n", a.LastClose, a.Trend))
	b.WriteString(fmt.Sprintf("RSI14: %.1f | EMA20 > EMA50: %v\n\n", a.Indicators.RSI14, a.Indicators.EMA20AboveEMA50))

	b.WriteString("📈 <b>Factors:</b>\n")
	for _, f := range a.Components {
		b.WriteString(fmt.Sprintf("  %s: %+.3f (×%.1f) = %+.3f\n", f.Name, f.RawScore, f.Weight, f.Weighted))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Score: %+.3f\n", a.Score))
	return b.String()
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	return "Commands:\n" +
		"/rank - rank the watchlist\n" +
		"/analyze SYMBOL - score one symbol\n" +
		"/help - show this message"
}
