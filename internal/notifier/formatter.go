package notifier

import (
	"fmt"
	"html"
	"strings"

	"InflationTracker/internal/httpapi"
	"InflationTracker/internal/model"
)

// FormatSnapshot formats the headline figures into a Telegram message.
func FormatSnapshot(s *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Inflation Tracker</b> | %s\n\n", s.TakenAt.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("CPI (%s): %.2f%s\n", s.CPI.Date.Format("2006-01"), s.CPI.Value, change(s.CPI.Change, "")))
	b.WriteString(fmt.Sprintf("Inflation YoY (%s): %.2f%%%s\n", s.Inflation.Date.Format("2006-01"), s.Inflation.Value, change(s.Inflation.Change, " pp")))
	b.WriteString(fmt.Sprintf("M2 growth YoY (%s): %.2f%%%s\n", s.M2Growth.Date.Format("2006-01"), s.M2Growth.Value, change(s.M2Growth.Change, " pp")))
	b.WriteString(fmt.Sprintf("Fed funds rate (%s): %.2f%%%s\n\n", s.FedRate.Date.Format("2006-01"), s.FedRate.Value, change(s.FedRate.Change, " pp")))

	b.WriteString(fmt.Sprintf("💵 $100 from a year earlier buys what $%.2f did then\n", s.PurchasingPower))
	b.WriteString(fmt.Sprintf("🔗 Inflation vs M2 growth: r = %+.2f (%s)\n", s.Correlation, s.CorrelationTier))

	return b.String()
}

// FormatSeries lists the last n points of a derived metric.
func FormatSeries(m *model.DerivedMetric, n int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", html.EscapeString(m.Label)))
	pts := m.Points
	if len(pts) > n {
		pts = pts[len(pts)-n:]
	}
	for _, p := range pts {
		b.WriteString(fmt.Sprintf("%s: %.2f\n", p.Date.Format("2006-01"), p.Value))
	}
	if len(pts) == 0 {
		b.WriteString("no data\n")
	}
	return b.String()
}

// FormatError turns a core error into a short user-facing message.
func FormatError(action string, err error) string {
	return fmt.Sprintf("⚠️ %s failed: %s", action, html.EscapeString(httpapi.UserMessage(err)))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>Inflation Tracker commands</b>\n\n" +
		"/snapshot - latest CPI, inflation, M2 growth and Fed rate\n" +
		"/inflation - year-over-year inflation for the last 12 months\n" +
		"/help - this message"
}

func change(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(" (%+.2f%s y/y)", *v, unit)
}
