package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"CoinSentinel/internal/model"
)

var signalEmoji = map[model.Signal]string{
	model.SignalStrongBuy:  "🚀",
	model.SignalBuy:        "📈",
	model.SignalSell:       "📉",
	model.SignalStrongSell: "🔻",
	model.SignalPump:       "⚡",
	model.SignalDump:       "💥",
}

// FormatAlert renders an alert as a Telegram HTML message.
func FormatAlert(a *model.Alert) string {
	var b strings.Builder

	emoji := signalEmoji[a.Signal]
	if emoji == "" {
		emoji = "🔔"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s (%s)\n\n", emoji, a.Signal, a.Name, a.Symbol))
	b.WriteString(fmt.Sprintf("Price: $%s\n", formatPrice(a.Price)))
	if model.Defined(a.PctChange) {
		b.WriteString(fmt.Sprintf("Change: %+.2f%%\n", a.PctChange))
	}
	b.WriteString(fmt.Sprintf("Score: %+.2f\n", a.Score))

	if len(a.Reasons) > 0 {
		b.WriteString("\n<b>Why:</b>\n")
		for _, r := range a.Reasons {
			b.WriteString(fmt.Sprintf("  • %s\n", r))
		}
	}

	b.WriteString(fmt.Sprintf("\n%s", a.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")))
	return b.String()
}

// formatPrice keeps small-cap prices readable: large values get thousands
// separators, sub-dollar values keep more precision.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return humanize.CommafWithDigits(p, 2)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}
