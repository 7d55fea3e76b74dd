// Package notifier delivers approved alerts to a chat service.
package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"CoinSentinel/internal/model"
)

// Notifier delivers one alert. A nil return confirms delivery; the engine
// commits alert state only on confirmation, so a failed send leaves the asset
// eligible to retry next cycle.
type Notifier interface {
	SendAlert(ctx context.Context, alert *model.Alert) error
}

// LogNotifier writes alerts to the log instead of a chat service. Used when
// Telegram credentials are not configured (dry-run mode).
type LogNotifier struct {
	Log zerolog.Logger
}

func (l *LogNotifier) SendAlert(_ context.Context, alert *model.Alert) error {
	l.Log.Info().
		Str("asset", alert.AssetID).
		Str("symbol", alert.Symbol).
		Str("signal", string(alert.Signal)).
		Float64("score", alert.Score).
		Float64("price", alert.Price).
		Strs("reasons", alert.Reasons).
		Msg("dry-run alert")
	return nil
}
