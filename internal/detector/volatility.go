// Package detector flags abnormal price moves (pump/dump) within a short
// trailing time window.
package detector

import (
	"time"

	"CoinSentinel/internal/model"
)

// Params configures the volatility event detector.
type Params struct {
	// Window is the trailing interval the latest observation is compared over.
	Window time.Duration
	// ThresholdPct is the absolute percent change that qualifies as an event.
	ThresholdPct float64
}

// DefaultParams matches the classic alerting rule: ±5% inside 10 minutes.
func DefaultParams() Params {
	return Params{Window: 10 * time.Minute, ThresholdPct: 5.0}
}

// Detect compares the latest observation against the most recent prior
// observation inside the trailing window. It returns SignalPump or SignalDump
// when the percent change crosses the threshold, and SignalNone otherwise.
// Having no prior observation inside the window is not an error: there is
// simply no event to report.
func Detect(prior []model.Observation, latest model.Observation, p Params) model.Signal {
	if p.Window <= 0 || p.ThresholdPct <= 0 || latest.Price <= 0 {
		return model.SignalNone
	}

	cutoff := latest.Timestamp.Add(-p.Window)
	var ref *model.Observation
	for i := len(prior) - 1; i >= 0; i-- {
		o := prior[i]
		if !o.Timestamp.Before(latest.Timestamp) {
			continue // the latest observation itself, or a duplicate timestamp
		}
		if o.Timestamp.Before(cutoff) {
			break
		}
		ref = &prior[i]
		break
	}
	if ref == nil || ref.Price <= 0 {
		return model.SignalNone
	}

	pct := (latest.Price - ref.Price) / ref.Price * 100.0
	switch {
	case pct >= p.ThresholdPct:
		return model.SignalPump
	case pct <= -p.ThresholdPct:
		return model.SignalDump
	}
	return model.SignalNone
}
