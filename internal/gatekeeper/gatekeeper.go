// Package gatekeeper decides whether a classified signal becomes an emitted
// alert or is suppressed, and produces the next per-asset state either way.
package gatekeeper

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/strategy"
)

// Strategy selects the suppression policy.
type Strategy string

const (
	// StrategyCooldown gates on elapsed time since the last alert only.
	// This is the default: one deterministic, testable policy.
	StrategyCooldown Strategy = "cooldown"
	// StrategyTransition additionally requires the candidate signal to differ
	// from the last alerted/observed signal.
	StrategyTransition Strategy = "transition"
)

// Policy holds the gatekeeper configuration.
type Policy struct {
	Cooldown time.Duration
	// ThresholdPct makes an otherwise NEUTRAL cycle alert-worthy when the
	// absolute percent change since the last recorded price reaches it.
	// Zero disables the fast path.
	ThresholdPct float64
	Strategy     Strategy
}

// Decision is the outcome for one asset and cycle. Next is the state to
// persist; Record and Alert are set only when Emit is true. Callers must not
// commit Next (nor Record) unless delivery of Alert was confirmed, so a
// failed notification leaves the asset eligible to retry next cycle.
type Decision struct {
	Emit   bool
	Next   model.AssetState
	Record *model.AlertRecord
	Alert  *model.Alert
}

// Decide runs the gate for one asset. The state machine has no terminal
// state: every cycle produces a next state, and only an emit advances
// LastAlertTS.
func Decide(prev model.AssetState, asset model.Asset, eval *strategy.Evaluation, obs model.Observation, now time.Time, p Policy) Decision {
	next := model.AssetState{
		AssetID:     asset.ID,
		LastPrice:   obs.Price,
		LastSignal:  eval.Signal,
		LastScore:   eval.Score,
		LastAlertTS: prev.LastAlertTS,
	}

	pctChange := model.Undefined()
	if prev.LastPrice > 0 {
		pctChange = (obs.Price - prev.LastPrice) / prev.LastPrice * 100.0
	}

	worthy := eval.Signal.AlertWorthy()
	reasons := eval.Reasons
	if !worthy && eval.Signal != model.SignalDead && p.ThresholdPct > 0 &&
		model.Defined(pctChange) && abs(pctChange) >= p.ThresholdPct {
		worthy = true
		reasons = append(append([]string{}, reasons...),
			fmt.Sprintf("price moved %+.2f%% since last cycle", pctChange))
	}

	if !worthy {
		return Decision{Next: next}
	}
	if p.Strategy == StrategyTransition && eval.Signal == prev.LastSignal {
		return Decision{Next: next}
	}
	if !prev.LastAlertTS.IsZero() && now.Sub(prev.LastAlertTS) < p.Cooldown {
		return Decision{Next: next}
	}

	next.LastAlertTS = now
	return Decision{
		Emit: true,
		Next: next,
		Record: &model.AlertRecord{
			ID:        uuid.NewString(),
			AssetID:   asset.ID,
			Timestamp: now,
			Signal:    eval.Signal,
			Score:     eval.Score,
			Price:     obs.Price,
		},
		Alert: &model.Alert{
			AssetID:   asset.ID,
			Symbol:    asset.Symbol,
			Name:      asset.Name,
			Signal:    eval.Signal,
			Score:     eval.Score,
			Price:     obs.Price,
			PctChange: pctChange,
			Reasons:   reasons,
			Timestamp: now,
		},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
