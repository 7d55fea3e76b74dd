// Package strategy turns an indicator snapshot plus observation context into
// a composite score and a discrete trading signal.
package strategy

import (
	"fmt"

	"CoinSentinel/internal/model"
)

// Params holds the scorer's tunable thresholds.
type Params struct {
	VolumeSpikeMultiplier float64
	SmallCapThreshold     float64
	LargeCapThreshold     float64
	MomentumClamp         float64
	MomentumScale         float64
	// DeadVolumeRatio marks an asset dead when volume < ratio × market cap.
	DeadVolumeRatio float64
	// DeadWeeklyDropPct marks an asset dead at or below this 7d change.
	DeadWeeklyDropPct float64
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		VolumeSpikeMultiplier: 2.5,
		SmallCapThreshold:     1e8,
		LargeCapThreshold:     1e10,
		MomentumClamp:         30.0,
		MomentumScale:         0.1,
		DeadVolumeRatio:       1e-6,
		DeadWeeklyDropPct:     -40.0,
	}
}

// Evaluation is the scorer's full output for one asset and cycle. Score stays
// meaningful even when a volatility event or the dead-asset rule overrides
// the classification.
type Evaluation struct {
	Factors []FactorScore
	Score   float64
	Signal  model.Signal
	Reasons []string
}

// Evaluate computes the composite score from the snapshot and observation,
// classifies it, then applies the overrides: a dead asset is always DEAD, and
// an active volatility event (PUMP/DUMP) replaces the score-derived label for
// this cycle. Deterministic: same inputs, same output.
func Evaluate(snap *model.IndicatorSnapshot, obs *model.Observation, event model.Signal, p Params) *Evaluation {
	factors := []FactorScore{
		scoreRSI(snap),
		scoreMACD(snap),
		scoreEMACross(snap),
		scoreVolumeSpike(snap, p.VolumeSpikeMultiplier),
		scoreCandles(snap),
		scoreMarketCap(obs, p),
		scoreMomentum(obs, p),
	}

	eval := &Evaluation{Factors: factors}
	for _, f := range factors {
		eval.Score += f.Score
		if f.Contributed && f.Commentary != "" {
			eval.Reasons = append(eval.Reasons, f.Commentary)
		}
	}

	eval.Signal = Classify(eval.Score)

	if isDead(obs, p) {
		eval.Signal = model.SignalDead
		eval.Reasons = append(eval.Reasons, "illiquid or collapsed asset")
		return eval
	}

	if event == model.SignalPump || event == model.SignalDump {
		eval.Signal = event
		eval.Reasons = append(eval.Reasons, fmt.Sprintf("%s detected", event))
	}
	return eval
}

// Classify maps a composite score to a discrete label.
func Classify(score float64) model.Signal {
	switch {
	case score >= 4.0:
		return model.SignalStrongBuy
	case score >= 1.5:
		return model.SignalBuy
	case score <= -3.0:
		return model.SignalStrongSell
	case score <= -1.0:
		return model.SignalSell
	}
	return model.SignalNeutral
}

// isDead applies the illiquidity rule: volume below DeadVolumeRatio of market
// cap (both known), or a 7-day collapse past DeadWeeklyDropPct.
func isDead(obs *model.Observation, p Params) bool {
	if model.Defined(obs.MarketCap) && model.Defined(obs.Volume) && obs.MarketCap > 0 {
		if obs.Volume < p.DeadVolumeRatio*obs.MarketCap {
			return true
		}
	}
	return model.Defined(obs.PctChange7d) && obs.PctChange7d <= p.DeadWeeklyDropPct
}
