// Package calculator derives technical indicators from per-asset observation
// history. Every function is pure: the same history always yields the same
// snapshot. Indicators whose lookback is not met come back Undefined (NaN),
// never zero.
package calculator

import "CoinSentinel/internal/model"

// Params controls indicator lookbacks.
type Params struct {
	RSIPeriod      int
	EMAShortPeriod int
	EMALongPeriod  int
	SMAPeriod      int
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
	VolumeLookback int
	// VolumeMinPoints is the floor below which the volume mean is Undefined.
	VolumeMinPoints int
}

// DefaultParams matches the classic settings: RSI(14), EMA20/EMA50 for the
// cross, SMA(10), MACD(12,26,9), volume mean over the last 50 observations.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		EMAShortPeriod:  20,
		EMALongPeriod:   50,
		SMAPeriod:       10,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		VolumeLookback:  50,
		VolumeMinPoints: 6,
	}
}

// Compute produces the full indicator snapshot for an observation series in
// ascending time order. The short EMA seeds from the first close; the long
// EMA is Undefined until its full period is observed so EMA-cross decisions
// never compare against an under-seeded average.
func Compute(obs []model.Observation, p Params) model.IndicatorSnapshot {
	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.Price
	}

	snap := model.IndicatorSnapshot{
		RSI:        RSI(closes, p.RSIPeriod),
		EMAShort:   EMA(closes, p.EMAShortPeriod),
		EMALong:    model.Undefined(),
		SMA:        SMA(closes, p.SMAPeriod),
		VolumeMean: model.Undefined(),
		VolumeLast: model.Undefined(),
	}
	if len(closes) >= p.EMALongPeriod {
		snap.EMALong = EMA(closes, p.EMALongPeriod)
	}
	snap.MACD, snap.MACDSignal, snap.MACDHist = MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)

	snap.VolumeMean, snap.VolumeLast = volumeStats(obs, p)
	snap.Candle = DetectPatterns(SynthesizeBars(obs))
	return snap
}

// volumeStats returns the mean volume over the lookback window and the latest
// volume. Both are Undefined when fewer than VolumeMinPoints defined volumes
// exist.
func volumeStats(obs []model.Observation, p Params) (mean, last float64) {
	mean, last = model.Undefined(), model.Undefined()

	start := 0
	if p.VolumeLookback > 0 && len(obs) > p.VolumeLookback {
		start = len(obs) - p.VolumeLookback
	}
	sum, count := 0.0, 0
	for _, o := range obs[start:] {
		if model.Defined(o.Volume) {
			sum += o.Volume
			count++
		}
	}
	if count < p.VolumeMinPoints {
		return mean, last
	}
	mean = sum / float64(count)
	if v := obs[len(obs)-1].Volume; model.Defined(v) {
		last = v
	}
	return mean, last
}
