package calculator

import "CoinSentinel/internal/model"

// SMA computes the arithmetic mean of the last `period` closes. Undefined
// until `period` closes exist.
func SMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return model.Undefined()
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(period)
}

// EMA computes the recursive exponential moving average with the standard
// smoothing factor 2/(period+1), seeded from the first close. Undefined on an
// empty series; callers that need the long-EMA cross must additionally check
// that `period` closes were observed.
func EMA(closes []float64, period int) float64 {
	series := emaSeries(closes, period)
	if series == nil {
		return model.Undefined()
	}
	return series[len(series)-1]
}

// emaSeries returns the full EMA recursion over closes, or nil when closes is
// empty or period invalid.
func emaSeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) == 0 {
		return nil
	}
	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1.0-k)
	}
	return out
}
