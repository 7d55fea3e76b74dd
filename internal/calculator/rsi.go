package calculator

import "CoinSentinel/internal/model"

// RSI computes the Wilder-smoothed Relative Strength Index over the given
// period. The average gain and loss use exponential smoothing with factor
// 1/period, not a plain rolling mean. Undefined until period+1 closes exist.
// A flat series (no gains, no losses) is Undefined rather than 100.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return model.Undefined()
	}

	// Seed with the simple average of the first `period` deltas.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder recursion over the remaining closes.
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return model.Undefined()
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
