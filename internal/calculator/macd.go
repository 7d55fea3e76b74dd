package calculator

import "CoinSentinel/internal/model"

// MACD computes the Moving Average Convergence Divergence line, its signal
// line, and the histogram: macd = EMA(fast) − EMA(slow), signal =
// EMA(signalPeriod) of the macd series, hist = macd − signal. All three are
// Undefined until `slow` closes exist.
func MACD(closes []float64, fast, slow, signalPeriod int) (macd, signal, hist float64) {
	undef := model.Undefined()
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || len(closes) < slow {
		return undef, undef, undef
	}

	fastSeries := emaSeries(closes, fast)
	slowSeries := emaSeries(closes, slow)
	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fastSeries[i] - slowSeries[i]
	}
	signalSeries := emaSeries(macdSeries, signalPeriod)

	macd = macdSeries[len(macdSeries)-1]
	signal = signalSeries[len(signalSeries)-1]
	return macd, signal, macd - signal
}
