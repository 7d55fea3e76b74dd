package calculator

import "CoinSentinel/internal/model"

// SynthesizeBars builds OHLC bars from close-only observations: each bar opens
// at the previous close, and High/Low are the max/min of the two closes
// involved. Real wicks are lost, so pattern flags computed from these bars are
// lower-confidence than flags from genuine OHLC data.
func SynthesizeBars(obs []model.Observation) []model.OHLCV {
	if len(obs) < 2 {
		return nil
	}
	bars := make([]model.OHLCV, 0, len(obs)-1)
	for i := 1; i < len(obs); i++ {
		open, close := obs[i-1].Price, obs[i].Price
		high, low := open, close
		if close > high {
			high = close
		}
		if open < low {
			low = open
		}
		bars = append(bars, model.OHLCV{
			Time:   obs[i].Timestamp,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: obs[i].Volume,
		})
	}
	return bars
}

// DetectPatterns inspects the last two bars for a bullish engulfing and a
// hammer. Flags are Undefined (Defined=false) with fewer than two bars.
func DetectPatterns(bars []model.OHLCV) model.CandleFlags {
	if len(bars) < 2 {
		return model.CandleFlags{}
	}
	prev, last := bars[len(bars)-2], bars[len(bars)-1]
	flags := model.CandleFlags{Defined: true}

	prevBody := abs(prev.Close - prev.Open)
	lastBody := abs(last.Close - last.Open)
	if prev.Close < prev.Open && last.Close > last.Open && lastBody > prevBody {
		flags.BullishEngulfing = true
	}

	lowerWick := min(last.Open, last.Close) - last.Low
	upperWick := last.High - max(last.Open, last.Close)
	if lowerWick > 2*lastBody && upperWick < lastBody {
		flags.Hammer = true
	}
	return flags
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
