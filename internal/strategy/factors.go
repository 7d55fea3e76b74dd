package strategy

import (
	"fmt"

	"CoinSentinel/internal/model"
)

// FactorScore is one factor's contribution to the composite score. Factors
// whose inputs are Undefined contribute exactly zero and carry no commentary
// in the reasons list.
type FactorScore struct {
	Name       string
	Score      float64
	Commentary string
	// Contributed is false when the factor's inputs were Undefined.
	Contributed bool
}

func scoreRSI(snap *model.IndicatorSnapshot) FactorScore {
	f := FactorScore{Name: "rsi"}
	if !model.Defined(snap.RSI) {
		return f
	}
	f.Contributed = true
	rsi := snap.RSI
	switch {
	case rsi < 30:
		f.Score = 2.0
		f.Commentary = fmt.Sprintf("RSI oversold (%.1f)", rsi)
	case rsi <= 40:
		f.Score = 0.5
		f.Commentary = fmt.Sprintf("RSI leaning bullish (%.1f)", rsi)
	case rsi > 70:
		f.Score = -2.5
		f.Commentary = fmt.Sprintf("RSI overbought (%.1f)", rsi)
	case rsi >= 60:
		f.Score = -1.5
		f.Commentary = fmt.Sprintf("RSI elevated (%.1f)", rsi)
	}
	return f
}

func scoreMACD(snap *model.IndicatorSnapshot) FactorScore {
	f := FactorScore{Name: "macd"}
	if !model.Defined(snap.MACDHist) {
		return f
	}
	f.Contributed = true
	switch {
	case snap.MACDHist > 0:
		f.Score = 1.0
		f.Commentary = "MACD histogram positive"
	case snap.MACDHist < 0:
		f.Score = -0.8
		f.Commentary = "MACD histogram negative"
	}
	return f
}

func scoreEMACross(snap *model.IndicatorSnapshot) FactorScore {
	f := FactorScore{Name: "ema_cross"}
	if !model.Defined(snap.EMAShort) || !model.Defined(snap.EMALong) {
		return f
	}
	f.Contributed = true
	if snap.EMAShort > snap.EMALong {
		f.Score = 1.0
		f.Commentary = "EMA short above long"
	} else {
		f.Score = -0.8
		f.Commentary = "EMA short below long"
	}
	return f
}

func scoreVolumeSpike(snap *model.IndicatorSnapshot, multiplier float64) FactorScore {
	f := FactorScore{Name: "volume_spike"}
	spike, ok := snap.VolumeSpike(multiplier)
	if !ok {
		return f
	}
	f.Contributed = true
	if spike {
		f.Score = 1.2
		f.Commentary = fmt.Sprintf("volume spike %.1fx", snap.VolumeLast/snap.VolumeMean)
	}
	return f
}

func scoreCandles(snap *model.IndicatorSnapshot) FactorScore {
	f := FactorScore{Name: "candle"}
	if !snap.Candle.Defined {
		return f
	}
	f.Contributed = true
	if snap.Candle.BullishEngulfing {
		f.Score += 1.5
		f.Commentary = "bullish engulfing"
	}
	if snap.Candle.Hammer {
		f.Score += 1.0
		if f.Commentary != "" {
			f.Commentary += ", hammer"
		} else {
			f.Commentary = "hammer"
		}
	}
	return f
}

func scoreMarketCap(obs *model.Observation, p Params) FactorScore {
	f := FactorScore{Name: "market_cap"}
	if !model.Defined(obs.MarketCap) {
		return f
	}
	f.Contributed = true
	switch {
	case obs.MarketCap < p.SmallCapThreshold:
		f.Score = -2.0
		f.Commentary = "small cap noise penalty"
	case obs.MarketCap > p.LargeCapThreshold:
		f.Score = 2.0
		f.Commentary = "large cap"
	}
	return f
}

// scoreMomentum blends 24h and 7d percent change into one term:
// 0.7×pct24h + 0.3×(pct7d/7), clamped to ±MomentumClamp before scaling.
// An undefined component drops out of the blend with zero weight.
func scoreMomentum(obs *model.Observation, p Params) FactorScore {
	f := FactorScore{Name: "momentum"}
	m := 0.0
	defined := false
	if model.Defined(obs.PctChange24h) {
		m += 0.7 * obs.PctChange24h
		defined = true
	}
	if model.Defined(obs.PctChange7d) {
		m += 0.3 * (obs.PctChange7d / 7.0)
		defined = true
	}
	if !defined {
		return f
	}
	f.Contributed = true
	if m > p.MomentumClamp {
		m = p.MomentumClamp
	}
	if m < -p.MomentumClamp {
		m = -p.MomentumClamp
	}
	f.Score = m * p.MomentumScale
	if f.Score != 0 {
		f.Commentary = fmt.Sprintf("momentum %+.1f", m)
	}
	return f
}
