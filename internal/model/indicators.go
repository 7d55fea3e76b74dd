package model

// CandleFlags holds pattern detections from the last two bars. When bars are
// synthesized from close prices only (Open = previous close, High/Low = max/min
// of the two closes) the flags are lower-confidence: engulfing can still fire,
// hammer effectively cannot, since synthesized bars have no wicks.
type CandleFlags struct {
	Defined          bool
	BullishEngulfing bool
	Hammer           bool
}

// IndicatorSnapshot holds all computed technical indicators for one asset at
// one instant. Any numeric field is Undefined (NaN) when the available history
// is shorter than that indicator's lookback; consumers must treat Undefined as
// neutral, never as zero.
type IndicatorSnapshot struct {
	RSI        float64
	EMAShort   float64
	EMALong    float64
	SMA        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	VolumeMean float64
	VolumeLast float64
	Candle     CandleFlags
}

// VolumeSpike reports whether the latest volume exceeds multiplier times the
// mean volume over the lookback window. ok is false when either side is
// undefined.
func (s *IndicatorSnapshot) VolumeSpike(multiplier float64) (spike, ok bool) {
	if !Defined(s.VolumeMean) || !Defined(s.VolumeLast) || s.VolumeMean <= 0 {
		return false, false
	}
	return s.VolumeLast > multiplier*s.VolumeMean, true
}
