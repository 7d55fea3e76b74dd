package model

import (
	"math"
	"time"
)

// Asset identifies one tracked coin. Identity comes from the watch list and
// is never mutated after load.
type Asset struct {
	ID     string
	Symbol string
	Name   string
}

// Undefined is the marker for a missing or non-numeric field. Provider
// payloads frequently omit fields or ship them as unparseable strings;
// coercing those to zero would corrupt the scorer, so NaN is used instead.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v carries a real value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Observation is a single price/volume reading for one asset. Immutable once
// recorded. Price is always defined and non-negative; every other numeric
// field may be Undefined.
type Observation struct {
	AssetID      string
	Timestamp    time.Time
	Price        float64
	Volume       float64
	PctChange24h float64
	PctChange7d  float64
	MarketCap    float64
}

// OHLCV is a synthesized candlestick bar used for pattern detection.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
