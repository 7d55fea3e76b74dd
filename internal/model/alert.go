package model

import "time"

// AssetState is the gatekeeper's durable per-asset memory. One row per asset,
// mutated only by applying a gatekeeper decision. A zero LastAlertTS means the
// asset has never alerted.
type AssetState struct {
	AssetID     string
	LastPrice   float64
	LastSignal  Signal
	LastScore   float64
	LastAlertTS time.Time
}

// AlertRecord is an append-only audit entry, created only when the gatekeeper
// approved emission and delivery was confirmed.
type AlertRecord struct {
	ID        string
	AssetID   string
	Timestamp time.Time
	Signal    Signal
	Score     float64
	Price     float64
}

// Alert is the outbound notification payload. PctChange is the change since
// the previous recorded price and may be Undefined on the first cycle.
type Alert struct {
	AssetID   string
	Symbol    string
	Name      string
	Signal    Signal
	Score     float64
	Price     float64
	PctChange float64
	Reasons   []string
	Timestamp time.Time
}
