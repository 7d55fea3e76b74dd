package model

// Signal is the discrete classification emitted for an asset each cycle.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalNeutral    Signal = "NEUTRAL"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
	SignalPump       Signal = "PUMP"
	SignalDump       Signal = "DUMP"
	SignalDead       Signal = "DEAD"

	// SignalNone is the volatility detector's "no event" result.
	SignalNone Signal = ""
)

// AlertWorthy reports whether the signal may generate an alert on its own.
// NEUTRAL and DEAD never do.
func (s Signal) AlertWorthy() bool {
	switch s {
	case SignalStrongBuy, SignalBuy, SignalSell, SignalStrongSell, SignalPump, SignalDump:
		return true
	}
	return false
}
