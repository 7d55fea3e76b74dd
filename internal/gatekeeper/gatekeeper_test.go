package gatekeeper

import (
	"testing"
	"time"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/strategy"
)

var testAsset = model.Asset{ID: "90", Symbol: "BTC", Name: "Bitcoin"}

func worthyEval() *strategy.Evaluation {
	return &strategy.Evaluation{
		Score:   4.2,
		Signal:  model.SignalStrongBuy,
		Reasons: []string{"RSI oversold (25.0)"},
	}
}

func defaultPolicy() Policy {
	return Policy{Cooldown: 900 * time.Second, Strategy: StrategyCooldown}
}

func obs(price float64, ts time.Time) model.Observation {
	return model.Observation{AssetID: "90", Timestamp: ts, Price: price}
}

func TestDecide_CooldownSuppressesSecondAlert(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()

	// Cycle 1: idle asset, alert-worthy signal → emit.
	d1 := Decide(model.AssetState{AssetID: "90"}, testAsset, worthyEval(), obs(100, now), now, policy)
	if !d1.Emit || d1.Record == nil || d1.Alert == nil {
		t.Fatal("first alert-worthy cycle should emit")
	}
	if !d1.Next.LastAlertTS.Equal(now) {
		t.Errorf("emit must advance last_alert_ts, got %v", d1.Next.LastAlertTS)
	}

	// Cycle 2: still inside cooldown → suppress, but state keeps tracking.
	later := now.Add(5 * time.Minute)
	d2 := Decide(d1.Next, testAsset, worthyEval(), obs(101, later), later, policy)
	if d2.Emit {
		t.Fatal("second cycle inside cooldown must suppress")
	}
	if d2.Record != nil {
		t.Error("suppressed cycle must not produce an alert record")
	}
	if !d2.Next.LastAlertTS.Equal(now) {
		t.Errorf("suppression must not advance last_alert_ts, got %v", d2.Next.LastAlertTS)
	}
	if d2.Next.LastSignal != model.SignalStrongBuy {
		t.Errorf("suppression still updates last_signal, got %q", d2.Next.LastSignal)
	}

	// Cycle 3: cooldown elapsed → emit again.
	after := now.Add(901 * time.Second)
	d3 := Decide(d2.Next, testAsset, worthyEval(), obs(102, after), after, policy)
	if !d3.Emit {
		t.Fatal("third cycle after cooldown should emit")
	}
	if !d3.Next.LastAlertTS.Equal(after) {
		t.Errorf("second emit must advance last_alert_ts, got %v", d3.Next.LastAlertTS)
	}
}

func TestDecide_NeutralAndDeadNeverWorthy(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, sig := range []model.Signal{model.SignalNeutral, model.SignalDead} {
		eval := &strategy.Evaluation{Signal: sig, Score: 0}
		d := Decide(model.AssetState{AssetID: "90"}, testAsset, eval, obs(100, now), now, defaultPolicy())
		if d.Emit {
			t.Errorf("%s must never emit", sig)
		}
	}
}

func TestDecide_ThresholdFastPath(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := defaultPolicy()
	policy.ThresholdPct = 2.0

	prev := model.AssetState{AssetID: "90", LastPrice: 100, LastSignal: model.SignalNeutral}
	eval := &strategy.Evaluation{Signal: model.SignalNeutral, Score: 0.3}

	// 3% move since last cycle: alert-worthy despite NEUTRAL classification.
	d := Decide(prev, testAsset, eval, obs(103, now), now, policy)
	if !d.Emit {
		t.Fatal("price move past threshold_percent should emit")
	}
	found := false
	for _, r := range d.Alert.Reasons {
		if r == "price moved +3.00% since last cycle" {
			found = true
		}
	}
	if !found {
		t.Errorf("threshold emit should explain itself, reasons: %v", d.Alert.Reasons)
	}

	// 1% move stays quiet.
	d = Decide(prev, testAsset, eval, obs(101, now), now, policy)
	if d.Emit {
		t.Error("move below threshold_percent must not emit")
	}

	// DEAD suppresses the fast path entirely.
	dead := &strategy.Evaluation{Signal: model.SignalDead}
	d = Decide(prev, testAsset, dead, obs(150, now), now, policy)
	if d.Emit {
		t.Error("dead assets must not emit even on large moves")
	}
}

func TestDecide_TransitionStrategy(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{Cooldown: 0, Strategy: StrategyTransition}

	prev := model.AssetState{AssetID: "90", LastSignal: model.SignalBuy}
	eval := &strategy.Evaluation{Signal: model.SignalBuy, Score: 2.0}
	if d := Decide(prev, testAsset, eval, obs(100, now), now, policy); d.Emit {
		t.Error("transition strategy must suppress an unchanged signal")
	}

	eval.Signal = model.SignalStrongBuy
	eval.Score = 4.5
	if d := Decide(prev, testAsset, eval, obs(100, now), now, policy); !d.Emit {
		t.Error("transition strategy should emit on a signal change")
	}
}

func TestDecide_FirstCycleHasUndefinedPctChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := Decide(model.AssetState{AssetID: "90"}, testAsset, worthyEval(), obs(100, now), now, defaultPolicy())
	if model.Defined(d.Alert.PctChange) {
		t.Errorf("no prior price means undefined change, got %.2f", d.Alert.PctChange)
	}
}

func TestDecide_AlertCarriesPayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := model.AssetState{AssetID: "90", LastPrice: 100}
	d := Decide(prev, testAsset, worthyEval(), obs(105, now), now, defaultPolicy())
	if !d.Emit {
		t.Fatal("expected emit")
	}
	a := d.Alert
	if a.Symbol != "BTC" || a.Name != "Bitcoin" || a.Signal != model.SignalStrongBuy {
		t.Errorf("alert identity wrong: %+v", a)
	}
	if a.Score != 4.2 || a.Price != 105 {
		t.Errorf("alert payload wrong: %+v", a)
	}
	if a.PctChange != 5.0 {
		t.Errorf("expected +5%% change, got %.2f", a.PctChange)
	}
	if d.Record.ID == "" {
		t.Error("alert record needs an ID")
	}
	if !d.Record.Timestamp.Equal(now) || d.Record.Signal != a.Signal {
		t.Errorf("record must mirror the alert: %+v", d.Record)
	}
}
