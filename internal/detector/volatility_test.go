package detector

import (
	"testing"
	"time"

	"CoinSentinel/internal/model"
)

func makeSeries(base time.Time, step time.Duration, prices ...float64) []model.Observation {
	obs := make([]model.Observation, len(prices))
	for i, p := range prices {
		obs[i] = model.Observation{
			AssetID:   "80",
			Timestamp: base.Add(time.Duration(i) * step),
			Price:     p,
		}
	}
	return obs
}

func TestDetect_Pump(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	series := makeSeries(base, 5*time.Minute, 100, 100, 100, 100, 100, 105)
	prior, latest := series[:len(series)-1], series[len(series)-1]

	got := Detect(prior, latest, DefaultParams())
	if got != model.SignalPump {
		t.Errorf("5%% rise in 5 minutes should be PUMP, got %q", got)
	}
}

func TestDetect_Dump(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	series := makeSeries(base, 5*time.Minute, 100, 94)
	prior, latest := series[:1], series[1]

	got := Detect(prior, latest, DefaultParams())
	if got != model.SignalDump {
		t.Errorf("6%% drop in 5 minutes should be DUMP, got %q", got)
	}
}

func TestDetect_NoPriorInWindowIsNoEvent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Prior observation is an hour old, outside the 10-minute window.
	series := makeSeries(base, time.Hour, 100, 120)
	prior, latest := series[:1], series[1]

	if got := Detect(prior, latest, DefaultParams()); got != model.SignalNone {
		t.Errorf("stale reference must not produce an event, got %q", got)
	}

	if got := Detect(nil, latest, DefaultParams()); got != model.SignalNone {
		t.Errorf("empty history must not produce an event, got %q", got)
	}
}

func TestDetect_BelowThreshold(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		prices []float64
		want   model.Signal
	}{
		{"small rise", []float64{100, 104.9}, model.SignalNone},
		{"small drop", []float64{100, 95.1}, model.SignalNone},
		{"exact threshold rise", []float64{100, 105}, model.SignalPump},
		{"exact threshold drop", []float64{100, 95}, model.SignalDump},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := makeSeries(base, 5*time.Minute, tt.prices...)
			got := Detect(series[:1], series[1], DefaultParams())
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect_UsesMostRecentInWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Slow drift: +2% per observation, 5 minutes apart. Each step is below
	// threshold even though the total move across the window is not.
	series := makeSeries(base, 5*time.Minute, 100, 102, 104.04)
	prior, latest := series[:2], series[2]

	if got := Detect(prior, latest, DefaultParams()); got != model.SignalNone {
		t.Errorf("gradual drift should not trigger against the most recent reference, got %q", got)
	}
}
