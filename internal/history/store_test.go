package history

import (
	"errors"
	"testing"
	"time"

	"CoinSentinel/internal/model"
)

func obsAt(ts time.Time, price float64) model.Observation {
	return model.Observation{AssetID: "90", Timestamp: ts, Price: price}
}

func TestAppend_EvictsOldestAtCapacity(t *testing.T) {
	const capacity = 5
	s := NewStore(capacity)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i <= capacity; i++ {
		if err := s.Append("90", obsAt(base.Add(time.Duration(i)*time.Minute), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	if got := s.Len("90"); got != capacity {
		t.Fatalf("expected size %d after %d appends, got %d", capacity, capacity+1, got)
	}
	recent := s.Recent("90", capacity)
	if recent[0].Price != 101 {
		t.Errorf("expected oldest observation evicted, head price = %.0f", recent[0].Price)
	}
	if recent[len(recent)-1].Price != 105 {
		t.Errorf("expected newest at tail, got %.0f", recent[len(recent)-1].Price)
	}
}

func TestAppend_RejectsOutOfOrder(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Append("90", obsAt(base, 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := s.Append("90", obsAt(base.Add(-time.Minute), 99))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	if got := s.Len("90"); got != 1 {
		t.Errorf("history should be intact after rejection, len = %d", got)
	}

	// Equal timestamps are accepted.
	if err := s.Append("90", obsAt(base, 101)); err != nil {
		t.Errorf("equal timestamp should be accepted: %v", err)
	}
}

func TestRecent_ReturnsFewerWhenShort(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Append("90", obsAt(base.Add(time.Duration(i)*time.Minute), float64(i))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got := s.Recent("90", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("observations not in ascending time order")
		}
	}

	if got := s.Recent("unknown", 5); got != nil {
		t.Errorf("expected nil for unknown asset, got %v", got)
	}
}

func TestRestore_SeedsAndTruncates(t *testing.T) {
	s := NewStore(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := make([]model.Observation, 5)
	for i := range seed {
		seed[i] = obsAt(base.Add(time.Duration(i)*time.Minute), float64(i))
	}
	s.Restore("90", seed)

	if got := s.Len("90"); got != 3 {
		t.Fatalf("expected restore to truncate to capacity, len = %d", got)
	}
	recent := s.Recent("90", 3)
	if recent[0].Price != 2 {
		t.Errorf("expected oldest rows dropped on restore, head price = %.0f", recent[0].Price)
	}
}
