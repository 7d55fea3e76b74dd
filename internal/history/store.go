package history

import (
	"errors"
	"fmt"
	"sync"

	"CoinSentinel/internal/model"
)

// ErrOutOfOrder is returned when an observation is older than the series tail.
var ErrOutOfOrder = errors.New("observation older than series tail")

// Store keeps a bounded, time-ordered observation series per asset. Once a
// series exceeds its capacity the oldest entry is evicted. Safe for
// concurrent use; writes to a single asset must still arrive in time order.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[string][]model.Observation
}

// NewStore creates a Store holding at most capacity observations per asset.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		series:   map[string][]model.Observation{},
	}
}

// Append records an observation at the tail of the asset's series. An
// observation with a timestamp earlier than the current tail is rejected with
// ErrOutOfOrder; equal timestamps are accepted.
func (s *Store) Append(assetID string, obs model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.series[assetID]
	if n := len(seq); n > 0 && obs.Timestamp.Before(seq[n-1].Timestamp) {
		return fmt.Errorf("%w: %s at %s, tail %s",
			ErrOutOfOrder, assetID, obs.Timestamp.Format("15:04:05"), seq[n-1].Timestamp.Format("15:04:05"))
	}

	seq = append(seq, obs)
	if len(seq) > s.capacity {
		seq = seq[len(seq)-s.capacity:]
	}
	s.series[assetID] = seq
	return nil
}

// Recent returns up to n most recent observations in ascending time order.
// Fewer (possibly zero) are returned when the series is short; insufficient
// data is never an error.
func (s *Store) Recent(assetID string, n int) []model.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.series[assetID]
	if n <= 0 || len(seq) == 0 {
		return nil
	}
	if n > len(seq) {
		n = len(seq)
	}
	out := make([]model.Observation, n)
	copy(out, seq[len(seq)-n:])
	return out
}

// Len returns the current series length for the asset.
func (s *Store) Len(assetID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[assetID])
}

// Restore seeds an asset's series from persisted rows, oldest first. Used at
// startup; any existing in-memory series for the asset is replaced.
func (s *Store) Restore(assetID string, obs []model.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := make([]model.Observation, len(obs))
	copy(seq, obs)
	if len(seq) > s.capacity {
		seq = seq[len(seq)-s.capacity:]
	}
	s.series[assetID] = seq
}
