// Package store persists the engine's durable state: bounded per-asset
// observation history, one AssetState row per asset, and the append-only
// alert audit log.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"CoinSentinel/internal/model"
)

// RankedAsset is one row of the score leaderboard served by the HTTP API.
type RankedAsset struct {
	AssetID     string
	Signal      model.Signal
	Score       float64
	Price       float64
	LastChecked time.Time
}

// Store is the state-store collaborator. ApplyCycle commits one asset's cycle
// outcome atomically: history row, state upsert, and (when rec is non-nil)
// the alert record either all land or none do.
type Store interface {
	LoadHistory(ctx context.Context, assetID string, limit int) ([]model.Observation, error)
	GetAssetState(ctx context.Context, assetID string) (model.AssetState, bool, error)
	ApplyCycle(ctx context.Context, obs model.Observation, next model.AssetState, rec *model.AlertRecord) error
	Alerts(ctx context.Context, assetID string) ([]model.AlertRecord, error)
	TopAssets(ctx context.Context, limit int) ([]RankedAsset, error)
	Close() error
}

// MemoryStore is an in-memory Store used in tests and as a fallback when no
// database path is configured. Contents do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	lookback int
	history  map[string][]model.Observation
	states   map[string]model.AssetState
	checked  map[string]time.Time
	alerts   []model.AlertRecord
}

// NewMemoryStore creates a MemoryStore retaining at most lookback
// observations per asset.
func NewMemoryStore(lookback int) *MemoryStore {
	if lookback < 1 {
		lookback = 1
	}
	return &MemoryStore{
		lookback: lookback,
		history:  map[string][]model.Observation{},
		states:   map[string]model.AssetState{},
		checked:  map[string]time.Time{},
	}
}

func (m *MemoryStore) LoadHistory(_ context.Context, assetID string, limit int) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.history[assetID]
	if limit > 0 && len(seq) > limit {
		seq = seq[len(seq)-limit:]
	}
	out := make([]model.Observation, len(seq))
	copy(out, seq)
	return out, nil
}

func (m *MemoryStore) GetAssetState(_ context.Context, assetID string) (model.AssetState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[assetID]
	return st, ok, nil
}

func (m *MemoryStore) ApplyCycle(_ context.Context, obs model.Observation, next model.AssetState, rec *model.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := append(m.history[obs.AssetID], obs)
	if len(seq) > m.lookback {
		seq = seq[len(seq)-m.lookback:]
	}
	m.history[obs.AssetID] = seq
	m.states[next.AssetID] = next
	m.checked[next.AssetID] = obs.Timestamp
	if rec != nil {
		m.alerts = append(m.alerts, *rec)
	}
	return nil
}

func (m *MemoryStore) Alerts(_ context.Context, assetID string) ([]model.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AlertRecord
	for _, a := range m.alerts {
		if assetID == "" || a.AssetID == assetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) TopAssets(_ context.Context, limit int) ([]RankedAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RankedAsset, 0, len(m.states))
	for id, st := range m.states {
		out = append(out, RankedAsset{
			AssetID:     id,
			Signal:      st.LastSignal,
			Score:       st.LastScore,
			Price:       st.LastPrice,
			LastChecked: m.checked[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
