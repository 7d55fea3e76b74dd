// Package provider fetches market-data observations for tracked assets. The
// engine only sees the Provider interface; transports are interchangeable.
package provider

import (
	"context"

	"CoinSentinel/internal/model"
)

// Provider returns the latest observation per asset ID. Assets missing from
// the result map were unavailable this cycle; that is not an error for the
// batch.
type Provider interface {
	FetchQuotes(ctx context.Context, ids []string) (map[string]model.Observation, error)
	Name() string
}

// MockProvider returns canned observations for development and testing.
type MockProvider struct {
	Quotes map[string]model.Observation
	Err    error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchQuotes(_ context.Context, ids []string) (map[string]model.Observation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]model.Observation, len(ids))
	for _, id := range ids {
		if q, ok := m.Quotes[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}
