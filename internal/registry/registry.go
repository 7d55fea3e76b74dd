// Package registry loads and holds the asset watch list.
package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"CoinSentinel/internal/model"
)

// Registry is the immutable set of tracked assets, loaded once from the watch
// list file and passed by reference through the orchestrator.
type Registry struct {
	assets []model.Asset
	byID   map[string]model.Asset
}

// New builds a Registry from an already-assembled asset list.
func New(assets []model.Asset) *Registry {
	r := &Registry{byID: map[string]model.Asset{}}
	for _, a := range assets {
		if _, dup := r.byID[a.ID]; dup {
			continue
		}
		r.assets = append(r.assets, a)
		r.byID[a.ID] = a
	}
	return r
}

// Load reads the watch list CSV. Each record is `id,symbol,name`; symbol and
// name are optional. Blank lines, `#` comments, and an `id,...` header row
// are skipped.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watch list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse watch list: %w", err)
	}

	r := &Registry{byID: map[string]model.Asset{}}
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		id := strings.TrimSpace(rec[0])
		if id == "" || strings.EqualFold(id, "id") {
			continue
		}
		asset := model.Asset{ID: id, Symbol: id}
		if len(rec) > 1 && strings.TrimSpace(rec[1]) != "" {
			asset.Symbol = strings.ToUpper(strings.TrimSpace(rec[1]))
		}
		if len(rec) > 2 {
			asset.Name = strings.TrimSpace(rec[2])
		}
		if asset.Name == "" {
			asset.Name = asset.Symbol
		}
		if _, dup := r.byID[id]; dup {
			continue
		}
		r.assets = append(r.assets, asset)
		r.byID[id] = asset
	}
	if len(r.assets) == 0 {
		return nil, fmt.Errorf("watch list %s contains no assets", path)
	}
	return r, nil
}

// Assets returns the tracked assets in watch-list order.
func (r *Registry) Assets() []model.Asset { return r.assets }

// IDs returns the tracked asset IDs in watch-list order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.assets))
	for i, a := range r.assets {
		ids[i] = a.ID
	}
	return ids
}

// Get looks up an asset by ID.
func (r *Registry) Get(id string) (model.Asset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Len returns the number of tracked assets.
func (r *Registry) Len() int { return len(r.assets) }
