package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"CoinSentinel/internal/model"
)

// CoinLoreProvider fetches tickers from the CoinLore REST API in batches.
// CoinLore ships most numeric fields as strings and omits fields freely, so
// everything is coerced at this boundary: unparseable or missing values
// become Undefined, never zero.
type CoinLoreProvider struct {
	baseURL   string
	batchSize int
	client    *http.Client
	log       zerolog.Logger
	now       func() time.Time
}

// NewCoinLoreProvider creates a provider with optional proxy support.
func NewCoinLoreProvider(baseURL string, batchSize int, proxyURL string, log zerolog.Logger) *CoinLoreProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if batchSize < 1 {
		batchSize = 50
	}
	return &CoinLoreProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		batchSize: batchSize,
		client: &http.Client{
			Timeout:   20 * time.Second,
			Transport: transport,
		},
		log: log,
		now: time.Now,
	}
}

func (p *CoinLoreProvider) Name() string { return "coinlore" }

// FetchQuotes retrieves tickers for the given CoinLore IDs, chunked by the
// configured batch size. A failed chunk is logged and skipped; the remaining
// chunks still load. An error is returned only when nothing could be fetched.
func (p *CoinLoreProvider) FetchQuotes(ctx context.Context, ids []string) (map[string]model.Observation, error) {
	out := make(map[string]model.Observation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var lastErr error
	for start := 0; start < len(ids); start += p.batchSize {
		end := start + p.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		if err := p.fetchChunk(ctx, chunk, out); err != nil {
			lastErr = err
			p.log.Warn().Err(err).Strs("ids", chunk).Msg("coinlore chunk fetch failed")
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (p *CoinLoreProvider) fetchChunk(ctx context.Context, ids []string, out map[string]model.Observation) error {
	endpoint := fmt.Sprintf("%s/api/ticker/?id=%s", p.baseURL, strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch tickers: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("coinlore status %d: %s", resp.StatusCode, string(body))
	}

	var payload []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode tickers: %w", err)
	}

	ts := p.now().UTC()
	for _, item := range payload {
		id := stringField(item, "id")
		if id == "" {
			continue
		}
		price := numField(item, "price_usd")
		if !model.Defined(price) || price < 0 {
			p.log.Warn().Str("asset", id).Msg("ticker without usable price, skipping")
			continue
		}
		out[id] = model.Observation{
			AssetID:      id,
			Timestamp:    ts,
			Price:        price,
			Volume:       numField(item, "volume24"),
			PctChange24h: numField(item, "percent_change_24h"),
			PctChange7d:  numField(item, "percent_change_7d"),
			MarketCap:    numField(item, "market_cap_usd"),
		}
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	if v, ok := m[key].(float64); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// numField coerces a loosely-typed payload value to float64, or Undefined
// when the field is missing or not numeric.
func numField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return model.Undefined()
}
