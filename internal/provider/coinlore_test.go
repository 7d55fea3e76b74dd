package provider

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestFetchQuotes_CoercesStringNumerics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "90,80" {
			t.Errorf("id query = %q", got)
		}
		w.Write([]byte(`[
			{"id":"90","symbol":"BTC","price_usd":"65000.5","volume24":1.5e9,
			 "percent_change_24h":"-2.3","percent_change_7d":"","market_cap_usd":"1.2e12"},
			{"id":"80","symbol":"ETH","price_usd":"not-a-number"}
		]`))
	}))
	defer srv.Close()

	p := NewCoinLoreProvider(srv.URL, 50, "", zerolog.Nop())
	quotes, err := p.FetchQuotes(context.Background(), []string{"90", "80"})
	if err != nil {
		t.Fatal(err)
	}

	btc, ok := quotes["90"]
	if !ok {
		t.Fatal("missing ticker 90")
	}
	if btc.Price != 65000.5 {
		t.Errorf("string price not coerced: %v", btc.Price)
	}
	if btc.Volume != 1.5e9 {
		t.Errorf("numeric volume mangled: %v", btc.Volume)
	}
	if btc.PctChange24h != -2.3 {
		t.Errorf("pct24h = %v", btc.PctChange24h)
	}
	if !math.IsNaN(btc.PctChange7d) {
		t.Errorf("empty string must coerce to undefined, got %v", btc.PctChange7d)
	}
	if btc.MarketCap != 1.2e12 {
		t.Errorf("scientific-notation string not coerced: %v", btc.MarketCap)
	}

	// Unusable price: the whole ticker is dropped, never synthesized as zero.
	if _, ok := quotes["80"]; ok {
		t.Error("ticker without a usable price must be skipped")
	}
}

func TestFetchQuotes_ChunksByBatchSize(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewCoinLoreProvider(srv.URL, 2, "", zerolog.Nop())
	ids := []string{"1", "2", "3", "4", "5"}
	if _, err := p.FetchQuotes(context.Background(), ids); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("5 ids at batch size 2 should take 3 requests, got %d", got)
	}
}

func TestFetchQuotes_PartialChunkFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"id":"80","price_usd":"3200"}]`))
	}))
	defer srv.Close()

	p := NewCoinLoreProvider(srv.URL, 1, "", zerolog.Nop())
	quotes, err := p.FetchQuotes(context.Background(), []string{"90", "80"})
	if err != nil {
		t.Fatalf("partial failure must not fail the fetch: %v", err)
	}
	if _, ok := quotes["90"]; ok {
		t.Error("failed chunk should yield nothing")
	}
	if q, ok := quotes["80"]; !ok || q.Price != 3200 {
		t.Errorf("surviving chunk lost: %+v", q)
	}
}

func TestFetchQuotes_AllChunksFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewCoinLoreProvider(srv.URL, 50, "", zerolog.Nop())
	if _, err := p.FetchQuotes(context.Background(), []string{"90"}); err == nil {
		t.Fatal("total failure must surface an error")
	}
}
