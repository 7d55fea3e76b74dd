// Package api serves the read-only HTTP surface: health, the score
// leaderboard, the alert audit trail, and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/registry"
	"CoinSentinel/internal/store"
)

// Server wraps an echo instance over the store and registry.
type Server struct {
	echo   *echo.Echo
	store  store.Store
	assets *registry.Registry
	addr   string
	log    zerolog.Logger
}

// NewServer builds the HTTP server and its routes.
func NewServer(addr string, st store.Store, assets *registry.Registry, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, store: st, assets: assets, addr: addr, log: log}
	e.GET("/health", s.health)
	e.GET("/top", s.top)
	e.GET("/alerts", s.alerts)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Start serves until Shutdown is called. Blocks; run in a goroutine.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("http api listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type rankedResponse struct {
	AssetID     string       `json:"asset_id"`
	Symbol      string       `json:"symbol"`
	Name        string       `json:"name"`
	Signal      model.Signal `json:"signal"`
	Score       float64      `json:"score"`
	Price       float64      `json:"price"`
	LastChecked string       `json:"last_checked"`
}

func (s *Server) top(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be 1-500")
		}
		limit = n
	}

	ranked, err := s.store.TopAssets(c.Request().Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("top assets query failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}

	out := make([]rankedResponse, 0, len(ranked))
	for _, r := range ranked {
		resp := rankedResponse{
			AssetID:     r.AssetID,
			Symbol:      r.AssetID,
			Name:        r.AssetID,
			Signal:      r.Signal,
			Score:       r.Score,
			Price:       r.Price,
			LastChecked: r.LastChecked.UTC().Format(time.RFC3339),
		}
		if a, ok := s.assets.Get(r.AssetID); ok {
			resp.Symbol = a.Symbol
			resp.Name = a.Name
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

type alertResponse struct {
	ID        string       `json:"id"`
	AssetID   string       `json:"asset_id"`
	Symbol    string       `json:"symbol"`
	Signal    model.Signal `json:"signal"`
	Score     float64      `json:"score"`
	Price     float64      `json:"price"`
	Timestamp string       `json:"timestamp"`
}

func (s *Server) alerts(c echo.Context) error {
	assetID := c.QueryParam("asset_id")
	records, err := s.store.Alerts(c.Request().Context(), assetID)
	if err != nil {
		s.log.Error().Err(err).Msg("alerts query failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}

	out := make([]alertResponse, 0, len(records))
	for _, r := range records {
		resp := alertResponse{
			ID:        r.ID,
			AssetID:   r.AssetID,
			Symbol:    r.AssetID,
			Signal:    r.Signal,
			Score:     r.Score,
			Price:     r.Price,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		}
		if a, ok := s.assets.Get(r.AssetID); ok {
			resp.Symbol = a.Symbol
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}
