// Package engine runs the per-cycle pipeline: fetch observations, append
// history, compute indicators, detect volatility events, score, classify,
// gate, and commit. Components are called strictly in that order; a failure
// on one asset never aborts the rest of the batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/detector"
	"CoinSentinel/internal/gatekeeper"
	"CoinSentinel/internal/history"
	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/provider"
	"CoinSentinel/internal/registry"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/strategy"
)

// ErrMalformedObservation marks an observation unusable even after coercion.
var ErrMalformedObservation = errors.New("malformed observation")

// Options bundles the engine's tunables.
type Options struct {
	Lookback int
	Calc     calculator.Params
	Detect   detector.Params
	Strategy strategy.Params
	Policy   gatekeeper.Policy
}

// Engine owns one scan pipeline over a fixed asset registry. All durable
// state lives in the Store; the in-memory history mirror is reseeded from it
// at startup, so a restart resumes exactly where the last commit left off.
type Engine struct {
	assets   *registry.Registry
	provider provider.Provider
	history  *history.Store
	store    store.Store
	notifier notifier.Notifier
	opts     Options
	metrics  *metrics.Metrics
	log      zerolog.Logger

	now func() time.Time
}

// New assembles an Engine. metrics may be nil (disabled).
func New(assets *registry.Registry, p provider.Provider, st store.Store, n notifier.Notifier, opts Options, m *metrics.Metrics, log zerolog.Logger) *Engine {
	if opts.Lookback < 1 {
		opts.Lookback = 168
	}
	return &Engine{
		assets:   assets,
		provider: p,
		history:  history.NewStore(opts.Lookback),
		store:    st,
		notifier: n,
		opts:     opts,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Restore reseeds the in-memory history from the store. Call once before the
// first cycle.
func (e *Engine) Restore(ctx context.Context) error {
	for _, asset := range e.assets.Assets() {
		obs, err := e.store.LoadHistory(ctx, asset.ID, e.opts.Lookback)
		if err != nil {
			return fmt.Errorf("restore history for %s: %w", asset.ID, err)
		}
		if len(obs) > 0 {
			e.history.Restore(asset.ID, obs)
		}
	}
	e.log.Info().Int("assets", e.assets.Len()).Msg("history restored")
	return nil
}

// RunCycle executes one scan pass over every tracked asset.
func (e *Engine) RunCycle(ctx context.Context) {
	if e.metrics != nil {
		e.metrics.CycleRun()
	}
	start := e.now()

	quotes, err := e.provider.FetchQuotes(ctx, e.assets.IDs())
	if err != nil {
		if e.metrics != nil {
			e.metrics.FetchError()
		}
		e.log.Error().Err(err).Msg("provider fetch failed, skipping cycle")
		return
	}

	var emitted, skipped int
	for _, asset := range e.assets.Assets() {
		obs, ok := quotes[asset.ID]
		if !ok {
			// DataUnavailable: keep prior state, move on.
			skipped++
			if e.metrics != nil {
				e.metrics.AssetSkipped("data_unavailable")
			}
			e.log.Debug().Str("asset", asset.ID).Msg("no data this cycle")
			continue
		}

		didEmit, err := e.processAsset(ctx, asset, obs)
		if err != nil {
			skipped++
			e.log.Warn().Err(err).Str("asset", asset.ID).Msg("asset cycle failed")
			continue
		}
		if didEmit {
			emitted++
		}
	}

	e.log.Info().
		Int("assets", e.assets.Len()).
		Int("alerts", emitted).
		Int("skipped", skipped).
		Dur("elapsed", e.now().Sub(start)).
		Msg("scan cycle completed")
}

// processAsset runs the full pipeline for one asset. State is committed in a
// single store transaction; alert state commits only after delivery was
// confirmed, so a failed notification retries next cycle.
func (e *Engine) processAsset(ctx context.Context, asset model.Asset, obs model.Observation) (bool, error) {
	if e.metrics != nil {
		e.metrics.AssetScanned()
	}
	if !model.Defined(obs.Price) || obs.Price < 0 {
		if e.metrics != nil {
			e.metrics.AssetSkipped("malformed")
		}
		return false, fmt.Errorf("%w: asset %s has no usable price", ErrMalformedObservation, asset.ID)
	}

	prior := e.history.Recent(asset.ID, e.opts.Lookback)
	if n := len(prior); n > 0 && obs.Timestamp.Before(prior[n-1].Timestamp) {
		// OutOfOrder: drop the single observation, keep history intact.
		if e.metrics != nil {
			e.metrics.AssetSkipped("out_of_order")
		}
		return false, fmt.Errorf("%w: asset %s", history.ErrOutOfOrder, asset.ID)
	}

	series := append(append([]model.Observation{}, prior...), obs)
	snap := calculator.Compute(series, e.opts.Calc)
	event := detector.Detect(prior, obs, e.opts.Detect)
	eval := strategy.Evaluate(&snap, &obs, event, e.opts.Strategy)

	prev, _, err := e.store.GetAssetState(ctx, asset.ID)
	if err != nil {
		if e.metrics != nil {
			e.metrics.PersistError()
		}
		return false, err
	}

	now := e.now().UTC()
	decision := gatekeeper.Decide(prev, asset, eval, obs, now, e.opts.Policy)

	next, rec := decision.Next, decision.Record
	emitted := false
	if decision.Emit {
		if err := e.notifier.SendAlert(ctx, decision.Alert); err != nil {
			// Delivery unconfirmed: keep the previous alert-gating state
			// (timestamp, signal, score) and drop the record so the same
			// candidate stays eligible next cycle under either strategy.
			if e.metrics != nil {
				e.metrics.NotifyError()
			}
			e.log.Warn().Err(err).Str("asset", asset.ID).Msg("alert delivery failed, state not advanced")
			next.LastAlertTS = prev.LastAlertTS
			next.LastSignal = prev.LastSignal
			next.LastScore = prev.LastScore
			rec = nil
		} else {
			emitted = true
		}
	} else if eval.Signal.AlertWorthy() {
		if e.metrics != nil {
			e.metrics.AlertSuppressed()
		}
	}

	if err := e.store.ApplyCycle(ctx, obs, next, rec); err != nil {
		// PersistenceFailure is scoped to this asset; the in-memory series is
		// left untouched so memory and disk stay consistent.
		if e.metrics != nil {
			e.metrics.PersistError()
		}
		return false, fmt.Errorf("persist cycle for %s: %w", asset.ID, err)
	}
	if err := e.history.Append(asset.ID, obs); err != nil {
		return false, err
	}

	if emitted {
		if e.metrics != nil {
			e.metrics.AlertEmitted(string(eval.Signal))
		}
		e.log.Info().
			Str("asset", asset.ID).
			Str("symbol", asset.Symbol).
			Str("signal", string(eval.Signal)).
			Float64("score", eval.Score).
			Msg("alert emitted")
	}
	if e.metrics != nil {
		e.metrics.SetLastScore(asset.Symbol, eval.Score)
	}
	return emitted, nil
}
