package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"CoinSentinel/internal/api"
	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/config"
	"CoinSentinel/internal/detector"
	"CoinSentinel/internal/engine"
	"CoinSentinel/internal/gatekeeper"
	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/provider"
	"CoinSentinel/internal/registry"
	"CoinSentinel/internal/scheduler"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/strategy"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)
	log.Info().Str("config", cfgPath).Msg("CoinSentinel starting")

	assets, err := registry.Load(cfg.WatchList)
	if err != nil {
		log.Fatal().Err(err).Msg("load watch list")
	}
	log.Info().Int("assets", assets.Len()).Msg("watch list loaded")

	var st store.Store
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Fatal().Err(err).Msg("create data directory")
		}
		sq, err := store.NewSQLiteStore(cfg.Database.SQLitePath, cfg.Scan.HistoryLookback, log)
		if err != nil {
			log.Fatal().Err(err).Msg("open sqlite store")
		}
		st = sq
	} else {
		log.Warn().Msg("no sqlite path configured, state will not survive restarts")
		st = store.NewMemoryStore(cfg.Scan.HistoryLookback)
	}
	defer st.Close()

	prov := provider.NewCoinLoreProvider(cfg.Provider.BaseURL, cfg.Provider.FetchBatchSize, cfg.Proxy, log)
	log.Info().Str("provider", prov.Name()).Msg("market data provider ready")

	var notif notifier.Notifier
	if cfg.TelegramConfigured() {
		notif = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	} else {
		log.Warn().Msg("telegram not configured, alerts go to the log only")
		notif = &notifier.LogNotifier{Log: log}
	}

	stratParams := strategy.DefaultParams()
	stratParams.VolumeSpikeMultiplier = cfg.Scan.VolumeSpikeMultiplier

	eng := engine.New(assets, prov, st, notif, engine.Options{
		Lookback: cfg.Scan.HistoryLookback,
		Calc:     calculator.DefaultParams(),
		Detect: detector.Params{
			Window:       cfg.PumpDumpWindow(),
			ThresholdPct: cfg.Scan.PumpDumpThresholdPercent,
		},
		Strategy: stratParams,
		Policy: gatekeeper.Policy{
			Cooldown:     cfg.Cooldown(),
			ThresholdPct: cfg.Scan.ThresholdPercent,
			Strategy:     gatekeeper.Strategy(cfg.Scan.AlertStrategy),
		},
	}, metrics.New(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("restore engine state")
	}

	sched, err := scheduler.New(ctx, cfg.Scan.IntervalSeconds, eng.RunCycle, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init scheduler")
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(cfg.API.ListenAddr, st, assets, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http api stopped")
		}
	}()

	if cfg.RunOnStart {
		log.Info().Msg("run_on_start enabled, scanning now")
		go eng.RunCycle(ctx)
	}

	log.Info().Msg("CoinSentinel is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http api shutdown")
	}
	log.Info().Msg("CoinSentinel stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.Log.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
