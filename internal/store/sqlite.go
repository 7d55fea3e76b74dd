package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"CoinSentinel/internal/model"
)

// SQLiteStore persists engine state to a SQLite database via sqlx. Writes are
// serialized with a mutex: SQLite allows a single writer, and per-asset
// transactions must not interleave.
type SQLiteStore struct {
	db       *sqlx.DB
	mu       sync.Mutex
	lookback int
	log      zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database, enables WAL mode, and runs
// migrations. lookback bounds history retention per asset.
func NewSQLiteStore(dbPath string, lookback int, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode keeps API reads from blocking scan-cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, lookback: lookback, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id   TEXT NOT NULL,
			ts         INTEGER NOT NULL,
			price      REAL NOT NULL,
			volume     REAL,
			pct24h     REAL,
			pct7d      REAL,
			market_cap REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_asset_ts ON history(asset_id, ts)`,

		`CREATE TABLE IF NOT EXISTS asset_state (
			asset_id      TEXT PRIMARY KEY,
			last_price    REAL,
			last_signal   TEXT,
			last_score    REAL,
			last_alert_ts INTEGER,
			updated_at    INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS alerts_log (
			id       TEXT PRIMARY KEY,
			asset_id TEXT NOT NULL,
			ts       INTEGER NOT NULL,
			signal   TEXT NOT NULL,
			score    REAL,
			price    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_asset_ts ON alerts_log(asset_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// LoadHistory returns up to limit most recent observations for the asset in
// ascending time order. Used to reseed the in-memory history at startup.
func (s *SQLiteStore) LoadHistory(ctx context.Context, assetID string, limit int) ([]model.Observation, error) {
	type row struct {
		TS        int64           `db:"ts"`
		Price     float64         `db:"price"`
		Volume    sql.NullFloat64 `db:"volume"`
		Pct24h    sql.NullFloat64 `db:"pct24h"`
		Pct7d     sql.NullFloat64 `db:"pct7d"`
		MarketCap sql.NullFloat64 `db:"market_cap"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT ts, price, volume, pct24h, pct7d, market_cap
		 FROM history WHERE asset_id = ? ORDER BY ts DESC, id DESC LIMIT ?`, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", assetID, err)
	}

	out := make([]model.Observation, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = model.Observation{
			AssetID:      assetID,
			Timestamp:    time.Unix(r.TS, 0).UTC(),
			Price:        r.Price,
			Volume:       fromNull(r.Volume),
			PctChange24h: fromNull(r.Pct24h),
			PctChange7d:  fromNull(r.Pct7d),
			MarketCap:    fromNull(r.MarketCap),
		}
	}
	return out, nil
}

// GetAssetState fetches the persisted state for one asset. The second return
// is false when the asset has never been scanned.
func (s *SQLiteStore) GetAssetState(ctx context.Context, assetID string) (model.AssetState, bool, error) {
	var r struct {
		LastPrice   sql.NullFloat64 `db:"last_price"`
		LastSignal  sql.NullString  `db:"last_signal"`
		LastScore   sql.NullFloat64 `db:"last_score"`
		LastAlertTS sql.NullInt64   `db:"last_alert_ts"`
	}
	err := s.db.GetContext(ctx, &r,
		`SELECT last_price, last_signal, last_score, last_alert_ts
		 FROM asset_state WHERE asset_id = ?`, assetID)
	if err == sql.ErrNoRows {
		return model.AssetState{AssetID: assetID}, false, nil
	}
	if err != nil {
		return model.AssetState{}, false, fmt.Errorf("get asset state %s: %w", assetID, err)
	}

	st := model.AssetState{
		AssetID:    assetID,
		LastPrice:  r.LastPrice.Float64,
		LastSignal: model.Signal(r.LastSignal.String),
		LastScore:  r.LastScore.Float64,
	}
	if r.LastAlertTS.Valid && r.LastAlertTS.Int64 > 0 {
		st.LastAlertTS = time.Unix(r.LastAlertTS.Int64, 0).UTC()
	}
	return st, true, nil
}

// ApplyCycle commits one asset's cycle outcome in a single transaction:
// history append (pruned to the lookback bound), state upsert, and the
// optional alert record. A failure rolls all three back, so AssetState and
// alerts_log can never disagree after a crash.
func (s *SQLiteStore) ApplyCycle(ctx context.Context, obs model.Observation, next model.AssetState, rec *model.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (asset_id, ts, price, volume, pct24h, pct7d, market_cap)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		obs.AssetID, obs.Timestamp.Unix(), obs.Price,
		toNull(obs.Volume), toNull(obs.PctChange24h), toNull(obs.PctChange7d), toNull(obs.MarketCap)); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE asset_id = ? AND id NOT IN (
			SELECT id FROM history WHERE asset_id = ? ORDER BY ts DESC, id DESC LIMIT ?
		 )`, obs.AssetID, obs.AssetID, s.lookback); err != nil {
		return fmt.Errorf("prune history: %w", err)
	}

	var alertTS int64
	if !next.LastAlertTS.IsZero() {
		alertTS = next.LastAlertTS.Unix()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO asset_state (asset_id, last_price, last_signal, last_score, last_alert_ts, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(asset_id) DO UPDATE SET
			last_price = excluded.last_price,
			last_signal = excluded.last_signal,
			last_score = excluded.last_score,
			last_alert_ts = excluded.last_alert_ts,
			updated_at = excluded.updated_at`,
		next.AssetID, next.LastPrice, string(next.LastSignal), next.LastScore,
		alertTS, obs.Timestamp.Unix()); err != nil {
		return fmt.Errorf("upsert asset state: %w", err)
	}

	if rec != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alerts_log (id, asset_id, ts, signal, score, price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.AssetID, rec.Timestamp.Unix(), string(rec.Signal), rec.Score, rec.Price); err != nil {
			return fmt.Errorf("insert alert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Alerts returns the audit trail, oldest first, optionally filtered by asset.
func (s *SQLiteStore) Alerts(ctx context.Context, assetID string) ([]model.AlertRecord, error) {
	type row struct {
		ID      string  `db:"id"`
		AssetID string  `db:"asset_id"`
		TS      int64   `db:"ts"`
		Signal  string  `db:"signal"`
		Score   float64 `db:"score"`
		Price   float64 `db:"price"`
	}
	query := `SELECT id, asset_id, ts, signal, score, price FROM alerts_log`
	args := []any{}
	if assetID != "" {
		query += ` WHERE asset_id = ?`
		args = append(args, assetID)
	}
	query += ` ORDER BY ts ASC`

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select alerts: %w", err)
	}
	out := make([]model.AlertRecord, len(rows))
	for i, r := range rows {
		out[i] = model.AlertRecord{
			ID:        r.ID,
			AssetID:   r.AssetID,
			Timestamp: time.Unix(r.TS, 0).UTC(),
			Signal:    model.Signal(r.Signal),
			Score:     r.Score,
			Price:     r.Price,
		}
	}
	return out, nil
}

// TopAssets returns assets ranked by last composite score, highest first.
func (s *SQLiteStore) TopAssets(ctx context.Context, limit int) ([]RankedAsset, error) {
	type row struct {
		AssetID   string          `db:"asset_id"`
		Signal    sql.NullString  `db:"last_signal"`
		Score     sql.NullFloat64 `db:"last_score"`
		Price     sql.NullFloat64 `db:"last_price"`
		UpdatedAt sql.NullInt64   `db:"updated_at"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT asset_id, last_signal, last_score, last_price, updated_at
		 FROM asset_state ORDER BY last_score DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select top assets: %w", err)
	}
	out := make([]RankedAsset, len(rows))
	for i, r := range rows {
		out[i] = RankedAsset{
			AssetID: r.AssetID,
			Signal:  model.Signal(r.Signal.String),
			Score:   r.Score.Float64,
			Price:   r.Price.Float64,
		}
		if r.UpdatedAt.Valid {
			out[i].LastChecked = time.Unix(r.UpdatedAt.Int64, 0).UTC()
		}
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

// toNull maps the Undefined marker to SQL NULL so missing provider fields
// stay distinguishable from real zeros.
func toNull(v float64) sql.NullFloat64 {
	if !model.Defined(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return model.Undefined()
	}
	return v.Float64
}
