package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "optionscout/internal/errors"
	"optionscout/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Scan journal: one row per completed run
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		horizon_hours INTEGER NOT NULL,
		universe TEXT NOT NULL,
		tier1_count INTEGER NOT NULL,
		tier2_count INTEGER NOT NULL,
		watch_count INTEGER NOT NULL,
		total_scored INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Scored contracts belonging to a run
	CREATE TABLE IF NOT EXISTS scan_ideas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		expiry DATETIME NOT NULL,
		option_type TEXT NOT NULL,
		strike REAL NOT NULL,
		mid REAL NOT NULL,
		spread_pct REAL NOT NULL,
		open_interest INTEGER NOT NULL,
		implied_vol REAL NOT NULL,
		exp_change REAL NOT NULL,
		exp_roi REAL NOT NULL,
		tier TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES scan_runs(id)
	);

	-- Saved liquidity filter presets
	CREATE TABLE IF NOT EXISTS filter_presets (
		name TEXT PRIMARY KEY,
		thresholds TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Named watchlists
	CREATE TABLE IF NOT EXISTS watchlist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		list_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, list_name)
	);

	CREATE INDEX IF NOT EXISTS idx_ideas_run ON scan_ideas(run_id);
	CREATE INDEX IF NOT EXISTS idx_ideas_symbol ON scan_ideas(symbol);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON scan_runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_watchlist_list ON watchlist(list_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun journals a completed scan and its scored contracts, returning the
// run id. Ideas with infinite ROI are stored with exp_roi of -1e308 since
// SQLite REAL cannot hold IEEE infinities exactly through the driver.
func (s *SQLiteStore) SaveRun(ctx context.Context, run models.RankedIdeas) (int64, error) {
	universe, _ := json.Marshal(run.Meta.Universe)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scan_runs (timestamp, horizon_hours, universe, tier1_count, tier2_count, watch_count, total_scored)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.Meta.Timestamp, run.Meta.HorizonHours, string(universe),
		len(run.Tier1), len(run.Tier2), len(run.Watch), len(run.All))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scan_ideas (run_id, symbol, expiry, option_type, strike, mid, spread_pct, open_interest, implied_vol, exp_change, exp_roi, tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, idea := range run.All {
		c := idea.Contract
		_, err := stmt.ExecContext(ctx, runID, c.Symbol, c.Expiry, string(c.Type), c.Strike,
			c.Mid, clampReal(c.SpreadPct), c.OpenInterest, c.ImpliedVol,
			idea.ExpChange, clampReal(idea.ExpROI), string(idea.Tier))
		if err != nil {
			return 0, fmt.Errorf("failed to insert idea: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// GetRuns returns the most recent runs, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, horizon_hours, universe, tier1_count, tier2_count, watch_count, total_scored
		FROM scan_runs ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var universe string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.HorizonHours, &universe,
			&r.Tier1Count, &r.Tier2Count, &r.WatchCount, &r.TotalScored); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		json.Unmarshal([]byte(universe), &r.Universe)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunIdeas returns the scored contracts of a journaled run, best first.
func (s *SQLiteStore) GetRunIdeas(ctx context.Context, runID int64) ([]models.ScoredIdea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, expiry, option_type, strike, mid, spread_pct, open_interest, implied_vol, exp_change, exp_roi, tier
		FROM scan_ideas WHERE run_id = ? ORDER BY exp_roi DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.ScoredIdea
	for rows.Next() {
		var idea models.ScoredIdea
		var optType, tier string
		c := &idea.Contract
		if err := rows.Scan(&c.Symbol, &c.Expiry, &optType, &c.Strike, &c.Mid,
			&c.SpreadPct, &c.OpenInterest, &c.ImpliedVol,
			&idea.ExpChange, &idea.ExpROI, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		c.Type = models.OptionType(optType)
		idea.Tier = models.Tier(tier)
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// SaveFilterPreset creates or replaces a named preset.
func (s *SQLiteStore) SaveFilterPreset(ctx context.Context, preset FilterPreset) error {
	if preset.Name == "" {
		return apperrors.NewValidationError("name", preset.Name, "must not be empty")
	}

	thresholds, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO filter_presets (name, thresholds, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET thresholds = excluded.thresholds, updated_at = CURRENT_TIMESTAMP
	`, preset.Name, string(thresholds))
	if err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	return nil
}

// GetFilterPreset returns a preset by name, or nil when absent.
func (s *SQLiteStore) GetFilterPreset(ctx context.Context, name string) (*FilterPreset, error) {
	var thresholds string
	err := s.db.QueryRowContext(ctx,
		`SELECT thresholds FROM filter_presets WHERE name = ?`, name).Scan(&thresholds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preset: %w", err)
	}

	var preset FilterPreset
	if err := json.Unmarshal([]byte(thresholds), &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
	}
	preset.Name = name
	return &preset, nil
}

// ListFilterPresets returns the saved preset names in alphabetical order.
func (s *SQLiteStore) ListFilterPresets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM filter_presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan preset name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteFilterPreset removes a preset. Deleting an absent preset is not an
// error.
func (s *SQLiteStore) DeleteFilterPreset(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM filter_presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

// AddToWatchlist adds a symbol to a named list. Re-adding is a no-op.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, listName, symbol string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO watchlist (symbol, list_name) VALUES (?, ?)
	`, symbol, listName)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// RemoveFromWatchlist removes a symbol from a named list.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, listName, symbol string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE symbol = ? AND list_name = ?
	`, symbol, listName)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// GetWatchlist returns the symbols of a named list in insertion order.
func (s *SQLiteStore) GetWatchlist(ctx context.Context, listName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol FROM watchlist WHERE list_name = ? ORDER BY id
	`, listName)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// clampReal keeps IEEE infinities out of SQLite REAL columns.
func clampReal(v float64) float64 {
	const maxReal = 1e308
	if v > maxReal {
		return maxReal
	}
	if v < -maxReal {
		return -maxReal
	}
	return v
}

var _ DataStore = (*SQLiteStore)(nil)
