package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"StockPulse/internal/model"
	"StockPulse/internal/strategy"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets dashboards read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			symbol             TEXT NOT NULL,
			period             TEXT,
			interval           TEXT,
			last_close         REAL,
			trend              TEXT,
			score              REAL,
			recommendation     TEXT,
			rsi14              REAL,
			ema20_gt_ema50     INTEGER,
			rsi_balance        REAL,
			macd_hist          REAL,
			ema_trend          REAL,
			bb_pos             REAL,
			ret_1d             REAL,
			ret_5d             REAL,
			risk_penalty       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS ranking_runs (
			run_id          TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			source          TEXT,
			period          TEXT,
			interval        TEXT,
			ranked_count    INTEGER,
			skipped_symbols TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON ranking_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS rankings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			rank           INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			score          REAL,
			recommendation TEXT,
			trend          TEXT,
			last_close     REAL,
			rsi14          REAL,
			ema20_gt_ema50 INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	factors := make(map[string]float64, len(a.Components))
	for _, f := range a.Components {
		factors[f.Name] = f.RawScore
	}

	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, symbol, period, interval, last_close, trend, score, recommendation,
		 rsi14, ema20_gt_ema50,
		 rsi_balance, macd_hist, ema_trend, bb_pos, ret_1d, ret_5d, risk_penalty)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), a.Symbol, a.Period, a.Interval, a.LastClose,
		string(a.Trend), a.Score, string(a.Recommendation),
		a.Indicators.RSI14, a.Indicators.EMA20AboveEMA50,
		factors[strategy.FactorRSIBalance], factors[strategy.FactorMACDHist],
		factors[strategy.FactorEMATrend], factors[strategy.FactorBBPos],
		factors[strategy.FactorRet1], factors[strategy.FactorRet5],
		factors[strategy.FactorRiskPenalty],
	)
	return err
}

func (r *SQLiteRecorder) RecordRanking(run *RankingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	skipped := make([]string, 0, len(run.Ranking.Skipped))
	for _, s := range run.Ranking.Skipped {
		skipped = append(skipped, s.Symbol)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO ranking_runs
		(run_id, timestamp, source, period, interval, ranked_count, skipped_symbols)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, time.Now().Unix(), run.Trigger, run.Period, run.Interval,
		len(run.Ranking.Ranked), strings.Join(skipped, ","),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range run.Ranking.Ranked {
		if _, err := tx.Exec(`INSERT INTO rankings
			(run_id, rank, symbol, score, recommendation, trend, last_close, rsi14, ema20_gt_ema50)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			run.ID, i+1, res.Symbol, res.Score, string(res.Recommendation), string(res.Trend),
			res.LastClose, res.RSI14, res.EMA20AboveEMA50,
		); err != nil {
			return fmt.Errorf("insert ranking row: %w", err)
		}
	}
	return tx.Commit()
}

// RecentAnalyses returns up to limit analyses of symbol, newest first.
func (r *SQLiteRecorder) RecentAnalyses(symbol string, limit int) ([]AnalysisRecord, error) {
	rows, err := r.db.Query(`SELECT timestamp, symbol, period, interval, last_close, trend,
		score, recommendation, rsi14, ema20_gt_ema50
		FROM analyses WHERE symbol = ? ORDER BY id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var (
			rec    AnalysisRecord
			ts     int64
			trend  string
			action string
		)
		if err := rows.Scan(&ts, &rec.Symbol, &rec.Period, &rec.Interval, &rec.LastClose,
			&trend, &rec.Score, &action, &rec.RSI14, &rec.EMA20AboveEMA50); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.Trend = model.Trend(trend)
		rec.Recommendation = model.Recommendation(action)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
