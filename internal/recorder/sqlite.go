package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
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

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			computed_at    INTEGER NOT NULL,
			bars           INTEGER NOT NULL,
			last_time      INTEGER,
			last_close     REAL,
			momentum       TEXT,
			mean_reversion TEXT,
			params         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON analysis_runs(symbol, computed_at)`,

		`CREATE TABLE IF NOT EXISTS signal_rows (
			run_id         INTEGER NOT NULL REFERENCES analysis_runs(id),
			timestamp      INTEGER NOT NULL,
			close          REAL NOT NULL,
			momentum_short REAL,
			momentum_long  REAL,
			rsi            REAL,
			sma            REAL,
			std            REAL,
			upper_band     REAL,
			lower_band     REAL,
			zscore         REAL,
			momentum       TEXT NOT NULL,
			mean_reversion TEXT NOT NULL,
			PRIMARY KEY (run_id, timestamp)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an undefined value to SQL NULL.
func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.Valid}
}

// RecordAnalysis stores the run header and every row in one transaction.
func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) (int64, error) {
	if a == nil || a.Len() == 0 {
		return 0, fmt.Errorf("record analysis: empty analysis")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	params, err := json.Marshal(a.Thresholds)
	if err != nil {
		return 0, fmt.Errorf("marshal params: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	last := a.Latest()
	res, err := tx.Exec(`INSERT INTO analysis_runs
		(symbol, computed_at, bars, last_time, last_close, momentum, mean_reversion, params)
		VALUES (?,?,?,?,?,?,?,?)`,
		a.Symbol, a.ComputedAt.Unix(), a.Len(), last.Time.Unix(), last.Close,
		last.Momentum.String(), last.MeanReversion.String(), string(params),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO signal_rows
		(run_id, timestamp, close, momentum_short, momentum_long, rsi,
		 sma, std, upper_band, lower_band, zscore, momentum, mean_reversion)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	var shortCol, longCol string
	if p := a.Thresholds.MomentumPeriods; len(p) > 0 {
		shortCol, longCol = model.MomentumColumn(p[0]), model.MomentumColumn(p[len(p)-1])
	}
	f := a.Frame
	for i := 0; i < a.Len(); i++ {
		_, err := stmt.Exec(runID, f.Times[i].Unix(), a.Closes[i],
			nullable(f.At(i, shortCol)), nullable(f.At(i, longCol)), nullable(f.At(i, model.ColRSI)),
			nullable(f.At(i, model.ColSMA)), nullable(f.At(i, model.ColSTD)),
			nullable(f.At(i, model.ColUpperBand)), nullable(f.At(i, model.ColLowerBand)),
			nullable(f.At(i, model.ColZScore)),
			a.Momentum[i].String(), a.MeanReversion[i].String(),
		)
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recent run for symbol, or nil if none exists.
func (r *SQLiteRecorder) LatestRun(symbol string) (*RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		s                 RunSummary
		computedAt, lastT int64
		mom, mr, params   string
	)
	err := r.db.QueryRow(`SELECT id, symbol, computed_at, bars, last_time, last_close,
		momentum, mean_reversion, params
		FROM analysis_runs WHERE symbol = ? ORDER BY id DESC LIMIT 1`, symbol).
		Scan(&s.ID, &s.Symbol, &computedAt, &s.Bars, &lastT, &s.LastClose, &mom, &mr, &params)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	s.ComputedAt = time.Unix(computedAt, 0).UTC()
	s.LastTime = time.Unix(lastT, 0).UTC()
	if s.Momentum, err = model.ParseSignal(mom); err != nil {
		return nil, err
	}
	if s.MeanReversion, err = model.ParseSignal(mr); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(params), &s.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return &s, nil
}

// CountRows returns how many signal rows were stored for a run.
func (r *SQLiteRecorder) CountRows(runID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM signal_rows WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
