package recorder

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "create dir for %s", dbPath)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	logger.Info("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			mode         TEXT,
			symbol       TEXT NOT NULL,
			strategy     TEXT,
			bars         INTEGER,
			last_close   REAL,
			last_signal  INTEGER,
			events       INTEGER,
			closed_count INTEGER,
			realized_pnl TEXT,
			win_rate     TEXT,
			open_entry   REAL,
			unrealized   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signal_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			bar_time  INTEGER NOT NULL,
			change    INTEGER NOT NULL,
			close     REAL,
			fast_line REAL,
			slow_line REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON signal_events(run_id)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			status      TEXT NOT NULL,
			entry_time  INTEGER,
			entry_price REAL,
			exit_time   INTEGER,
			exit_price  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func nullable(n model.Num) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Val
}

func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	if snap == nil || snap.Frame == nil {
		return errors.New("record run: empty snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	f := snap.Frame
	sum := snap.Book.Summary()
	events := f.Events()

	var lastClose interface{}
	lastSignal := int(model.Flat)
	if last, ok := f.Last(); ok {
		lastClose = nullable(last.Close)
		lastSignal = int(last.Signal)
	}
	var openEntry, unrealized interface{}
	if o := snap.Book.Open; o != nil {
		openEntry = o.EntryPrice
		unrealized = o.Unrealized
	}

	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, timestamp, mode, symbol, strategy, bars, last_close, last_signal,
		 events, closed_count, realized_pnl, win_rate, open_entry, unrealized)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.At.Unix(), snap.Mode, snap.Symbol, snap.Strategy,
		f.Len(), lastClose, lastSignal,
		len(events), sum.Trades, sum.RealizedPnL.String(), sum.WinRate.String(),
		openEntry, unrealized,
	); err != nil {
		return errors.Wrap(err, "insert run")
	}

	for _, e := range events {
		if _, err := tx.Exec(`INSERT INTO signal_events
			(run_id, bar_time, change, close, fast_line, slow_line)
			VALUES (?,?,?,?,?,?)`,
			snap.RunID, e.Time.Unix(), int(e.Change),
			nullable(e.Close), nullable(e.FastLine), nullable(e.SlowLine),
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}

	insertTrade := func(status string, t model.Trade) error {
		var exitTime, exitPrice interface{}
		if t.Closed {
			exitTime, exitPrice = t.ExitTime.Unix(), nullable(t.ExitPrice)
		}
		_, err := tx.Exec(`INSERT INTO trades
			(run_id, status, entry_time, entry_price, exit_time, exit_price)
			VALUES (?,?,?,?,?,?)`,
			snap.RunID, status, t.EntryTime.Unix(), t.EntryPrice, exitTime, exitPrice,
		)
		return errors.Wrap(err, "insert trade")
	}
	for _, t := range snap.Book.Closed {
		if err := insertTrade("closed", t); err != nil {
			return err
		}
	}
	if o := snap.Book.Open; o != nil {
		if err := insertTrade("open", o.Trade); err != nil {
			return err
		}
	}
	for _, t := range snap.Book.Stale {
		if err := insertTrade("stale", t); err != nil {
			return err
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// RecentRuns returns the latest runs for symbol, newest first.
func (r *SQLiteRecorder) RecentRuns(symbol string, limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, mode, symbol, strategy, bars,
		COALESCE(last_close, 0), last_signal, events, closed_count,
		realized_pnl, win_rate, COALESCE(open_entry, 0), COALESCE(unrealized, 0)
		FROM runs WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var ts int64
		if err := rows.Scan(&rec.RunID, &ts, &rec.Mode, &rec.Symbol, &rec.Strategy, &rec.Bars,
			&rec.LastClose, &rec.LastSignal, &rec.Events, &rec.ClosedCount,
			&rec.RealizedPnL, &rec.WinRate, &rec.OpenEntry, &rec.Unrealized); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate runs")
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
