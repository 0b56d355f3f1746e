package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"UpbitSentinel/internal/model"
)

// SQLiteRecorder persists alerts, scan summaries, and backtest results
// to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS alerts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			kind        TEXT NOT NULL,
			price       REAL,
			rsi         REAL,
			bb_position REAL,
			band_width  REAL,
			squeeze     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,

		`CREATE TABLE IF NOT EXISTS scans (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			scan_count    INTEGER,
			instruments   INTEGER,
			signals_found INTEGER,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtest_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			initial_value  REAL,
			final_value    REAL,
			total_return   REAL,
			win_rate       REAL,
			total_trades   INTEGER,
			winning_trades INTEGER,
			avg_profit     REAL,
			avg_loss       REAL,
			profit_factor  REAL,
			max_drawdown   REAL,
			test_days      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_ts ON backtest_results(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	squeeze := 0
	if evt.Squeeze {
		squeeze = 1
	}
	_, err := r.db.Exec(`INSERT INTO alerts
		(timestamp, symbol, kind, price, rsi, bb_position, band_width, squeeze)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Symbol, string(evt.Kind),
		evt.Price, nanToNull(evt.RSI), nanToNull(evt.BBPosition), nanToNull(evt.BandWidth), squeeze,
	)
	return err
}

func (r *SQLiteRecorder) RecordScan(evt *ScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scans
		(timestamp, scan_count, instruments, signals_found, duration_ms)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.ScanCount, evt.Instruments, evt.SignalsFound, evt.DurationMS,
	)
	return err
}

func (r *SQLiteRecorder) RecordBacktest(res *model.BacktestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pf := res.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = -1 // sentinel for "no losing trades"
	}
	_, err := r.db.Exec(`INSERT INTO backtest_results
		(timestamp, symbol, initial_value, final_value, total_return, win_rate,
		 total_trades, winning_trades, avg_profit, avg_loss, profit_factor,
		 max_drawdown, test_days)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), res.Symbol, res.InitialValue, res.FinalValue,
		res.TotalReturn, res.WinRate, res.TotalTrades, res.WinningTrades,
		res.AvgProfit, res.AvgLoss, pf, res.MaxDrawdown, res.TestDays,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nanToNull(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
