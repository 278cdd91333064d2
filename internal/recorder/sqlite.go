package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"PriceBoard/internal/model"
)

// SQLiteRecorder persists render history to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS renders (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			chat_id    TEXT,
			origin     TEXT,
			source     TEXT,
			symbols    TEXT,
			period     TEXT,
			mode       TEXT,
			row_count  INTEGER,
			col_count  INTEGER,
			first_date TEXT,
			last_date  TEXT,
			missing    TEXT,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_ts ON renders(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_chat ON renders(chat_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS render_stats (
			render_id TEXT NOT NULL REFERENCES renders(id),
			symbol    TEXT NOT NULL,
			count     INTEGER,
			mean      REAL,
			std       REAL,
			min       REAL,
			p25       REAL,
			p50       REAL,
			p75       REAL,
			max       REAL,
			PRIMARY KEY (render_id, symbol)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRender stores a render and, when it succeeded, the summary
// statistics of its view. Missing statistics are stored as NULL.
func (r *SQLiteRecorder) RecordRender(evt *RenderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	sel := evt.Selection
	var source, firstDate, lastDate, errText string
	var rows, cols int
	var missing []string
	var stats []model.ColumnStats
	if snap := evt.Snapshot; snap != nil {
		id = snap.ID
		sel = snap.Selection
		source = snap.Source
		rows, cols = snap.Prices.Rows(), snap.Prices.Cols()
		if dates := snap.Prices.Dates(); len(dates) > 0 {
			firstDate = dates[0].Format(time.DateOnly)
			lastDate = dates[len(dates)-1].Format(time.DateOnly)
		}
		missing = snap.Missing
		stats = snap.Stats
	}
	if evt.Err != nil {
		errText = evt.Err.Error()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO renders
		(id, timestamp, chat_id, origin, source, symbols, period, mode,
		 row_count, col_count, first_date, last_date, missing, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id.String(), time.Now().Unix(), evt.ChatID, evt.Trigger, source,
		strings.Join(sel.Symbols, ","), string(sel.Period), string(sel.Mode),
		rows, cols, firstDate, lastDate, strings.Join(missing, ","), errText,
	)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}

	for _, st := range stats {
		_, err := tx.Exec(`INSERT INTO render_stats
			(render_id, symbol, count, mean, std, min, p25, p50, p75, max)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id.String(), st.Symbol, st.Count,
			st.Mean, st.Std, st.Min, st.P25, st.P50, st.P75, st.Max,
		)
		if err != nil {
			return fmt.Errorf("insert stats %s: %w", st.Symbol, err)
		}
	}
	return tx.Commit()
}

// History returns the most recent renders for chatID, newest first.
func (r *SQLiteRecorder) History(chatID string, limit int) ([]RenderSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, origin, symbols, period, mode,
		row_count, col_count, missing, error
		FROM renders WHERE chat_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []RenderSummary
	for rows.Next() {
		var s RenderSummary
		var ts int64
		var symbols, period, mode, missing string
		if err := rows.Scan(&s.ID, &ts, &s.Trigger, &symbols, &period, &mode,
			&s.Rows, &s.Cols, &missing, &s.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0)
		s.Symbols = splitList(symbols)
		s.Period = model.Period(period)
		s.Mode = model.ViewMode(mode)
		s.Missing = splitList(missing)
		out = append(out, s)
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
