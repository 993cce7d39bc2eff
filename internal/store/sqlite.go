package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockScope/internal/model"
)

// SQLiteStore persists fetch history to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			period     TEXT,
			interval   TEXT,
			bar_count  INTEGER,
			dropped    INTEGER,
			duplicates INTEGER,
			first_day  TEXT,
			last_day   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_symbol_ts ON fetch_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS metadata_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			company_name TEXT,
			market_cap   INTEGER,
			sector       TEXT,
			industry     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metadata_symbol_ts ON metadata_snapshots(symbol, timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) RecordFetch(rec *FetchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstDay, lastDay string
	if !rec.FirstDay.IsZero() {
		firstDay = rec.FirstDay.Format("2006-01-02")
	}
	if !rec.LastDay.IsZero() {
		lastDay = rec.LastDay.Format("2006-01-02")
	}

	_, err := s.db.Exec(`INSERT INTO fetch_runs
		(timestamp, symbol, period, interval, bar_count, dropped, duplicates, first_day, last_day)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.Period, rec.Interval,
		rec.BarCount, rec.Dropped, rec.Duplicates, firstDay, lastDay,
	)
	return err
}

func (s *SQLiteStore) RecordMetadata(md *model.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO metadata_snapshots
		(timestamp, symbol, company_name, market_cap, sector, industry)
		VALUES (?,?,?,?,?,?)`,
		md.FetchedAt.Unix(), md.Symbol, md.CompanyName, md.MarketCap, md.Sector, md.Industry,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
