package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// SQLiteStore keeps records and the ingestion ledger in one SQLite database,
// which lets a date's rows and its ledger entry commit atomically.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the query API can read while the poller writes.
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
		`CREATE TABLE IF NOT EXISTS dam_records (
			date   TEXT    NOT NULL,
			hour   INTEGER NOT NULL,
			price  REAL,
			volume REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dam_records_date ON dam_records(date)`,

		`CREATE TABLE IF NOT EXISTS ingested_dates (
			date TEXT PRIMARY KEY
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertRecords(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertRecordsTx(tx, records); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// IngestDate writes all records for date plus the ledger entry in one
// transaction. Any pre-existing rows for the date are cleared first, so a
// retry after a partial failure cannot leave duplicates.
func (s *SQLiteStore) IngestDate(records []model.Record, date model.MarketDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM dam_records WHERE date = ?`, date.ISO()); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear rows for %s: %w", date, err)
	}
	if err := insertRecordsTx(tx, records); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO ingested_dates (date) VALUES (?)`, date.ISO()); err != nil {
		tx.Rollback()
		return fmt.Errorf("mark ingested %s: %w", date, err)
	}
	return tx.Commit()
}

func insertRecordsTx(tx *sql.Tx, records []model.Record) error {
	stmt, err := tx.Prepare(`INSERT INTO dam_records (date, hour, price, volume) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, rec := range records {
		if _, err := stmt.Exec(rec.Date.ISO(), rec.Hour, rec.Price, rec.Volume); err != nil {
			return fmt.Errorf("insert %s hour %d: %w", rec.Date, rec.Hour, err)
		}
	}
	return nil
}

func (s *SQLiteStore) DeleteRecordsForDate(date model.MarketDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM dam_records WHERE date = ?`, date.ISO())
	return err
}

func (s *SQLiteStore) RecordsForDate(date model.MarketDate) ([]model.Record, error) {
	rows, err := s.db.Query(
		`SELECT date, hour, price, volume FROM dam_records WHERE date = ? ORDER BY date, hour`,
		date.ISO())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", date, err)
	}
	return scanRecords(rows)
}

func (s *SQLiteStore) RecordsForRange(start, end model.MarketDate) ([]model.Record, error) {
	rows, err := s.db.Query(
		`SELECT date, hour, price, volume FROM dam_records WHERE date >= ? AND date <= ? ORDER BY date, hour`,
		start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("query %s..%s: %w", start, end, err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	defer rows.Close()
	var records []model.Record
	for rows.Next() {
		var iso string
		var rec model.Record
		if err := rows.Scan(&iso, &rec.Hour, &rec.Price, &rec.Volume); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		date, err := model.ParseISODate(iso)
		if err != nil {
			return nil, err
		}
		rec.Date = date
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) AlreadyIngested(date model.MarketDate) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ingested_dates WHERE date = ?`, date.ISO()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ledger lookup %s: %w", date, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) MarkIngested(date model.MarketDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR IGNORE INTO ingested_dates (date) VALUES (?)`, date.ISO())
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
