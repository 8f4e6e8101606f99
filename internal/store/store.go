package store

import "github.com/LexGlu/energy-data-api/internal/model"

// Store persists hourly records and serves the read API's lookup contract.
// Inserts are append-only; the sink clears a date before re-inserting it.
type Store interface {
	InsertRecords(records []model.Record) error
	DeleteRecordsForDate(date model.MarketDate) error
	RecordsForDate(date model.MarketDate) ([]model.Record, error)
	RecordsForRange(start, end model.MarketDate) ([]model.Record, error)
	Close() error
}

// Ledger is the durable record of fully ingested dates. A date must only be
// marked after every one of its records is durably written.
type Ledger interface {
	AlreadyIngested(date model.MarketDate) (bool, error)
	MarkIngested(date model.MarketDate) error
}

// AtomicIngester is implemented by transactional backends that can write a
// date's rows and its ledger entry as one unit. The sink prefers it when
// available.
type AtomicIngester interface {
	IngestDate(records []model.Record, date model.MarketDate) error
}
