package store

import "fmt"

// Open builds the configured storage backend and its ledger. The SQLite
// backend is its own ledger (one database, atomic ingest); the CSV backend
// pairs with the plain-text file ledger.
func Open(backend, sqlitePath, csvPath, ledgerFile string) (Store, Ledger, error) {
	switch backend {
	case "sqlite":
		s, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "csv":
		return NewCSVStore(csvPath), NewFileLedger(ledgerFile), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
