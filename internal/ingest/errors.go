package ingest

import (
	"fmt"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// ParseError means the publisher released data for the date but its content
// would not convert. Nothing is persisted and the date stays un-ledgered, so
// a later invocation retries it.
type ParseError struct {
	Date model.MarketDate
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse data for %s: %v", e.Date, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistError means the storage backend rejected the write. The ledger is
// left unset, so retrying the whole date is safe.
type PersistError struct {
	Date model.MarketDate
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist data for %s: %v", e.Date, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
