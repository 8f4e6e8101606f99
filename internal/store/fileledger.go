package store

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/LexGlu/energy-data-api/internal/model"
)

// FileLedger is a plain-text append log of ingested dates, one dd.mm.yyyy
// token per line. Membership is a substring check over the whole file.
type FileLedger struct {
	path string
	mu   sync.Mutex
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

func (l *FileLedger) AlreadyIngested(date model.MarketDate) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read ledger: %w", err)
	}
	return strings.Contains(string(data), date.String()), nil
}

func (l *FileLedger) MarkIngested(date model.MarketDate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, date); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}
