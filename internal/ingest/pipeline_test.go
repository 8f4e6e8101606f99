package ingest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/LexGlu/energy-data-api/internal/eventlog"
	"github.com/LexGlu/energy-data-api/internal/fetcher"
	"github.com/LexGlu/energy-data-api/internal/model"
	"github.com/LexGlu/energy-data-api/internal/spreadsheet"
)

func mustDate(t *testing.T, s string) model.MarketDate {
	t.Helper()
	d, err := model.ParseMarketDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// fakeFetcher serves canned responses per attempt.
type fakeFetcher struct {
	err   error
	calls int
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ model.MarketDate) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "artifact.xls", nil
}

type fakeSheet struct {
	grid [][]string
}

func (f *fakeSheet) Rows() int { return len(f.grid) }

func (f *fakeSheet) Cell(row, col int) string {
	if row >= len(f.grid) || col >= len(f.grid[row]) {
		return ""
	}
	return f.grid[row][col]
}

func dataSheet(hours int) *fakeSheet {
	grid := [][]string{{"Hour", "Price", "Volume"}}
	for h := 1; h <= hours; h++ {
		grid = append(grid, []string{
			fmt.Sprintf("%02d (x)", h),
			fmt.Sprintf("1 50%d,25", h),
			"42,0",
		})
	}
	return &fakeSheet{grid: grid}
}

// memStore records inserts and can fail partway through.
type memStore struct {
	records   []model.Record
	failAfter int // fail InsertRecords after this many rows; 0 = never
	deletes   int
}

func (m *memStore) InsertRecords(records []model.Record) error {
	for i, rec := range records {
		if m.failAfter > 0 && i >= m.failAfter {
			return errors.New("backend write rejected")
		}
		m.records = append(m.records, rec)
	}
	return nil
}

func (m *memStore) DeleteRecordsForDate(date model.MarketDate) error {
	m.deletes++
	kept := m.records[:0]
	for _, rec := range m.records {
		if !rec.Date.Equal(date) {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

func (m *memStore) RecordsForDate(date model.MarketDate) ([]model.Record, error) {
	var out []model.Record
	for _, rec := range m.records {
		if rec.Date.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) RecordsForRange(start, end model.MarketDate) ([]model.Record, error) {
	return m.records, nil
}

func (m *memStore) Close() error { return nil }

type memLedger struct {
	marked []model.MarketDate
}

func (l *memLedger) AlreadyIngested(date model.MarketDate) (bool, error) {
	for _, d := range l.marked {
		if d.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (l *memLedger) MarkIngested(date model.MarketDate) error {
	l.marked = append(l.marked, date)
	return nil
}

func newPipeline(f fetcher.Fetcher, sheet spreadsheet.Sheet, st *memStore, ledger *memLedger) *Pipeline {
	p := NewPipeline(f, st, ledger, eventlog.New(""))
	p.Classify = func(string) (spreadsheet.Sheet, bool, error) {
		return sheet, spreadsheet.Available(sheet), nil
	}
	return p
}

func TestRunOnce_Success(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	st := &memStore{}
	ledger := &memLedger{}
	p := newPipeline(&fakeFetcher{}, dataSheet(24), st, ledger)

	outcome, err := p.RunOnce(date)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != OutcomeIngested {
		t.Fatalf("expected OutcomeIngested, got %v", outcome)
	}
	if len(st.records) != 24 {
		t.Errorf("expected 24 persisted records, got %d", len(st.records))
	}
	if len(ledger.marked) != 1 {
		t.Errorf("expected exactly one ledger write, got %d", len(ledger.marked))
	}
	ok, _ := p.AlreadyIngested(date)
	if !ok {
		t.Error("date must be ledgered after success")
	}
}

func TestRunOnce_Non200IsNotAvailable(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	st := &memStore{}
	ledger := &memLedger{}
	p := newPipeline(&fakeFetcher{err: &fetcher.StatusError{StatusCode: 503}}, dataSheet(24), st, ledger)

	outcome, err := p.RunOnce(date)
	if err != nil {
		t.Fatalf("non-200 must not be an error: %v", err)
	}
	if outcome != OutcomeNotAvailable {
		t.Errorf("expected OutcomeNotAvailable, got %v", outcome)
	}
	if len(ledger.marked) != 0 || len(st.records) != 0 {
		t.Error("nothing may be written for an unavailable date")
	}
}

func TestRunOnce_HeaderOnlyIsNotAvailable(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	st := &memStore{}
	ledger := &memLedger{}
	headerOnly := &fakeSheet{grid: [][]string{{"Hour", "Price", "Volume"}}}
	p := newPipeline(&fakeFetcher{}, headerOnly, st, ledger)

	outcome, err := p.RunOnce(date)
	if err != nil {
		t.Fatalf("header-only must not be an error: %v", err)
	}
	if outcome != OutcomeNotAvailable {
		t.Errorf("expected OutcomeNotAvailable, got %v", outcome)
	}
}

func TestRunOnce_ParseFailureLeavesDateUnledgered(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	st := &memStore{}
	ledger := &memLedger{}
	bad := &fakeSheet{grid: [][]string{
		{"Hour", "Price", "Volume"},
		{"01 (x)", "not-a-number", "42,0"},
	}}
	p := newPipeline(&fakeFetcher{}, bad, st, ledger)

	_, err := p.RunOnce(date)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(st.records) != 0 {
		t.Error("parse failure must not persist partial rows")
	}
	if len(ledger.marked) != 0 {
		t.Error("parse failure must not write the ledger")
	}
}

func TestRunOnce_PartialPersistFailureLeavesDateUnledgered(t *testing.T) {
	date := mustDate(t, "09.06.2023")
	st := &memStore{failAfter: 5}
	ledger := &memLedger{}
	p := newPipeline(&fakeFetcher{}, dataSheet(24), st, ledger)

	_, err := p.RunOnce(date)
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistError, got %v", err)
	}
	if len(ledger.marked) != 0 {
		t.Error("partial persist must not write the ledger")
	}

	// retry after the backend recovers: clears partial rows first, no dupes
	st.failAfter = 0
	outcome, err := p.RunOnce(date)
	if err != nil || outcome != OutcomeIngested {
		t.Fatalf("retry failed: outcome=%v err=%v", outcome, err)
	}
	got, _ := st.RecordsForDate(date)
	if len(got) != 24 {
		t.Errorf("expected 24 rows after retry, got %d", len(got))
	}
	if len(ledger.marked) != 1 {
		t.Errorf("expected one ledger write after retry, got %d", len(ledger.marked))
	}
}
