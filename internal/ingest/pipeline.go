package ingest

import (
	"errors"
	"fmt"

	"github.com/LexGlu/energy-data-api/internal/eventlog"
	"github.com/LexGlu/energy-data-api/internal/fetcher"
	"github.com/LexGlu/energy-data-api/internal/model"
	"github.com/LexGlu/energy-data-api/internal/spreadsheet"
	"github.com/LexGlu/energy-data-api/internal/store"
)

// Outcome is the result of one acquisition attempt for a date.
type Outcome int

const (
	// OutcomeNotAvailable: publisher has no data yet (non-200 or header-only
	// sheet). Expected; try again next tick.
	OutcomeNotAvailable Outcome = iota
	// OutcomeIngested: all records persisted and the date ledgered.
	OutcomeIngested
)

// Stage marks progress points within a single RunOnce.
type Stage int

const (
	StageAvailable Stage = iota
	StageParsing
	StagePersisting
)

// Pipeline runs the fetch → classify → normalize → persist sequence for one
// date. It owns no schedule; the poller and the backfill driver drive it.
type Pipeline struct {
	Fetcher fetcher.Fetcher
	Store   store.Store
	Ledger  store.Ledger
	Events  *eventlog.Logger

	// Classify is the tolerant spreadsheet open; overridable in tests.
	Classify func(path string) (spreadsheet.Sheet, bool, error)

	// OnStage, when set, is called as RunOnce reaches each stage. The poller
	// uses it to surface job state.
	OnStage func(Stage)
}

func NewPipeline(f fetcher.Fetcher, st store.Store, ledger store.Ledger, events *eventlog.Logger) *Pipeline {
	return &Pipeline{
		Fetcher:  f,
		Store:    st,
		Ledger:   ledger,
		Events:   events,
		Classify: spreadsheet.Classify,
	}
}

// AlreadyIngested reports whether the date has completed a previous run.
func (p *Pipeline) AlreadyIngested(date model.MarketDate) (bool, error) {
	return p.Ledger.AlreadyIngested(date)
}

// RunOnce executes one full attempt for date. A non-200 response classifies
// as not-available rather than an error; parse and persist failures come back
// as *ParseError and *PersistError so callers can tell them apart.
//
// Callers are expected to check AlreadyIngested first; RunOnce itself never
// consults the ledger before writing.
func (p *Pipeline) RunOnce(date model.MarketDate) (Outcome, error) {
	path, err := p.Fetcher.Fetch(date)
	if err != nil {
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			p.Events.Logf("error while downloading the file. Status code: %d", se.StatusCode)
			return OutcomeNotAvailable, nil
		}
		return OutcomeNotAvailable, fmt.Errorf("fetch %s: %w", date, err)
	}

	sheet, available, err := p.Classify(path)
	if err != nil {
		return OutcomeNotAvailable, fmt.Errorf("classify %s: %w", date, err)
	}
	if !available {
		p.Events.Logf("data for %s is not available yet", date)
		return OutcomeNotAvailable, nil
	}
	p.stage(StageAvailable)
	p.Events.Logf("data for %s is available and ready to be processed", date)

	p.stage(StageParsing)
	records, err := spreadsheet.Normalize(sheet, date)
	if err != nil {
		p.Events.Logf("error while processing data: %v", err)
		return OutcomeNotAvailable, &ParseError{Date: date, Err: err}
	}
	p.Events.Logf("data for %s was successfully processed", date)

	p.stage(StagePersisting)
	if err := p.persist(records, date); err != nil {
		p.Events.Logf("error while saving data: %v", err)
		return OutcomeNotAvailable, &PersistError{Date: date, Err: err}
	}
	p.Events.Logf("processed data for %s was successfully saved", date)
	return OutcomeIngested, nil
}

func (p *Pipeline) stage(s Stage) {
	if p.OnStage != nil {
		p.OnStage(s)
	}
}

// persist writes all records for the date and only then the ledger entry.
// Transactional backends do both in one unit; otherwise existing rows for the
// date are cleared first so a retry after a partial write cannot duplicate.
func (p *Pipeline) persist(records []model.Record, date model.MarketDate) error {
	if atomic, ok := p.Store.(store.AtomicIngester); ok {
		return atomic.IngestDate(records, date)
	}
	if err := p.Store.DeleteRecordsForDate(date); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if err := p.Store.InsertRecords(records); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	if err := p.Ledger.MarkIngested(date); err != nil {
		return fmt.Errorf("mark ingested: %w", err)
	}
	return nil
}
