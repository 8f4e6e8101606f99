// Package poller drives repeated acquisition attempts for one delivery day
// until the publisher releases data or the attempt budget runs out. The loop
// owns its own ticker; stopping is expressed by returning, not by cancelling
// a shared job registry.
package poller

import (
	"context"
	"log"
	"time"

	"github.com/LexGlu/energy-data-api/internal/eventlog"
	"github.com/LexGlu/energy-data-api/internal/ingest"
	"github.com/LexGlu/energy-data-api/internal/model"
)

// State of the per-date poll job.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateAvailable
	StateParsing
	StatePersisting
	StateDone
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateChecking:
		return "Checking"
	case StateAvailable:
		return "Available"
	case StateParsing:
		return "Parsing"
	case StatePersisting:
		return "Persisting"
	case StateDone:
		return "Done"
	case StateTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Poller runs the poll loop for one date at a time.
type Poller struct {
	Pipeline    *ingest.Pipeline
	Interval    time.Duration
	MaxAttempts int
	Events      *eventlog.Logger

	// OnTransition, when set, observes every state change.
	OnTransition func(State)
}

func New(pipeline *ingest.Pipeline, interval time.Duration, maxAttempts int, events *eventlog.Logger) *Poller {
	return &Poller{
		Pipeline:    pipeline,
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Events:      events,
	}
}

func (p *Poller) transition(s State) {
	if p.OnTransition != nil {
		p.OnTransition(s)
	}
}

// Run polls for date until it is ingested or the budget is exhausted. The
// terminal state is StateDone or StateTimedOut; budget exhaustion is an
// expected outcome, never an error. Transient failures (publisher not ready,
// parse or persist problems) leave the job idle until the next tick.
func (p *Poller) Run(ctx context.Context, date model.MarketDate) (State, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.Pipeline.OnStage = func(stage ingest.Stage) {
		switch stage {
		case ingest.StageAvailable:
			p.transition(StateAvailable)
		case ingest.StageParsing:
			p.transition(StateParsing)
		case ingest.StagePersisting:
			p.transition(StatePersisting)
		}
	}
	defer func() { p.Pipeline.OnStage = nil }()

	p.transition(StateIdle)
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return StateIdle, ctx.Err()
		case <-ticker.C:
		}

		log.Printf("[INFO] polling %s, attempt %d/%d", date, attempt, p.MaxAttempts)
		p.transition(StateChecking)

		done, err := p.Pipeline.AlreadyIngested(date)
		if err != nil {
			log.Printf("[WARN] ledger check for %s: %v", date, err)
			p.transition(StateIdle)
			continue
		}
		if done {
			p.Events.Logf("data for %s was already downloaded and processed", date)
			p.transition(StateDone)
			return StateDone, nil
		}

		outcome, err := p.Pipeline.RunOnce(date)
		if err != nil {
			log.Printf("[WARN] attempt %d for %s: %v", attempt, date, err)
			p.transition(StateIdle)
			continue
		}
		if outcome == ingest.OutcomeIngested {
			p.transition(StateDone)
			return StateDone, nil
		}
		p.transition(StateIdle)
	}

	p.Events.Logf("polling stopped after %d attempts. Data for %s was not downloaded!", p.MaxAttempts, date)
	p.transition(StateTimedOut)
	return StateTimedOut, nil
}
