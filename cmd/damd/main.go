package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LexGlu/energy-data-api/internal/config"
	"github.com/LexGlu/energy-data-api/internal/eventlog"
	"github.com/LexGlu/energy-data-api/internal/fetcher"
	"github.com/LexGlu/energy-data-api/internal/ingest"
	"github.com/LexGlu/energy-data-api/internal/model"
	"github.com/LexGlu/energy-data-api/internal/poller"
	"github.com/LexGlu/energy-data-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] damd starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init storage backend and ledger
	st, ledger, err := store.Open(cfg.Storage.Backend, cfg.Storage.SQLitePath, cfg.Storage.CSVPath, cfg.Storage.LedgerFile)
	if err != nil {
		log.Fatalf("[FATAL] init storage: %v", err)
	}
	defer st.Close()
	log.Printf("[INFO] storage backend: %s", cfg.Storage.Backend)

	// Init pipeline and poller
	events := eventlog.New(cfg.Log.EventsFile)
	f := fetcher.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Workdir, time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	pipeline := ingest.NewPipeline(f, st, ledger, events)
	p := poller.New(pipeline, time.Duration(cfg.Poll.IntervalSeconds)*time.Second, cfg.Poll.MaxAttempts, events)
	log.Printf("[INFO] data source: %s", f.Name())

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runPoll := func() {
		date := targetDate(cfg.Poll.Target)
		log.Printf("[INFO] starting poll for %s", date)
		final, err := p.Run(ctx, date)
		if err != nil {
			log.Printf("[ERROR] poll for %s: %v", date, err)
			return
		}
		log.Printf("[INFO] poll for %s finished: %s", date, final)
	}

	// The daily cron entry only kicks the poll off; the poll loop itself owns
	// its ticker and attempt budget.
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Poll.DailyCron, runPoll); err != nil {
		log.Fatalf("[FATAL] register daily poll: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Printf("[INFO] daily poll scheduled: %s (target %s)", cfg.Poll.DailyCron, cfg.Poll.Target)

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, polling now")
		go runPoll()
	}

	log.Println("[INFO] damd is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] damd stopped")
}

// targetDate resolves the delivery day to poll for. The market publishes
// day-ahead results, so "tomorrow" is the normal target.
func targetDate(target string) model.MarketDate {
	today := model.DateOf(time.Now())
	if target == "today" {
		return today
	}
	return today.AddDays(1)
}
