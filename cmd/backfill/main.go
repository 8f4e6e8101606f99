package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LexGlu/energy-data-api/internal/backfill"
	"github.com/LexGlu/energy-data-api/internal/config"
	"github.com/LexGlu/energy-data-api/internal/eventlog"
	"github.com/LexGlu/energy-data-api/internal/fetcher"
	"github.com/LexGlu/energy-data-api/internal/ingest"
	"github.com/LexGlu/energy-data-api/internal/model"
	"github.com/LexGlu/energy-data-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "path to config file")
		startStr = flag.String("start", "", "first date to ingest (dd.mm.yyyy)")
		endStr   = flag.String("end", "", "last date to ingest (dd.mm.yyyy)")
	)
	flag.Parse()
	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}

	if *startStr == "" || *endStr == "" {
		log.Fatal("[FATAL] both -start and -end are required (dd.mm.yyyy)")
	}
	start, err := model.ParseMarketDate(*startStr)
	if err != nil {
		log.Fatalf("[FATAL] -start: %v", err)
	}
	end, err := model.ParseMarketDate(*endStr)
	if err != nil {
		log.Fatalf("[FATAL] -end: %v", err)
	}
	if start.After(end) {
		log.Fatal("[FATAL] -start must not be after -end")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	st, ledger, err := store.Open(cfg.Storage.Backend, cfg.Storage.SQLitePath, cfg.Storage.CSVPath, cfg.Storage.LedgerFile)
	if err != nil {
		log.Fatalf("[FATAL] init storage: %v", err)
	}
	defer st.Close()

	events := eventlog.New(cfg.Log.EventsFile)
	f := fetcher.NewHTTPFetcher(cfg.Source.BaseURL, cfg.Workdir, time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	pipeline := ingest.NewPipeline(f, st, ledger, events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[INFO] interrupt received, stopping after current date")
		cancel()
	}()

	log.Printf("[INFO] backfilling %s .. %s", start, end)
	sum, err := backfill.Run(ctx, pipeline, start, end)
	if err != nil {
		log.Printf("[WARN] backfill interrupted: %v", err)
	}
	log.Printf("[INFO] backfill finished: ingested=%d skipped=%d not_available=%d failed=%d",
		sum.Ingested, sum.Skipped, sum.NotAvailable, sum.Failed)
}
