package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/LexGlu/energy-data-api/internal/api"
	"github.com/LexGlu/energy-data-api/internal/config"
	"github.com/LexGlu/energy-data-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

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

	st, _, err := store.Open(cfg.Storage.Backend, cfg.Storage.SQLitePath, cfg.Storage.CSVPath, cfg.Storage.LedgerFile)
	if err != nil {
		log.Fatalf("[FATAL] init storage: %v", err)
	}
	defer st.Close()
	log.Printf("[INFO] storage backend: %s", cfg.Storage.Backend)

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(st, cfg.Poll.Target))

	handler := cors.Default().Handler(router)
	addr := ":" + cfg.API.Port
	log.Printf("[INFO] query API listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("[FATAL] serve: %v", err)
	}
}
