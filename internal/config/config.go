package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`
	Poll struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		MaxAttempts     int    `yaml:"max_attempts"`
		DailyCron       string `yaml:"daily_cron"`
		Target          string `yaml:"target"` // "tomorrow" or "today"
	} `yaml:"poll"`
	Storage struct {
		Backend    string `yaml:"backend"` // "sqlite" or "csv"
		SQLitePath string `yaml:"sqlite_path"`
		CSVPath    string `yaml:"csv_path"`
		LedgerFile string `yaml:"ledger_file"`
	} `yaml:"storage"`
	API struct {
		Port string `yaml:"port"`
	} `yaml:"api"`
	Log struct {
		EventsFile string `yaml:"events_file"`
	} `yaml:"log"`
	Workdir string `yaml:"workdir"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DAM_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("DAM_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.IntervalSeconds = n
		}
	}
	if v := os.Getenv("DAM_POLL_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.MaxAttempts = n
		}
	}
	if v := os.Getenv("DAM_POLL_TARGET"); v != "" {
		cfg.Poll.Target = v
	}
	if v := os.Getenv("DAM_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("DAM_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("DAM_CSV_PATH"); v != "" {
		cfg.Storage.CSVPath = v
	}
	if v := os.Getenv("DAM_LEDGER_FILE"); v != "" {
		cfg.Storage.LedgerFile = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		cfg.API.Port = v
	}
	if v := os.Getenv("DAM_EVENTS_FILE"); v != "" {
		cfg.Log.EventsFile = v
	}
	if v := os.Getenv("DAM_WORKDIR"); v != "" {
		cfg.Workdir = v
	}

	// Defaults
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "https://www.oree.com.ua/index.php/PXS/downloadxlsx"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 30
	}
	if cfg.Poll.IntervalSeconds == 0 {
		cfg.Poll.IntervalSeconds = 60
	}
	if cfg.Poll.MaxAttempts == 0 {
		cfg.Poll.MaxAttempts = 30
	}
	if cfg.Poll.DailyCron == "" {
		// Publisher releases day-ahead results around 12:30 local time.
		cfg.Poll.DailyCron = "0 30 12 * * *"
	}
	if cfg.Poll.Target == "" {
		cfg.Poll.Target = "tomorrow"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Workdir == "" {
		cfg.Workdir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = cfg.Workdir + "/dam_data.db"
	}
	if cfg.Storage.CSVPath == "" {
		cfg.Storage.CSVPath = cfg.Workdir + "/dam_data.csv"
	}
	if cfg.Storage.LedgerFile == "" {
		cfg.Storage.LedgerFile = cfg.Workdir + "/status_log.txt"
	}
	if cfg.API.Port == "" {
		cfg.API.Port = "8080"
	}
	if cfg.Log.EventsFile == "" {
		cfg.Log.EventsFile = cfg.Workdir + "/logs.txt"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be positive")
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll.max_attempts must be positive")
	}
	if c.Poll.Target != "tomorrow" && c.Poll.Target != "today" {
		return fmt.Errorf("poll.target must be \"tomorrow\" or \"today\", got %q", c.Poll.Target)
	}
	if c.Storage.Backend != "sqlite" && c.Storage.Backend != "csv" {
		return fmt.Errorf("storage.backend must be \"sqlite\" or \"csv\", got %q", c.Storage.Backend)
	}
	return nil
}
