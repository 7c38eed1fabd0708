package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	// Data file locations
	Data struct {
		DatabasePath   string `env:"DATABASE_PATH" envDefault:"database/eastlens.db"`
		HistoricalCSV  string `env:"HISTORICAL_CSV" envDefault:"data/historical_sales.csv"`
		CurrentCSV     string `env:"CURRENT_CSV" envDefault:"data/current_listings.csv"`
		ExportDir      string `env:"EXPORT_DIR" envDefault:"exports"`
		ImportOnStart  bool   `env:"IMPORT_ON_START" envDefault:"true"`
	}

	// Analysis configuration
	Analysis struct {
		// Width of the recent-sales window, counted back from the newest
		// sale date in the dataset
		RecentWindowYears int `env:"RECENT_WINDOW_YEARS" envDefault:"2"`

		// Sales older than this many years are dropped at import time
		HistoricalYears int `env:"HISTORICAL_YEARS" envDefault:"5"`

		// Lifetime of the cached datasets and report
		CacheTTLHours int `env:"CACHE_TTL_HOURS" envDefault:"24"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of records to accumulate before persisting
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// Scheduler configuration
	Scheduler struct {
		// Hour of day (0-23) at which the daily refresh runs
		RefreshHour int `env:"REFRESH_HOUR" envDefault:"3"`
	}

	// Telegram notifications
	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
