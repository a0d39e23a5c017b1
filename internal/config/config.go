// Package config loads the server configuration from YAML.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Telegram struct {
		Enabled      bool    `yaml:"enabled"`
		BotToken     string  `yaml:"bot_token"`
		StaffChatIDs []int64 `yaml:"staff_chat_ids"`
	} `yaml:"telegram"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		SheetName       string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	AMQP struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		StoragePath   string `yaml:"storage_path"`
		IntervalHours int    `yaml:"interval_hours"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/hotel.db"
	}
	if cfg.RateLimit.RPS <= 0 {
		cfg.RateLimit.RPS = 20
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 40
	}
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = "Payments"
	}
	if cfg.Backup.StoragePath == "" {
		cfg.Backup.StoragePath = "data/backups"
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	if cfg.Backup.RetentionDays <= 0 {
		cfg.Backup.RetentionDays = 14
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}
