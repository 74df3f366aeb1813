package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Translator  TranslatorConfig `json:"translator"`
	Pipeline    PipelineConfig   `json:"pipeline"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type TranslatorConfig struct {
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	SourceLang     string      `json:"source_lang"`
	TargetLang     string      `json:"target_lang"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	CacheSize      int         `json:"cache_size"`
	CacheTTLHours  int         `json:"cache_ttl_hours"`
	Data           interface{} `json:"data"`
}

type PipelineConfig struct {
	Workers          int    `json:"workers"`
	QueueSize        int    `json:"queue_size"`
	ChunkSize        int    `json:"chunk_size"`
	StaleAfterMinute int    `json:"stale_after_minute"`
	SweepSpec        string `json:"sweep_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Translator.Provider == "" {
		return nil, fmt.Errorf("translator.provider is required")
	}
	if cfg.Translator.SourceLang == "" {
		cfg.Translator.SourceLang = "en"
	}
	if cfg.Translator.TargetLang == "" {
		cfg.Translator.TargetLang = "ko"
	}
	if cfg.Translator.TimeoutSeconds <= 0 {
		cfg.Translator.TimeoutSeconds = 120
	}
	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.QueueSize <= 0 {
		cfg.Pipeline.QueueSize = 200
	}
	if cfg.Pipeline.ChunkSize <= 0 {
		cfg.Pipeline.ChunkSize = 30
	}
	if cfg.Pipeline.StaleAfterMinute <= 0 {
		cfg.Pipeline.StaleAfterMinute = 60
	}
	if cfg.Pipeline.SweepSpec == "" {
		cfg.Pipeline.SweepSpec = "*/10 * * * *"
	}
	return &cfg, nil
}
