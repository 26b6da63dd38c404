package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	EncryptionKey string           `json:"encryption_key"`
	MigrationsDir string           `json:"migrations_dir"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	Embedding     EmbeddingConfig  `json:"embedding"`
	Search        SearchConfig     `json:"search"`
	Gaps          GapConfig        `json:"gaps"`
	Jobs          JobConfig        `json:"jobs"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// EmbeddingConfig selects the embedding provider. Data is passed through to the
// provider factory untouched, same shape as the provider's own config struct.
// Fallback, when set, is tried whenever the primary provider fails; it must
// produce vectors of the same dimension.
type EmbeddingConfig struct {
	Provider  string           `json:"provider"`
	Model     string           `json:"model"`
	Dimension int              `json:"dimension"`
	Data      interface{}      `json:"data"`
	Fallback  *EmbeddingConfig `json:"fallback"`
}

type SearchConfig struct {
	DefaultLimit     int `json:"default_limit"`
	MaxContextItems  int `json:"max_context_items"`
	MaxItemChars     int `json:"max_item_chars"`
	EmbedCacheSize   int `json:"embed_cache_size"`
	EmbedCacheTTLMin int `json:"embed_cache_ttl_min"`
}

type GapConfig struct {
	OrphanLookbackDays int `json:"orphan_lookback_days"`
	StaleAfterDays     int `json:"stale_after_days"`
}

type JobConfig struct {
	GapScanSpec string `json:"gap_scan_spec"`
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
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database host/user/db_name are required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Embedding.Provider == "" {
		return nil, fmt.Errorf("embedding.provider is required")
	}
	if cfg.Embedding.Model == "" {
		return nil, fmt.Errorf("embedding.model is required")
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if fb := cfg.Embedding.Fallback; fb != nil && (fb.Provider == "" || fb.Model == "") {
		return nil, fmt.Errorf("embedding.fallback needs provider and model")
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxContextItems == 0 {
		cfg.Search.MaxContextItems = 5
	}
	if cfg.Search.MaxItemChars == 0 {
		cfg.Search.MaxItemChars = 1500
	}
	if cfg.Search.EmbedCacheSize == 0 {
		cfg.Search.EmbedCacheSize = 10000
	}
	if cfg.Search.EmbedCacheTTLMin == 0 {
		cfg.Search.EmbedCacheTTLMin = 120
	}
	if cfg.Gaps.OrphanLookbackDays == 0 {
		cfg.Gaps.OrphanLookbackDays = 90
	}
	if cfg.Gaps.StaleAfterDays == 0 {
		cfg.Gaps.StaleAfterDays = 30
	}
	if cfg.Jobs.GapScanSpec == "" {
		cfg.Jobs.GapScanSpec = "0 3 * * *"
	}
	return &cfg, nil
}
