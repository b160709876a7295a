// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL       string        `yaml:"url"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`        // code status entry TTL
	OpTimeout time.Duration `yaml:"op_timeout"` // per-operation bound
}

// CodesConfig tunes the generation loop. Allowed code lengths are a domain
// constant ({7, 8}), not configuration.
type CodesConfig struct {
	MaxPerRequest          int `yaml:"max_per_request"`
	BatchSize              int `yaml:"batch_size"`
	ExistenceChunk         int `yaml:"existence_chunk"`
	MaxConsecutiveFailures int `yaml:"max_consecutive_failures"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Codes    CodesConfig    `yaml:"codes"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 24 * time.Hour
	}
	if cfg.Redis.OpTimeout <= 0 {
		cfg.Redis.OpTimeout = 250 * time.Millisecond
	}
	if cfg.Codes.MaxPerRequest <= 0 {
		cfg.Codes.MaxPerRequest = 2000
	}
	if cfg.Codes.BatchSize <= 0 {
		cfg.Codes.BatchSize = 500
	}
	if cfg.Codes.ExistenceChunk <= 0 {
		cfg.Codes.ExistenceChunk = 200
	}
	if cfg.Codes.MaxConsecutiveFailures <= 0 {
		cfg.Codes.MaxConsecutiveFailures = 3
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
