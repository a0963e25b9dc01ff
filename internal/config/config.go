package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted in storage.driver.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"GEOPLAY_PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"GEOPLAY_REDIS_ADDR"`
		Password string `yaml:"password" env:"GEOPLAY_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"GEOPLAY_REDIS_DB"`
		TTL      string `yaml:"ttl" env:"GEOPLAY_REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"GEOPLAY_POSTGRES_URL"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path" env:"GEOPLAY_SQLITE_PATH"`
	} `yaml:"sqlite"`
	Storage struct {
		// Driver selects where the leaderboard is persisted.
		Driver string `yaml:"driver" env:"GEOPLAY_STORAGE_DRIVER"`
	} `yaml:"storage"`
	Pool struct {
		TTL string `yaml:"ttl" env:"GEOPLAY_POOL_TTL"`
	} `yaml:"pool"`
	Game struct {
		TickInterval           string `yaml:"tick_interval" env:"GEOPLAY_TICK_INTERVAL"`
		CorrectFeedbackDelay   string `yaml:"correct_feedback_delay" env:"GEOPLAY_CORRECT_FEEDBACK_DELAY"`
		WrongFeedbackDelay     string `yaml:"wrong_feedback_delay" env:"GEOPLAY_WRONG_FEEDBACK_DELAY"`
		AllowMidgameDifficulty bool   `yaml:"allow_midgame_difficulty" env:"GEOPLAY_ALLOW_MIDGAME_DIFFICULTY"`
	} `yaml:"game"`
	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Storage.Driver = DriverMemory
	cfg.SQLite.Path = "geoplay.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads YAML config from path, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the selected storage driver has what it needs.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "", DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("storage driver redis requires redis.addr")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("storage driver postgres requires postgres.url")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("storage driver sqlite requires sqlite.path")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
