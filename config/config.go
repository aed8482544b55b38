/*
Package config loads the server configuration and builds the logger.

SOURCES:
  An optional YAML file is read first; environment variables override it.
  Without a file only the environment and the defaults are used.

ENVIRONMENT:
  WORKLOAD_ENV           development | production (default: development)
  HTTP_ADDRESS           listen address (default: :8080)
  HTTP_TIMEOUT           read/write timeout (default: 15s)
  HTTP_IDLE_TIMEOUT      idle timeout (default: 60s)
  DB_PATH                SQLite path, ":memory:" allowed (default: workload.db)
  LOG_LEVEL              zap level (default: info)
  LOG_FORMAT             json | console (default: json)
  CALC_CONCURRENCY       parallel calculations per school year (default: 4)
  SNAPSHOT_INTERVAL      snapshot scheduler interval, 0 disables (default: 0)
  CORS_ORIGINS           comma separated allowed origins
*/
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env        string `yaml:"env" env:"WORKLOAD_ENV" env-default:"development"`
	HTTPServer `yaml:"http_server"`
	DBPath     string `yaml:"db_path" env:"DB_PATH" env-default:"workload.db"`
	Log        Log    `yaml:"log"`

	Concurrency      int           `yaml:"calc_concurrency" env:"CALC_CONCURRENCY" env-default:"4"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL" env-default:"0s"`
	CORSOrigins      []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads path if set, otherwise the environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("invalid env %q", cfg.Env)
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// NewLogger builds a zap logger for cfg. Unknown levels fall back to info.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
