// Package config loads the cfdb command configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/chunger/cfdb"
)

// Config is the root of the YAML configuration file.
type Config struct {
	DB     DB           `yaml:"db"`
	Logger LoggerConfig `yaml:"logger"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// DB describes where the database lives and how to open it. It implements
// cfdb.DbInfo.
type DB struct {
	Dir      string        `yaml:"path"`
	Engine   string        `yaml:"engine"`
	Timeout  time.Duration `yaml:"timeout"`
	NoSync   bool          `yaml:"no_sync"`
	MmapSize int           `yaml:"mmap_size"`
	Verbose  bool          `yaml:"verbose"`

	logger *slog.Logger
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// Default returns a baseline config: a bolt database under ./data.
func Default() Config {
	return Config{
		DB: DB{
			Dir:     "./data",
			Engine:  string(cfdb.EngineBolt),
			Timeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level: "INFO",
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using default config", "path", path)
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfdb.Engine(cfg.DB.Engine) {
	case "", cfdb.EngineBolt, cfdb.EngineBadger, cfdb.EngineMemory:
	default:
		return fmt.Errorf("db.engine: unknown engine %q", cfg.DB.Engine)
	}
	if _, err := parseLevel(cfg.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}
	return nil
}

func (d DB) Path() string { return d.Dir }

func (d DB) Options() cfdb.Options {
	return cfdb.Options{
		Engine:   cfdb.Engine(d.Engine),
		Logger:   d.logger,
		Verbose:  d.Verbose,
		Timeout:  d.Timeout,
		NoSync:   d.NoSync,
		MmapSize: d.MmapSize,
	}
}

// WithLogger returns a copy of d whose databases log to logger.
func (d DB) WithLogger(logger *slog.Logger) DB {
	d.logger = logger
	return d
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(strings.ToUpper(s)))
	return level, err
}

// NewLogger builds a text or JSON slog logger writing to w.
func (lc LoggerConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(lc.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
