// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings. Zero values are never used; Load fills in
// defaults for unset variables.
type Config struct {
	UploadDir         string
	MaxFileSize       int64
	DefaultMaxSize    int
	MaxProcessingSize int
	RetentionDays     int
	ProcessTimeout    time.Duration
	ClusterSeed       uint64
	Debug             bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		UploadDir:         "uploads",
		MaxFileSize:       10 * 1024 * 1024,
		DefaultMaxSize:    100,
		MaxProcessingSize: 500,
		RetentionDays:     7,
		ProcessTimeout:    60 * time.Second,
		ClusterSeed:       0,
	}
}

// Load reads PIXLATOR_* variables on top of Default. A malformed value is an
// error rather than a silent fallback.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("PIXLATOR_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := getenv("PIXLATOR_MAX_FILE_SIZE"); v != "" {
		if cfg.MaxFileSize, err = strconv.ParseInt(v, 10, 64); err != nil || cfg.MaxFileSize <= 0 {
			return cfg, fmt.Errorf("invalid PIXLATOR_MAX_FILE_SIZE %q", v)
		}
	}
	if v := getenv("PIXLATOR_DEFAULT_MAX_SIZE"); v != "" {
		if cfg.DefaultMaxSize, err = positiveInt(v); err != nil {
			return cfg, fmt.Errorf("invalid PIXLATOR_DEFAULT_MAX_SIZE: %w", err)
		}
	}
	if v := getenv("PIXLATOR_MAX_PROCESSING_SIZE"); v != "" {
		if cfg.MaxProcessingSize, err = positiveInt(v); err != nil {
			return cfg, fmt.Errorf("invalid PIXLATOR_MAX_PROCESSING_SIZE: %w", err)
		}
	}
	if v := getenv("PIXLATOR_RETENTION_DAYS"); v != "" {
		if cfg.RetentionDays, err = strconv.Atoi(v); err != nil || cfg.RetentionDays < 0 {
			return cfg, fmt.Errorf("invalid PIXLATOR_RETENTION_DAYS %q", v)
		}
	}
	if v := getenv("PIXLATOR_PROCESS_TIMEOUT"); v != "" {
		if cfg.ProcessTimeout, err = time.ParseDuration(v); err != nil || cfg.ProcessTimeout <= 0 {
			return cfg, fmt.Errorf("invalid PIXLATOR_PROCESS_TIMEOUT %q", v)
		}
	}
	if v := getenv("PIXLATOR_CLUSTER_SEED"); v != "" {
		if cfg.ClusterSeed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("invalid PIXLATOR_CLUSTER_SEED %q", v)
		}
	}
	cfg.Debug = getenv("PIXLATOR_LOG_LEVEL") == "debug"

	if cfg.DefaultMaxSize > cfg.MaxProcessingSize {
		return cfg, fmt.Errorf("default max size %d exceeds max processing size %d", cfg.DefaultMaxSize, cfg.MaxProcessingSize)
	}
	return cfg, nil
}

// Retention returns the retention window as a duration. Zero disables cleanup.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
