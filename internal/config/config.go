// ============================================================================
// YAML configuration loading for the collision controller and page store.
// ============================================================================
//
// Package: internal/config
// File: config.go
//
// Configuration items include:
//   - collision: thresholds, stealing attributes, enable flag
//   - pagestore: default page size and directory for demo/inspect commands
//   - metrics: Prometheus HTTP server settings
// ============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ChuLiYu/jobsteal-store/pkg/collision"
	"gopkg.in/yaml.v3"
)

// Config is the complete on-disk configuration structure.
type Config struct {
	Collision struct {
		ActiveJobsThreshold int               `yaml:"active_jobs_threshold"`
		WaitJobsThreshold   int               `yaml:"wait_jobs_threshold"`
		MsgExpireTimeMs     int64             `yaml:"msg_expire_time_ms"`
		MaxStealingAttempts int               `yaml:"max_stealing_attempts"`
		StealingEnabled     bool              `yaml:"stealing_enabled"`
		StealingAttributes  map[string]string `yaml:"stealing_attributes"`
	} `yaml:"collision"`

	PageStore struct {
		Dir      string `yaml:"dir"`
		PageSize uint32 `yaml:"page_size"`
	} `yaml:"pagestore"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// CollisionConfig projects the parsed YAML into a collision.Config, ready
// for collision.NewEngine.
func (c *Config) CollisionConfig() collision.Config {
	return collision.Config{
		ActiveJobsThreshold: c.Collision.ActiveJobsThreshold,
		WaitJobsThreshold:   c.Collision.WaitJobsThreshold,
		MsgExpireTime:       time.Duration(c.Collision.MsgExpireTimeMs) * time.Millisecond,
		MaxStealingAttempts: c.Collision.MaxStealingAttempts,
		StealingEnabled:     c.Collision.StealingEnabled,
		StealingAttributes:  c.Collision.StealingAttributes,
	}
}

// Default returns the configuration used when no config file is supplied,
// matching the values in configs/default.yaml.
func Default() *Config {
	cfg := &Config{}
	cfg.Collision.ActiveJobsThreshold = 16
	cfg.Collision.WaitJobsThreshold = 32
	cfg.Collision.MsgExpireTimeMs = 1000
	cfg.Collision.MaxStealingAttempts = 5
	cfg.Collision.StealingEnabled = true
	cfg.PageStore.Dir = "data"
	cfg.PageStore.PageSize = 4096
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	return cfg
}
