// File: facade/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration and its YAML form.

package facade

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds parameters fixed for the lifetime of a Runtime, except
// BufferSize which Runtime.Reload may change.
type Config struct {
	BufferSize    int           `yaml:"buffer_size"`    // Ring capacity per transfer, in bytes
	MaxEvents     int           `yaml:"max_events"`     // Readiness events per poll
	PollTimeout   time.Duration `yaml:"poll_timeout"`   // Upper bound of one blocking poll
	LogLevel      string        `yaml:"log_level"`      // debug, info, warn or error
	LogFormat     string        `yaml:"log_format"`     // text or json
	EnableMetrics bool          `yaml:"enable_metrics"` // Record OTel metrics on the global provider
	EnableTracing bool          `yaml:"enable_tracing"` // Emit one span per transfer on the global provider
	EnableDebug   bool          `yaml:"enable_debug"`   // Register debug probes
	LoopCPU       int           `yaml:"loop_cpu"`       // CPU the loop thread is pinned to during Run, -1 for none
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:    64 * 1024,
		MaxEvents:     128,
		PollTimeout:   100 * time.Millisecond,
		LogLevel:      "info",
		LogFormat:     "text",
		EnableMetrics: false,
		EnableTracing: false,
		EnableDebug:   true,
		LoopCPU:       -1,
	}
}

// Validate rejects sizes and timeouts that cannot drive a reactor.
func (c *Config) Validate() error {
	var errs []error
	if c.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize))
	}
	if c.MaxEvents < 1 {
		errs = append(errs, fmt.Errorf("max_events must be positive, got %d", c.MaxEvents))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, fmt.Errorf("poll_timeout must be positive, got %s", c.PollTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("facade: invalid config: %w", err)
	}
	return nil
}

// ParseConfig decodes YAML over DefaultConfig, so omitted keys keep their
// defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("facade: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("facade: read config: %w", err)
	}
	return ParseConfig(data)
}

// snapshot is the ConfigStore form of c.
func (c *Config) snapshot() map[string]any {
	return map[string]any{
		"buffer_size":    c.BufferSize,
		"max_events":     c.MaxEvents,
		"poll_timeout":   c.PollTimeout.String(),
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"enable_metrics": c.EnableMetrics,
		"enable_tracing": c.EnableTracing,
		"loop_cpu":       c.LoopCPU,
	}
}
