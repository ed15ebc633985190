package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mentat-Vision/moe/stats"
)

// ExpertConfig holds configuration for a single expert backend
type ExpertConfig struct {
	Name          string        `yaml:"name"`
	BackendAddr   string        `yaml:"backend_addr"`   // gRPC address of the model server
	QueueCapacity int           `yaml:"queue_capacity"` // 0 = default
	Timeout       time.Duration `yaml:"timeout"`        // per-frame inference deadline
	Enabled       *bool         `yaml:"enabled"`        // nil = enabled
}

// ServerConfig holds the listen addresses and frame pipeline knobs
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`   // websocket + HTTP control plane
	ScaleFactor  float64       `yaml:"scale_factor"`  // applied once per incoming frame
	IdleTimeout  time.Duration `yaml:"idle_timeout"`  // camera staleness cutoff, 0 = default
	Preprocessor int           `yaml:"preprocessors"` // frame normalization workers, 0 = default
}

// Config is the root configuration structure
type Config struct {
	Version int              `yaml:"version"`
	Server  ServerConfig     `yaml:"server"`
	Experts []ExpertConfig   `yaml:"experts"`
	MQTT    stats.MQTTConfig `yaml:"mqtt"` // Optional: broker mirroring of stats and results
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen_addr is required")
	}

	if c.Server.ScaleFactor <= 0 || c.Server.ScaleFactor > 1 {
		return fmt.Errorf("server scale_factor must be in (0, 1], got %g", c.Server.ScaleFactor)
	}

	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server idle_timeout cannot be negative")
	}

	if c.Server.Preprocessor < 0 {
		return fmt.Errorf("server preprocessors cannot be negative")
	}

	if len(c.Experts) == 0 {
		return fmt.Errorf("at least one expert is required")
	}

	names := make(map[string]bool)
	for i, e := range c.Experts {
		if e.Name == "" {
			return fmt.Errorf("expert %d: name is required", i)
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate expert name: %s", e.Name)
		}
		names[e.Name] = true

		if e.BackendAddr == "" {
			return fmt.Errorf("expert %s: backend_addr is required", e.Name)
		}
		if e.QueueCapacity < 0 {
			return fmt.Errorf("expert %s: queue_capacity cannot be negative", e.Name)
		}
		if e.Timeout <= 0 {
			return fmt.Errorf("expert %s: timeout must be positive", e.Name)
		}
	}

	if c.MQTT.Broker != "" {
		if c.MQTT.StatsTopic == "" {
			return fmt.Errorf("mqtt stats_topic is required when broker is set")
		}
		if c.MQTT.ResultsTopic == "" {
			return fmt.Errorf("mqtt results_topic is required when broker is set")
		}
		if c.MQTT.StatsQoS > 2 || c.MQTT.ResultsQoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2")
		}
	}

	return nil
}

// ExpertEnabled reports the configured initial toggle state.
func (e *ExpertConfig) ExpertEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}
