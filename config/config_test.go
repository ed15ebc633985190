package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	configContent := `
version: 1

server:
  listen_addr: "0.0.0.0:8765"
  scale_factor: 0.5
  idle_timeout: 10s
  preprocessors: 4

experts:
  - name: "yolo"
    backend_addr: "127.0.0.1:9201"
    queue_capacity: 100
    timeout: 2s

  - name: "blip"
    backend_addr: "127.0.0.1:9202"
    timeout: 10s
    enabled: false

mqtt:
  broker: "127.0.0.1:1883"
  client_id: "moed-1"
  stats_topic: "moe/stats"
  results_topic: "moe/results"
  results_qos: 1
`
	cfg, err := LoadConfig(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:8765" {
		t.Errorf("unexpected listen_addr: %s", cfg.Server.ListenAddr)
	}
	if cfg.Server.ScaleFactor != 0.5 {
		t.Errorf("unexpected scale_factor: %g", cfg.Server.ScaleFactor)
	}
	if cfg.Server.IdleTimeout != 10*time.Second {
		t.Errorf("unexpected idle_timeout: %s", cfg.Server.IdleTimeout)
	}

	if len(cfg.Experts) != 2 {
		t.Fatalf("expected 2 experts, got %d", len(cfg.Experts))
	}
	yolo := cfg.Experts[0]
	if yolo.Name != "yolo" || yolo.BackendAddr != "127.0.0.1:9201" {
		t.Errorf("unexpected yolo config: %+v", yolo)
	}
	if yolo.QueueCapacity != 100 || yolo.Timeout != 2*time.Second {
		t.Errorf("unexpected yolo queue/timeout: %+v", yolo)
	}
	if !yolo.ExpertEnabled() {
		t.Error("yolo should default to enabled")
	}
	if cfg.Experts[1].ExpertEnabled() {
		t.Error("blip is explicitly disabled")
	}

	if cfg.MQTT.Broker != "127.0.0.1:1883" {
		t.Errorf("unexpected mqtt broker: %s", cfg.MQTT.Broker)
	}
	if cfg.MQTT.ResultsQoS != 1 {
		t.Errorf("unexpected results_qos: %d", cfg.MQTT.ResultsQoS)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yml")
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Version: 1,
			Server:  ServerConfig{ListenAddr: "0.0.0.0:8765", ScaleFactor: 0.5},
			Experts: []ExpertConfig{
				{Name: "yolo", BackendAddr: "127.0.0.1:9201", Timeout: 2 * time.Second},
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad version", func(c *Config) { c.Version = 2 }, "unsupported config version"},
		{"missing listen addr", func(c *Config) { c.Server.ListenAddr = "" }, "listen_addr is required"},
		{"zero scale", func(c *Config) { c.Server.ScaleFactor = 0 }, "scale_factor"},
		{"upscale", func(c *Config) { c.Server.ScaleFactor = 1.5 }, "scale_factor"},
		{"no experts", func(c *Config) { c.Experts = nil }, "at least one expert"},
		{"unnamed expert", func(c *Config) { c.Experts[0].Name = "" }, "name is required"},
		{"duplicate expert", func(c *Config) {
			c.Experts = append(c.Experts, c.Experts[0])
		}, "duplicate expert name"},
		{"missing backend", func(c *Config) { c.Experts[0].BackendAddr = "" }, "backend_addr is required"},
		{"zero timeout", func(c *Config) { c.Experts[0].Timeout = 0 }, "timeout must be positive"},
		{"negative queue", func(c *Config) { c.Experts[0].QueueCapacity = -1 }, "queue_capacity"},
		{"mqtt without stats topic", func(c *Config) {
			c.MQTT.Broker = "127.0.0.1:1883"
			c.MQTT.ResultsTopic = "moe/results"
		}, "stats_topic is required"},
		{"mqtt bad qos", func(c *Config) {
			c.MQTT.Broker = "127.0.0.1:1883"
			c.MQTT.StatsTopic = "moe/stats"
			c.MQTT.ResultsTopic = "moe/results"
			c.MQTT.StatsQoS = 3
		}, "qos must be"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
