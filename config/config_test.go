package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `search:
  time_limit_seconds: 30
  workers: 2
  strategy: "CST-FD"
output:
  dir: "results"
history:
  enabled: true
  backend: "sqlite"
  path: "runs.db"
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9100"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "hangar"
sentry:
  dsn: "https://key@example.invalid/1"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"time_limit", cfg.Search.Engine().TimeLimit, 30 * time.Second},
		{"second_time_limit", cfg.Search.Engine().SecondTimeLimit, 60 * time.Second},
		{"workers", cfg.Search.Workers, 2},
		{"strategy", cfg.Search.Strategy, "CST-FD"},
		{"output", cfg.Output.Dir, "results"},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"history.path", cfg.History.Path, "runs.db"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "hangar"},
		{"sentry", cfg.Sentry.DSN, "https://key@example.invalid/1"},
		{"report.title", cfg.Report.Title, "Disassembly schedule"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"search":{"workers":2}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ADSP_SEARCH__WORKERS", "6")
	t.Setenv("ADSP_OUTPUT__DIR", "env-out")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Search.Workers != 6 {
		t.Errorf("workers = %d, want 6", cfg.Search.Workers)
	}
	if cfg.Output.Dir != "env-out" {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Search.Strategy != "LEX-AUTO" || cfg.Search.Workers != 4 || cfg.Output.Dir != "out" {
		t.Errorf("unexpected defaults: %+v", cfg.Search)
	}
	if cfg.History.Backend != "jsonl" {
		t.Errorf("history backend = %q", cfg.History.Backend)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"bad.toml":     "",
		"history.yaml": "history:\n  backend: \"csv\"\n",
		"search.yaml":  "search:\n  fail_limit: -1\n",
		"mqtt.yaml":    "mqtt:\n  enabled: true\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
