// Package config loads the prioq application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors prioq.yaml
type Config struct {
	LogLevel        string          `yaml:"log_level"`        // debug | info | warn | error
	Output          string          `yaml:"output"`           // table | csv | json
	DBPath          string          `yaml:"db_path"`          // run history database
	ListenAddr      string          `yaml:"listen_addr"`      // address for `prioq serve`
	MetricsTextfile string          `yaml:"metrics_textfile"` // empty = don't export
	OtelEndpoint    string          `yaml:"otel_endpoint"`    // OTLP HTTP, empty = no tracing
	Generator       GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig bounds the random workloads produced by `prioq gen`.
type GeneratorConfig struct {
	Count        int     `yaml:"count"`
	Seed         int64   `yaml:"seed"`
	MinPriority  int     `yaml:"min_priority"`
	MaxPriority  int     `yaml:"max_priority"`
	MinExecution float64 `yaml:"min_execution"`
	MaxExecution float64 `yaml:"max_execution"`
	MinDeadline  float64 `yaml:"min_deadline"`
	MaxDeadline  float64 `yaml:"max_deadline"`
}

// Default returns the values used when no config file is present.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Output:     "table",
		DBPath:     "prioq.db",
		ListenAddr: "127.0.0.1:8080",
		Generator: GeneratorConfig{
			Count:        50,
			Seed:         42,
			MinPriority:  1,
			MaxPriority:  100,
			MinExecution: 0.5,
			MaxExecution: 10,
			MinDeadline:  10,
			MaxDeadline:  200,
		},
	}
}

// Load reads YAML and overrides defaults; empty path or a missing file
// means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// clamp puts nonsensical values back into a usable range.
func (c *Config) clamp() {
	d := Default()

	switch c.Output {
	case "table", "csv", "json":
	default:
		c.Output = d.Output
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}

	g := &c.Generator
	if g.Count <= 0 {
		g.Count = d.Generator.Count
	}
	if g.MaxPriority < g.MinPriority {
		g.MinPriority, g.MaxPriority = g.MaxPriority, g.MinPriority
	}
	if g.MinExecution < 0 {
		g.MinExecution = 0
	}
	if g.MaxExecution < g.MinExecution {
		g.MaxExecution = g.MinExecution
	}
	if g.MaxDeadline < g.MinDeadline {
		g.MaxDeadline = g.MinDeadline
	}
}

// DefaultYAML is written by `prioq init`.
const DefaultYAML = `# prioq configuration
# Priority: CLI flag > this file > default.

log_level: "info"          # debug | info | warn | error
output:    "table"         # table | csv | json
db_path:   "prioq.db"      # run history (prioq run --save, prioq history)
listen_addr: "127.0.0.1:8080"
# metrics_textfile: "/var/lib/node_exporter/prioq.prom"
# otel_endpoint: "localhost:4318"  # uncomment to export OpenTelemetry traces

# random workloads for 'prioq gen'
generator:
  count: 50
  seed: 42
  min_priority: 1
  max_priority: 100
  min_execution: 0.5
  max_execution: 10
  min_deadline: 10
  max_deadline: 200
`
