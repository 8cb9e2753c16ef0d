package config

import (
	"GraphSpectra/internal/heuristics/statistic"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the configuration for the ingestion engine.
type EngineConfig struct {
	SizeOfEventChannel int `yaml:"size_of_event_channel"`
}

// ProbeConfig holds the NATS settings shared by the engine and the replay tool.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// GobWriterConfig configures the gob snapshot writer.
type GobWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// TextWriterConfig configures the text dump writer.
type TextWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines one snapshot writer.
type WriterDef struct {
	Type             string           `yaml:"type"`
	Enabled          bool             `yaml:"enabled"`
	SnapshotInterval string           `yaml:"snapshot_interval"`
	Gob              GobWriterConfig  `yaml:"gob"`
	Text             TextWriterConfig `yaml:"text"`
	ClickHouse       ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig configures the planner-facing HTTP API.
type APIConfig struct {
	ListenAddr      string `yaml:"listen_addr"`
	StorageRootPath string `yaml:"storage_root_path"`
	CacheSize       int    `yaml:"cache_size"`
	// HistoryFromClickHouse serves degree history from the first enabled clickhouse writer's tables.
	HistoryFromClickHouse bool `yaml:"history_from_clickhouse"`
}

// HealthConfig configures the gRPC health endpoint.
type HealthConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// AlerterRule defines a single threshold over the published statistics.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Label     *int    `yaml:"label"`
	RelType   int     `yaml:"rel_type"`
	Direction string  `yaml:"direction"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the configuration for the alerter.
type AlerterConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval string        `yaml:"check_interval"`
	Rules         []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the e-mail notifier settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Heuristics statistic.Parameters `yaml:"heuristics"`
	Engine     EngineConfig         `yaml:"engine"`
	Probe      ProbeConfig          `yaml:"probe"`
	Writers    []WriterDef          `yaml:"writers"`
	API        APIConfig            `yaml:"api"`
	Health     HealthConfig         `yaml:"health"`
	Alerter    AlerterConfig        `yaml:"alerter"`
	SMTP       SMTPConfig           `yaml:"smtp"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults. Heuristics keys
// left out of the document keep their defaults; an explicit
// equality_tolerance of 0 asks for exact comparison.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Heuristics: statistic.DefaultParameters()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Heuristics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid heuristics section: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.SizeOfEventChannel <= 0 {
		cfg.Engine.SizeOfEventChannel = 4096
	}
	if cfg.Probe.NATSURL == "" {
		cfg.Probe.NATSURL = "nats://127.0.0.1:4222"
	}
	if cfg.Probe.Subject == "" {
		cfg.Probe.Subject = "graphspectra.samples"
	}
	if cfg.API.CacheSize <= 0 {
		cfg.API.CacheSize = 16
	}
	if cfg.Alerter.CheckInterval == "" {
		cfg.Alerter.CheckInterval = "1m"
	}
}

// ClickHouse returns the first enabled ClickHouse writer config, if any.
func (c *Config) ClickHouse() (*ClickHouseConfig, bool) {
	for i := range c.Writers {
		if c.Writers[i].Enabled && c.Writers[i].Type == "clickhouse" {
			return &c.Writers[i].ClickHouse, true
		}
	}
	return nil, false
}
