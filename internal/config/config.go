package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file
const (
	EnvDBPath     = "WATTLENS_DB"
	EnvLogLevel   = "WATTLENS_LOG_LEVEL"
	EnvMQTTBroker = "WATTLENS_MQTT_BROKER"
)

// ErrInvalidTariff is returned by Validate for a malformed tariff table
var ErrInvalidTariff = errors.New("invalid tariff")

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"` // debug, info, warn, error (fallback: info)
	Tariff   TariffConfig   `yaml:"tariff,omitempty"`
	MQTT     MQTTConfig     `yaml:"mqtt,omitempty"`
}

// DatabaseConfig holds the local record store location
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // fallback: data.db
}

// TariffConfig describes the tiered pricing applied to monthly consumption
type TariffConfig struct {
	Currency string          `yaml:"currency,omitempty"`
	Brackets []TariffBracket `yaml:"brackets,omitempty"`
}

// TariffBracket is one pricing tier. MaxKWh of 0 marks the open-ended top tier.
type TariffBracket struct {
	Label  string  `yaml:"label"`
	MaxKWh float64 `yaml:"max_kwh,omitempty"`
	Rate   float64 `yaml:"rate"` // currency units per kWh
}

// MQTTConfig holds broker settings for publishing cluster results
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // fallback: wattlens
	ClientID    string `yaml:"client_id,omitempty"`    // fallback: wattlens
}

// DefaultTariff is the residential tariff the dashboard shipped with
func DefaultTariff() TariffConfig {
	return TariffConfig{
		Currency: "RWF",
		Brackets: []TariffBracket{
			{Label: "0-20", MaxKWh: 20, Rate: 200},
			{Label: "21-50", MaxKWh: 50, Rate: 300},
			{Label: "50+", Rate: 450},
		},
	}
}

// Default returns a config with every fallback written out explicitly
func Default() *Config {
	var empty Config
	return &Config{
		Database: DatabaseConfig{Path: empty.GetDBPath()},
		LogLevel: empty.GetLogLevel(),
		Tariff:   DefaultTariff(),
		MQTT: MQTTConfig{
			TopicPrefix: empty.MQTT.GetTopicPrefix(),
			ClientID:    empty.MQTT.GetClientID(),
		},
	}
}

// Load reads the config file and applies environment overrides
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Missing file means defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvMQTTBroker); ok && v != "" {
		c.MQTT.Broker = v
	}
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Validate checks the tariff table when one is configured
func (c *Config) Validate() error {
	if len(c.Tariff.Brackets) == 0 {
		return nil
	}
	return ValidateTariff(c.Tariff)
}

// ValidateTariff requires strictly increasing bounded tiers followed by one open-ended tier
func ValidateTariff(t TariffConfig) error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidTariff)
	}

	prev := 0.0
	for i, b := range t.Brackets {
		if b.Rate < 0 {
			return fmt.Errorf("%w: bracket %q has negative rate", ErrInvalidTariff, b.Label)
		}
		last := i == len(t.Brackets)-1
		if last {
			if b.MaxKWh != 0 {
				return fmt.Errorf("%w: last bracket %q must be open-ended (max_kwh: 0)", ErrInvalidTariff, b.Label)
			}
			continue
		}
		if b.MaxKWh <= prev {
			return fmt.Errorf("%w: bracket %q max_kwh %v must exceed %v", ErrInvalidTariff, b.Label, b.MaxKWh, prev)
		}
		prev = b.MaxKWh
	}

	return nil
}

// GetDBPath returns the database file path with a default of ./data.db
func (c *Config) GetDBPath() string {
	if c.Database.Path == "" {
		return "data.db"
	}
	return c.Database.Path
}

// GetLogLevel returns the configured log level, or info if not set
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetTariff returns the configured tariff, falling back to DefaultTariff
func (c *Config) GetTariff() TariffConfig {
	if len(c.Tariff.Brackets) == 0 {
		t := DefaultTariff()
		if c.Tariff.Currency != "" {
			t.Currency = c.Tariff.Currency
		}
		return t
	}
	t := c.Tariff
	if t.Currency == "" {
		t.Currency = DefaultTariff().Currency
	}
	return t
}

// GetTopicPrefix returns the MQTT topic prefix with a default of "wattlens"
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "wattlens"
	}
	return m.TopicPrefix
}

// GetClientID returns the MQTT client id with a default of "wattlens"
func (m MQTTConfig) GetClientID() string {
	if m.ClientID == "" {
		return "wattlens"
	}
	return m.ClientID
}
