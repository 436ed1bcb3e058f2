// Package config loads ethtransfer settings from YAML files and the environment
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ETHTRANSFER_LEDGER_ENDPOINT
const EnvPrefix = "ETHTRANSFER"

// Config is the full application configuration
type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Events  EventsConfig  `mapstructure:"events"`
}

// LedgerConfig points at the ledger node
type LedgerConfig struct {
	Endpoint       string        `mapstructure:"endpoint" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EventsConfig controls publication of transfer events to Kafka
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers" validate:"required_if=Enabled true,dive,hostname_port"`
	Topic        string        `mapstructure:"topic" validate:"required_if=Enabled true"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var validate = validator.New()

// DefaultPaths are searched when no config file is given
var DefaultPaths = []string{
	"./config.yaml",
	"./configs/config.yaml",
}

// Load reads configuration from the given files, or from the first existing
// file among DefaultPaths when none are given, then applies environment
// overrides. Missing default files are skipped and defaults apply; a missing
// file named by the caller is an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := len(paths) > 0
	if !explicit {
		paths = DefaultPaths
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		break
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.endpoint", "http://127.0.0.1:7545")
	v.SetDefault("ledger.request_timeout", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "ledger.transfers")
	v.SetDefault("events.write_timeout", 5*time.Second)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
