// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package config loads heddle configuration from file and environment.
// Priority: config file > HEDDLE_* environment variables > defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teradata-labs/heddle/pkg/heddle"
)

// DefaultConfigName is the config file base name (heddle.yaml).
const DefaultConfigName = "heddle"

// Config is the full application configuration.
type Config struct {
	// Tools holds the orchestrator defaults.
	Tools heddle.Config `mapstructure:"tools"`

	// Logging holds logger construction settings.
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	File   string `mapstructure:"file"`   // optional log file, defaults to stderr
}

// Load reads configuration from path. An empty path searches the current
// directory, the heddle data directory (see DataDir), and /etc/heddle for
// heddle.yaml. A missing file is not an error; defaults plus environment
// take over.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(DataDir())
		v.AddConfigPath("/etc/heddle/")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("HEDDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := heddle.DefaultConfig()
	v.SetDefault("tools.enabled", def.Enabled)
	v.SetDefault("tools.default_tool_timeout", def.DefaultToolTimeout)
	v.SetDefault("tools.max_tool_retries", def.MaxToolRetries)
	v.SetDefault("tools.track_tool_performance", def.TrackToolPerformance)
	v.SetDefault("tools.use_adaptive_tool_selection", def.UseAdaptiveToolSelection)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Tools.DefaultToolTimeout < 0 {
		return fmt.Errorf("tools.default_tool_timeout must not be negative")
	}
	if c.Tools.MaxToolRetries < 0 {
		return fmt.Errorf("tools.max_tool_retries must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Build constructs a zap logger from the logging configuration. Stack
// traces are attached at error level only.
func (l LoggingConfig) Build() (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if l.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level := zap.InfoLevel
	if l.Level != "" {
		if err := level.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
		}
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if l.File != "" {
		zapConfig.OutputPaths = []string{l.File}
		zapConfig.ErrorOutputPaths = []string{l.File}
	}

	return zapConfig.Build(zap.AddStacktrace(zap.ErrorLevel))
}
