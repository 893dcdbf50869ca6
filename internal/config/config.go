// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the stagehand configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tombee/stagehand/pkg/errors"
)

// Config represents the complete stagehand configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`

	// Format is the output format (json, text).
	Format string `yaml:"format,omitempty"`
}

// EvaluationConfig configures expression evaluation defaults.
type EvaluationConfig struct {
	// AllowUnknownKeys tolerates placeholders referencing undefined context
	// fields instead of recording them as failures.
	AllowUnknownKeys bool `yaml:"allow_unknown_keys"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Evaluation: EvaluationConfig{
			AllowUnknownKeys: true,
		},
	}
}

// Load reads the configuration from path. An empty path or a missing file
// yields the defaults; a malformed or invalid file yields a ConfigError.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, &errors.ConfigError{Reason: fmt.Sprintf("cannot read %s", path), Cause: err}
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, &errors.ConfigError{Reason: fmt.Sprintf("cannot parse %s", path), Cause: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &errors.ConfigError{Key: "log.level", Reason: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return &errors.ConfigError{Key: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}
