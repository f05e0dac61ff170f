// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for sirseer-gate with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// Flags are applied by the command layer; this package handles the rest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-gate.yaml (current directory)
//   - .sirseer-gate.yml (current directory)
//   - ~/.sirseer/gate.yaml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(expandPath(configPath), cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-gate.yaml",
			".sirseer-gate.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "gate.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Release.InfoFile = expandPath(cfg.Release.InfoFile)
	cfg.Version.File = expandPath(cfg.Version.File)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed numeric values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}
	if backend := os.Getenv("SIRSEER_GATE_BACKEND"); backend != "" {
		cfg.GitHub.Backend = strings.ToLower(strings.TrimSpace(backend))
	}
	if cache := os.Getenv("SIRSEER_GATE_CACHE"); cache != "" {
		cfg.GitHub.Cache = parseBool(cache)
	}

	if pageSize := os.Getenv("SIRSEER_GATE_PAGE_SIZE"); pageSize != "" {
		size, err := parsePositiveInt(pageSize)
		if err != nil {
			return fmt.Errorf("SIRSEER_GATE_PAGE_SIZE: %w", err)
		}
		cfg.Classifier.PageSize = size
	}
	if timeout := os.Getenv("SIRSEER_GATE_FETCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("SIRSEER_GATE_FETCH_TIMEOUT: %w", err)
		}
		cfg.Classifier.FetchTimeout = d
	}

	if level := os.Getenv("SIRSEER_GATE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("SIRSEER_GATE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Token returns the GitHub token from the environment variable named by
// TokenEnv, or the empty string.
func (c *Config) Token() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
}

// Validate checks if the configuration contains valid values. It should be
// called after flags have been applied so that every source is checked.
func (c *Config) Validate() error {
	if c.Classifier.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.Classifier.PageSize)
	}
	if c.Classifier.PageSize > 100 {
		return fmt.Errorf("page size %d exceeds GitHub API limit of 100", c.Classifier.PageSize)
	}
	if c.Classifier.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative, got: %s", c.Classifier.FetchTimeout)
	}
	switch c.GitHub.Backend {
	case BackendREST:
	case BackendGraphQL:
		if c.GitHub.GraphQLEndpoint == "" {
			return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.GitHub.Backend, BackendREST, BackendGraphQL)
	}
	if c.Release.TargetPattern == "" {
		return fmt.Errorf("release target pattern cannot be empty")
	}
	if c.Version.Marker == "" {
		return fmt.Errorf("version marker cannot be empty")
	}
	return nil
}
