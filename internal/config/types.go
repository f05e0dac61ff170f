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

// Package config types define the configuration structures used throughout
// sirseer-gate. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Backend names accepted by GitHubConfig.Backend.
const (
	BackendREST    = "rest"
	BackendGraphQL = "graphql"
)

// Config represents the complete configuration for sirseer-gate.
type Config struct {
	GitHub     GitHubConfig     `yaml:"github"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Release    ReleaseConfig    `yaml:"release"`
	Version    VersionConfig    `yaml:"version"`
	Log        LogConfig        `yaml:"log"`
}

// GitHubConfig contains GitHub-specific settings including API endpoints
// and authentication configuration. The REST endpoint is only used when a
// pull request is given without a full API URL; the GraphQL endpoint is used
// by the graphql backend.
type GitHubConfig struct {
	APIEndpoint     string `yaml:"api_endpoint"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
	Backend         string `yaml:"backend"`
	Cache           bool   `yaml:"cache"`
}

// ClassifierConfig controls how changed-file pages are requested.
type ClassifierConfig struct {
	PageSize int `yaml:"page_size"`

	// FetchTimeout bounds each page request. Zero means no timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// ReleaseConfig locates the release metadata file and the pattern that
// identifies it in a pull request.
type ReleaseConfig struct {
	InfoFile      string `yaml:"info_file"`
	TargetPattern string `yaml:"target_pattern"`
}

// VersionConfig locates the Go source file that declares the version.
type VersionConfig struct {
	File   string `yaml:"file"`
	Marker string `yaml:"marker"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with defaults for public GitHub.com and
// the repository layout the release workflow expects.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint:     "https://api.github.com",
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
			Backend:         BackendREST,
			Cache:           true,
		},
		Classifier: ClassifierConfig{
			PageSize: 100,
		},
		Release: ReleaseConfig{
			InfoFile:      "cmd/release/release_info.json",
			TargetPattern: `cmd/release/release_info\.json`,
		},
		Version: VersionConfig{
			File:   "cmd/version.go",
			Marker: "var Version =",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
