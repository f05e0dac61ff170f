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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/sirseer-gate/internal/classifier"
	"github.com/sirseerhq/sirseer-gate/internal/config"
	"github.com/sirseerhq/sirseer-gate/internal/github"
	"github.com/sirseerhq/sirseer-gate/internal/logging"
	"github.com/sirseerhq/sirseer-gate/internal/metadata"
	"github.com/sirseerhq/sirseer-gate/internal/output"
)

// fetcherFactory builds the page fetcher for a pull request.
type fetcherFactory func(cfg *config.Config, ref github.PullRequestRef, opts github.Options) (classifier.PageFetcher, error)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	token        string
	backend      string
	pageSize     int
	fetchTimeout time.Duration
	noCache      bool
	logLevel     string
	logFormat    string
	metadataFile string
}

// app carries the state of one CLI invocation. Commands receive it
// explicitly; nothing is kept in package variables.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	outputFile string
	newFetcher fetcherFactory

	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:     stdout,
		stderr:     stderr,
		outputFile: os.Getenv(output.EnvFile),
		newFetcher: newGitHubFetcher,
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sirseer-gate",
		Short: "Decide whether a pull request is a release from its changed files",
		Long: `SirSeer Gate inspects the files changed by a pull request through the
GitHub API and publishes release decisions as CI step outputs.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	bindGlobalFlags(rootCmd.PersistentFlags(), &a.flags)

	rootCmd.AddCommand(
		newCheckReleaseCommand(a),
		newCheckVersionCommand(a),
		newClassifyCommand(a),
	)
	return rootCmd
}

func bindGlobalFlags(fs *pflag.FlagSet, f *globalFlags) {
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file (default: .sirseer-gate.yaml)")
	fs.StringVar(&f.token, "token", "", "GitHub token (overrides the token_env variable, GITHUB_TOKEN by default)")
	fs.StringVar(&f.backend, "backend", config.BackendREST, "GitHub API used to list files: rest or graphql")
	fs.IntVar(&f.pageSize, "page-size", classifier.DefaultPageSize, "Files requested per page (1-100)")
	fs.DurationVar(&f.fetchTimeout, "fetch-timeout", 0, "Timeout for each page request, e.g. 30s (0 means none)")
	fs.BoolVar(&f.noCache, "no-cache", false, "Disable ETag caching of REST responses")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	fs.StringVar(&f.metadataFile, "metadata-file", "", "Write a JSON record of the run to this file")
}

// setup loads the configuration, applies flags that were set explicitly and
// installs the logger on the command context.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	if fs.Changed("backend") {
		cfg.GitHub.Backend = strings.ToLower(a.flags.backend)
	}
	if fs.Changed("page-size") {
		cfg.Classifier.PageSize = a.flags.pageSize
	}
	if fs.Changed("fetch-timeout") {
		cfg.Classifier.FetchTimeout = a.flags.fetchTimeout
	}
	if fs.Changed("no-cache") {
		cfg.GitHub.Cache = !a.flags.noCache
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = a.flags.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	cmd.SetContext(logging.WithContext(cmd.Context(), logger))
	return nil
}

// token returns the GitHub token from the flag or the configured environment variable.
func (a *app) token() string {
	if a.flags.token != "" {
		return a.flags.token
	}
	return a.cfg.Token()
}

// run wraps a command body with the step output writer and run metadata.
// body returns the decision recorded in the metadata.
func (a *app) run(ctx context.Context, command string, params metadata.RunParams,
	body func(ctx context.Context, out output.OutputWriter, tracker *metadata.Tracker) (string, error),
) (err error) {
	writer, err := output.NewFileWriter(a.stdout, a.outputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tracker := metadata.New()
	a.logger.Debug("starting run", slog.String("command", command), slog.String("run_id", tracker.RunID()))

	decision, err := body(ctx, writer, tracker)

	if a.flags.metadataFile != "" {
		meta := tracker.GenerateMetadata(version, command, params, decision, err)
		if serr := metadata.SaveMetadata(meta, a.flags.metadataFile); serr != nil {
			a.logger.Warn("failed to save run metadata", slog.String("path", a.flags.metadataFile), slog.Any("error", serr))
		}
	}

	return err
}

// newClassifier builds a classifier for the pull request with the configured
// backend, page size and timeout.
func (a *app) newClassifier(ref github.PullRequestRef, matcher classifier.Matcher, tracker *metadata.Tracker) (*classifier.Classifier, error) {
	opts := github.Options{
		Token:        a.token(),
		UserAgent:    "sirseer-gate/" + version,
		DisableCache: !a.cfg.GitHub.Cache,
	}

	fetcher, err := a.newFetcher(a.cfg, ref, opts)
	if err != nil {
		return nil, err
	}

	return classifier.New(fetcher, matcher,
		classifier.WithPageSize(a.cfg.Classifier.PageSize),
		classifier.WithFetchTimeout(a.cfg.Classifier.FetchTimeout),
		classifier.WithObserver(tracker),
	), nil
}

// newGitHubFetcher returns the REST or GraphQL client selected by the config.
func newGitHubFetcher(cfg *config.Config, ref github.PullRequestRef, opts github.Options) (classifier.PageFetcher, error) {
	switch cfg.GitHub.Backend {
	case config.BackendGraphQL:
		return github.NewGraphQLClient(cfg.GitHub.GraphQLEndpoint, ref, opts), nil
	default:
		return github.NewRESTClient(ref, opts)
	}
}
