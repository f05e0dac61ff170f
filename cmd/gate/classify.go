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
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-gate/internal/classifier"
	"github.com/sirseerhq/sirseer-gate/internal/github"
	"github.com/sirseerhq/sirseer-gate/internal/metadata"
	"github.com/sirseerhq/sirseer-gate/internal/output"
)

// classifyOptions holds the flags of the classify command.
type classifyOptions struct {
	apiURL  string
	pr      string
	pattern string
	glob    string
}

func newClassifyCommand(a *app) *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a pull request's changed files against a target",
		Long: `Classify a pull request's changed files against a target file.

The target is a regular expression matched at the start of each filename
(--pattern) or a glob such as 'cmd/release/*.json' (--glob). The pull request
is given as an API URL (--api-url) or as <owner>/<repo>#<number> (--pr),
resolved against the configured API endpoint.

Outputs classification (target-not-changed, only-target-changed or
other-files-changed), pages_fetched and files_scanned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClassify(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "API URL of the pull request")
	cmd.Flags().StringVar(&opts.pr, "pr", "", "Pull request as <owner>/<repo>#<number>")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "Regular expression matched at the start of each filename")
	cmd.Flags().StringVar(&opts.glob, "glob", "", "Glob pattern matched against each filename")
	cmd.MarkFlagsMutuallyExclusive("api-url", "pr")
	cmd.MarkFlagsOneRequired("api-url", "pr")
	cmd.MarkFlagsMutuallyExclusive("pattern", "glob")
	cmd.MarkFlagsOneRequired("pattern", "glob")

	return cmd
}

func (a *app) runClassify(ctx context.Context, opts classifyOptions) error {
	var (
		ref github.PullRequestRef
		err error
	)
	if opts.pr != "" {
		ref, err = github.ParsePullRequest(a.cfg.GitHub.APIEndpoint, opts.pr)
	} else {
		ref, err = github.ParsePullRequestURL(opts.apiURL)
	}
	if err != nil {
		return err
	}

	matcher, target, err := newTargetMatcher(opts)
	if err != nil {
		return err
	}

	params := metadata.RunParams{
		PullRequest: ref.String(),
		Backend:     a.cfg.GitHub.Backend,
		PageSize:    a.cfg.Classifier.PageSize,
		Target:      target,
	}

	return a.run(ctx, "classify", params, func(ctx context.Context, out output.OutputWriter, tracker *metadata.Tracker) (string, error) {
		c, err := a.newClassifier(ref, matcher, tracker)
		if err != nil {
			return "", err
		}

		outcome, err := c.Run(ctx)
		if err != nil {
			return "", fmt.Errorf("classifying %s: %w", ref, err)
		}

		a.logger.InfoContext(ctx, "classified pull request",
			slog.String("pull_request", ref.String()),
			slog.String("result", outcome.Result.String()),
		)

		return outcome.Result.String(), setOutputs(out,
			"classification", outcome.Result.String(),
			"pages_fetched", strconv.Itoa(outcome.PagesFetched),
			"files_scanned", strconv.Itoa(outcome.FilesScanned),
		)
	})
}

// newTargetMatcher builds the matcher selected by the flags and returns a
// description of it.
func newTargetMatcher(opts classifyOptions) (classifier.Matcher, string, error) {
	if opts.glob != "" {
		m, err := classifier.NewGlobMatcher(opts.glob)
		return m, "glob:" + opts.glob, err
	}
	m, err := classifier.NewPrefixMatcher(opts.pattern)
	return m, "pattern:" + opts.pattern, err
}
