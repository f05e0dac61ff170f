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
	"regexp"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-gate/internal/classifier"
	"github.com/sirseerhq/sirseer-gate/internal/github"
	"github.com/sirseerhq/sirseer-gate/internal/metadata"
	"github.com/sirseerhq/sirseer-gate/internal/output"
	versionfile "github.com/sirseerhq/sirseer-gate/internal/version"
)

func newCheckVersionCommand(a *app) *cobra.Command {
	var (
		apiURL      string
		baseVersion string
	)

	cmd := &cobra.Command{
		Use:   "check-version",
		Short: "Check whether a pull request changes the Go version file",
		Long: `Check whether a pull request changes the version declared in Go source.

The version is read from the version file when no --api-url is given or when
the pull request changes that file. Without --version it is output as
version_in_PR. With --version, "version_in_PR=true" is output when the
declared version is newer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheckVersion(cmd.Context(), apiURL, baseVersion)
		},
	}

	cmd.Flags().StringVarP(&apiURL, "api-url", "u", "", "API URL of the pull request")
	cmd.Flags().StringVarP(&baseVersion, "version", "v", "", "Version to compare with the declared version")

	return cmd
}

func (a *app) runCheckVersion(ctx context.Context, apiURL, baseVersion string) error {
	params := metadata.RunParams{
		PullRequest: apiURL,
		Backend:     a.cfg.GitHub.Backend,
		PageSize:    a.cfg.Classifier.PageSize,
		Target:      a.cfg.Version.File,
		Version:     baseVersion,
	}

	return a.run(ctx, "check-version", params, func(ctx context.Context, out output.OutputWriter, tracker *metadata.Tracker) (string, error) {
		if apiURL != "" {
			changed, err := a.versionFileChanged(ctx, apiURL, tracker)
			if err != nil {
				return "", err
			}
			if !changed {
				a.logger.InfoContext(ctx, "version file not changed", slog.String("file", a.cfg.Version.File))
				return "unchanged", nil
			}
		}

		declared, ok, err := versionfile.ExtractFile(a.cfg.Version.File, a.cfg.Version.Marker)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("no %q line in %s", a.cfg.Version.Marker, a.cfg.Version.File)
		}

		if baseVersion == "" {
			return declared, out.Set("version_in_PR", declared)
		}

		newer, err := versionfile.IsNewer(declared, baseVersion)
		if err != nil {
			return "", err
		}
		a.logger.InfoContext(ctx, "compared versions",
			slog.String("declared", declared),
			slog.String("base", baseVersion),
			slog.Bool("newer", newer),
		)
		if !newer {
			return decisionNotNewer, nil
		}
		return decisionNewer, out.Set("version_in_PR", "true")
	})
}

// versionFileChanged reports whether the pull request changes the version file.
func (a *app) versionFileChanged(ctx context.Context, apiURL string, tracker *metadata.Tracker) (bool, error) {
	ref, err := github.ParsePullRequestURL(apiURL)
	if err != nil {
		return false, err
	}

	matcher, err := classifier.NewPrefixMatcher(regexp.QuoteMeta(a.cfg.Version.File))
	if err != nil {
		return false, err
	}

	c, err := a.newClassifier(ref, matcher, tracker)
	if err != nil {
		return false, err
	}

	changed, err := c.Contains(ctx)
	if err != nil {
		return false, fmt.Errorf("searching %s: %w", ref, err)
	}
	return changed, nil
}
