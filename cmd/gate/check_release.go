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

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-gate/internal/classifier"
	"github.com/sirseerhq/sirseer-gate/internal/github"
	"github.com/sirseerhq/sirseer-gate/internal/metadata"
	"github.com/sirseerhq/sirseer-gate/internal/output"
	"github.com/sirseerhq/sirseer-gate/internal/release"
	versionfile "github.com/sirseerhq/sirseer-gate/internal/version"
)

// Decisions recorded in run metadata by check-release.
const (
	decisionRelease    = "release"
	decisionNewer      = "newer"
	decisionNotNewer   = "not-newer"
	decisionNonRelease = "non-release"
)

func newCheckReleaseCommand(a *app) *cobra.Command {
	var (
		apiURL     string
		newVersion string
	)

	cmd := &cobra.Command{
		Use:   "check-release",
		Short: "Check whether a pull request only changes the release metadata file",
		Long: `Check whether a pull request is a release pull request.

With --api-url, the pull request's files are listed. If the release metadata
file is the only file changed, the release is published as outputs:
PR_version, PR_release_image, PR_release_info, PR_includes_release and
PR_release_body.

Otherwise the release metadata file in the working tree is read. With
--version, "updated=true" is output when that version is newer than the
file's. Without it, PR_version and PR_release_image are output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheckRelease(cmd.Context(), apiURL, newVersion)
		},
	}

	cmd.Flags().StringVarP(&apiURL, "api-url", "a", "", "API URL of the pull request, e.g. https://api.github.com/repos/<owner>/<repo>/pulls/<n>")
	cmd.Flags().StringVarP(&newVersion, "version", "v", "", "Version to compare with the release metadata file")

	return cmd
}

func (a *app) runCheckRelease(ctx context.Context, apiURL, newVersion string) error {
	params := metadata.RunParams{
		PullRequest: apiURL,
		Backend:     a.cfg.GitHub.Backend,
		PageSize:    a.cfg.Classifier.PageSize,
		Target:      a.cfg.Release.TargetPattern,
		Version:     newVersion,
	}

	return a.run(ctx, "check-release", params, func(ctx context.Context, out output.OutputWriter, tracker *metadata.Tracker) (string, error) {
		if apiURL != "" {
			onlyRelease, err := a.onlyReleaseFileChanged(ctx, apiURL, tracker)
			if err != nil {
				return "", err
			}
			if onlyRelease {
				return decisionRelease, a.publishRelease(ctx, out)
			}
		}

		info, err := release.LoadInfo(a.cfg.Release.InfoFile)
		if err != nil {
			return "", err
		}

		if newVersion != "" {
			return a.compareRelease(ctx, out, newVersion, info)
		}

		if err := setOutputs(out,
			"PR_version", info.Version,
			"PR_release_image", info.Image,
		); err != nil {
			return "", err
		}
		a.logger.InfoContext(ctx, "pull request contains non-release files")
		return decisionNonRelease, nil
	})
}

// onlyReleaseFileChanged classifies the pull request against the release
// metadata file pattern.
func (a *app) onlyReleaseFileChanged(ctx context.Context, apiURL string, tracker *metadata.Tracker) (bool, error) {
	ref, err := github.ParsePullRequestURL(apiURL)
	if err != nil {
		return false, err
	}

	matcher, err := classifier.NewPrefixMatcher(a.cfg.Release.TargetPattern)
	if err != nil {
		return false, err
	}

	c, err := a.newClassifier(ref, matcher, tracker)
	if err != nil {
		return false, err
	}

	outcome, err := c.Run(ctx)
	if err != nil {
		return false, fmt.Errorf("classifying %s: %w", ref, err)
	}

	attrs := []any{
		slog.String("pull_request", ref.String()),
		slog.String("result", outcome.Result.String()),
		slog.Int("pages", outcome.PagesFetched),
	}
	if outcome.FirstNonTarget != "" {
		attrs = append(attrs, slog.String("first_other_file", outcome.FirstNonTarget))
	}
	a.logger.InfoContext(ctx, "classified pull request", attrs...)

	return outcome.Result == classifier.OnlyTargetFileChanged, nil
}

// publishRelease outputs the release described by the metadata file, which is
// the pull request's version since the workflow runs on the pull request branch.
func (a *app) publishRelease(ctx context.Context, out output.OutputWriter) error {
	info, err := release.LoadInfo(a.cfg.Release.InfoFile)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "release found in pull request files", slog.String("version", info.Version))

	return setOutputs(out,
		"PR_version", info.Version,
		"PR_release_image", info.Image,
		"PR_release_info", info.NotesString(),
		"PR_includes_release", "true",
		"PR_release_body", release.Body(info),
	)
}

// compareRelease outputs updated=true when newVersion is newer than the
// release metadata file's version.
func (a *app) compareRelease(ctx context.Context, out output.OutputWriter, newVersion string, info *release.Info) (string, error) {
	newer, err := versionfile.IsNewer(newVersion, info.Version)
	if err != nil {
		return "", err
	}

	if !newer {
		a.logger.InfoContext(ctx, "release is not newer",
			slog.String("version", newVersion), slog.String("current", info.Version))
		return decisionNotNewer, nil
	}

	a.logger.InfoContext(ctx, "release is newer",
		slog.String("version", newVersion), slog.String("current", info.Version))
	return decisionNewer, out.Set("updated", "true")
}

// setOutputs sets name/value pairs in order.
func setOutputs(out output.OutputWriter, kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if err := out.Set(kv[i], kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}
