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

package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	gh "github.com/google/go-github/v82/github"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
	"github.com/sirseerhq/sirseer-gate/internal/giterror"
	"github.com/sirseerhq/sirseer-gate/internal/logging"
)

// Compile-time interface satisfaction check.
var _ Client = (*RESTClient)(nil)

// RESTClient lists a pull request's files through
// GET {base}/repos/{owner}/{repo}/pulls/{number}/files?per_page=&page=.
type RESTClient struct {
	gh        *gh.Client
	ref       PullRequestRef
	inspector giterror.Inspector
}

// NewRESTClient creates a REST client for ref with the full transport stack.
func NewRESTClient(ref PullRequestRef, opts Options) (*RESTClient, error) {
	return NewRESTClientWithHTTPClient(newRESTHTTPClient(opts), ref, opts.Token)
}

// NewRESTClientWithHTTPClient creates a REST client over a caller-supplied
// http.Client, e.g. one returned by an httptest server.
func NewRESTClientWithHTTPClient(httpClient *http.Client, ref PullRequestRef, token string) (*RESTClient, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(ref.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &RESTClient{
		gh:        client,
		ref:       ref,
		inspector: giterror.NewInspector(),
	}, nil
}

// FetchPage implements Client.
func (c *RESTClient) FetchPage(ctx context.Context, page, pageSize int) ([]string, error) {
	opts := &gh.ListOptions{Page: page, PerPage: pageSize}

	files, resp, err := c.gh.PullRequests.ListFiles(ctx, c.ref.Owner, c.ref.Repo, c.ref.Number, opts)
	if err != nil {
		return nil, giterror.Wrap(c.inspector,
			fmt.Errorf("listing files for %s (page %d): %w", c.ref, page, err))
	}

	logRateLimit(ctx, resp, c.ref, page, len(files))

	names := make([]string, 0, len(files))
	for i, f := range files {
		if f == nil || f.Filename == nil {
			return nil, fmt.Errorf("%w: %w: entry %d on page %d of %s has no filename",
				gateerrors.ErrFetch, gateerrors.ErrMalformedPage, i, page, c.ref)
		}
		names = append(names, f.GetFilename())
	}

	return names, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(ctx context.Context, resp *gh.Response, ref PullRequestRef, page, count int) {
	if resp == nil {
		return
	}

	log := logging.FromContext(ctx)
	log.Debug("github api call",
		slog.String("pull_request", ref.String()),
		slog.Int("page", page),
		slog.Int("count", count),
		slog.Int("rate_remaining", resp.Rate.Remaining),
		slog.Int("rate_limit", resp.Rate.Limit),
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		log.Warn("github rate limit low",
			slog.Int("remaining", resp.Rate.Remaining),
			slog.Time("reset", resp.Rate.Reset.Time),
		)
	}
}
