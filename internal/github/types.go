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
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

// MaxPageSize is the largest per_page value the files endpoint honors.
const MaxPageSize = 100

// PullRequestRef identifies a pull request on a GitHub (or GitHub Enterprise)
// API server.
type PullRequestRef struct {
	// BaseURL is the API root including a trailing slash, e.g.
	// "https://api.github.com/" or "https://ghe.example.com/api/v3/".
	BaseURL string
	Owner   string
	Repo    string
	Number  int
}

// String returns the ref as "owner/repo#number".
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// APIURL returns the pull request's REST URL.
func (r PullRequestRef) APIURL() string {
	return fmt.Sprintf("%srepos/%s/%s/pulls/%d", r.BaseURL, r.Owner, r.Repo, r.Number)
}

// ParsePullRequestURL parses a pull request API URL of the form
// {base}/repos/{owner}/{repo}/pulls/{number}.
func ParsePullRequestURL(raw string) (PullRequestRef, error) {
	invalid := func(reason string) (PullRequestRef, error) {
		return PullRequestRef{}, fmt.Errorf("%w: %q: %s", gateerrors.ErrInvalidPullRequestURL, raw, reason)
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return invalid(err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return invalid("expected an absolute http(s) URL")
	}

	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, "/repos/")
	if idx < 0 {
		return invalid("expected .../repos/<owner>/<repo>/pulls/<number>")
	}

	parts := strings.Split(path[idx+len("/repos/"):], "/")
	if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[2] != "pulls" {
		return invalid("expected .../repos/<owner>/<repo>/pulls/<number>")
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return invalid("pull request number must be a positive integer")
	}

	base := url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: path[:idx+1]}
	return PullRequestRef{
		BaseURL: base.String(),
		Owner:   parts[0],
		Repo:    parts[1],
		Number:  number,
	}, nil
}

// ParsePullRequest resolves "owner/repo#number" against an API endpoint such
// as "https://api.github.com".
func ParsePullRequest(apiEndpoint, spec string) (PullRequestRef, error) {
	repo, num, ok := strings.Cut(strings.TrimSpace(spec), "#")
	owner, name, okRepo := strings.Cut(repo, "/")
	if !ok || !okRepo || owner == "" || name == "" || strings.Contains(name, "/") {
		return PullRequestRef{}, fmt.Errorf("%w: expected <owner>/<repo>#<number>, got: %s",
			gateerrors.ErrInvalidPullRequestURL, spec)
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(apiEndpoint), "/")
	return ParsePullRequestURL(fmt.Sprintf("%s/repos/%s/%s/pulls/%s", endpoint, owner, name, num))
}

// Options configures the HTTP stack shared by the REST and GraphQL clients.
type Options struct {
	// Token is sent as a bearer token. Empty means unauthenticated requests.
	Token string

	// UserAgent identifies the tool to the API.
	UserAgent string

	// DisableCache turns off ETag caching of REST responses.
	DisableCache bool

	// Transport overrides the base transport. Nil uses a pooled http.Transport.
	Transport http.RoundTripper
}
