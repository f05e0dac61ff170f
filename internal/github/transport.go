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
	"io"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_secondary_ratelimit"
	"github.com/gregjones/httpcache"
)

// maxResponseBytes caps a single response body. A full page of 100 file
// entries with patches is well below this.
const maxResponseBytes = 10 * 1024 * 1024

// newBaseTransport returns a pooled transport for API traffic.
func newBaseTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// newRESTHTTPClient builds the REST transport stack:
//  1. headerTransport (User-Agent, response size limit)
//  2. httpcache (ETag-based conditional request caching), unless disabled
//  3. go-github-ratelimit (secondary rate limit detection). Sleeping is
//     disabled so a limited request fails instead of being sent again.
//
// Authentication is added by go-github itself.
func newRESTHTTPClient(opts Options) *http.Client {
	var rt http.RoundTripper = &headerTransport{
		userAgent: opts.UserAgent,
		base:      baseOrDefault(opts.Transport),
	}

	if !opts.DisableCache {
		cache := httpcache.NewMemoryCacheTransport()
		cache.Transport = rt
		rt = cache
	}

	// A zero single-sleep limit hands the limited response back to go-github,
	// which reports it as an AbuseRateLimitError. WithNoSleep is not used: in
	// v2.0.2 it never applies its option.
	return github_ratelimit.NewClient(rt, github_secondary_ratelimit.WithSingleSleepLimit(0, nil))
}

// newGraphQLHTTPClient builds the GraphQL transport stack. GraphQL requests
// are POSTs, so there is nothing for httpcache to do.
func newGraphQLHTTPClient(opts Options) *http.Client {
	var rt http.RoundTripper = &headerTransport{
		userAgent: opts.UserAgent,
		base:      baseOrDefault(opts.Transport),
	}
	if opts.Token != "" {
		rt = &authTransport{token: opts.Token, base: rt}
	}
	return &http.Client{Transport: rt}
}

func baseOrDefault(rt http.RoundTripper) http.RoundTripper {
	if rt != nil {
		return rt
	}
	return newBaseTransport()
}

// authTransport adds the bearer token to every request.
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

// headerTransport sets the User-Agent and limits response size.
type headerTransport struct {
	userAgent string
	base      http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseBytes,
		}
	}

	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}
