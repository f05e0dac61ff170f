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

// Package testutil provides common test helpers for sirseer-gate
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Owner, Repo and Number identify the pull request served by FilesServer.
const (
	Owner  = "redhat-certification"
	Repo   = "chart-verifier"
	Number = 42
)

// FilesServer is an httptest server that lists a fixed set of changed files
// for one pull request, over both the REST and GraphQL APIs.
type FilesServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    []string
	requests []Request
	status   int
	body     string

	// retryAfter, when set, answers the next listing request with a
	// secondary rate limit and is then cleared.
	retryAfter string
}

// SecondaryRateLimitBody is GitHub's response body for a secondary rate limit.
const SecondaryRateLimitBody = `{"message": "You have exceeded a secondary rate limit. Please wait a few minutes before you try again.", ` +
	`"documentation_url": "https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`

// Request records one listing request.
type Request struct {
	Page          int
	PerPage       int
	After         string
	Authorization string
	UserAgent     string
}

// NewFilesServer starts a server listing files. It is closed on test cleanup.
func NewFilesServer(t *testing.T, files []string) *FilesServer {
	t.Helper()
	s := &FilesServer{files: files}

	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("GET /repos/%s/%s/pulls/%d/files", Owner, Repo, Number), s.serveREST)
	mux.HandleFunc("POST /graphql", s.serveGraphQL)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// NewErrorServer creates a mock server whose listing always fails with the
// given status code.
func NewErrorServer(t *testing.T, statusCode int) *FilesServer {
	t.Helper()
	s := NewFilesServer(t, nil)
	s.FailWith(statusCode, fmt.Sprintf(`{"message": %q}`, http.StatusText(statusCode)))
	return s
}

// NewMalformedServer creates a mock server whose listing returns body with 200 OK.
func NewMalformedServer(t *testing.T, body string) *FilesServer {
	t.Helper()
	s := NewFilesServer(t, nil)
	s.FailWith(http.StatusOK, body)
	return s
}

// FailWith makes every following listing request answer with status and body.
func (s *FilesServer) FailWith(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// SecondaryRateLimitOnce makes the next listing request answer 403 with a
// Retry-After header of retryAfter seconds. Later requests are served normally.
func (s *FilesServer) SecondaryRateLimitOnce(retryAfter int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAfter = strconv.Itoa(retryAfter)
}

// PullRequestURL returns the REST API URL of the served pull request.
func (s *FilesServer) PullRequestURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/pulls/%d", s.URL, Owner, Repo, Number)
}

// GraphQLURL returns the GraphQL endpoint of the server.
func (s *FilesServer) GraphQLURL() string {
	return s.URL + "/graphql"
}

// Requests returns the listing requests received so far.
func (s *FilesServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Pages returns the page numbers requested so far, in order.
func (s *FilesServer) Pages() []int {
	reqs := s.Requests()
	pages := make([]int, len(reqs))
	for i, r := range reqs {
		pages[i] = r.Page
	}
	return pages
}

func (s *FilesServer) record(r Request) (status int, body, retryAfter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
	if s.retryAfter != "" {
		retryAfter, s.retryAfter = s.retryAfter, ""
		return http.StatusForbidden, SecondaryRateLimitBody, retryAfter
	}
	return s.status, s.body, ""
}

func (s *FilesServer) serveREST(w http.ResponseWriter, r *http.Request) {
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	perPage := atoiDefault(r.URL.Query().Get("per_page"), 30)

	status, body, retryAfter := s.record(Request{
		Page:          page,
		PerPage:       perPage,
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", "4999")
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}

	window := s.window((page-1)*perPage, perPage)
	entries := make([]map[string]interface{}, 0, len(window))
	for _, name := range window {
		entries = append(entries, map[string]interface{}{
			"sha":       "bbcd538c8e72b8c175046e27cc8f907076331401",
			"filename":  name,
			"status":    "modified",
			"additions": 1,
			"deletions": 1,
			"changes":   2,
		})
	}
	_ = json.NewEncoder(w).Encode(entries)
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (s *FilesServer) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	first := 0
	if v, ok := req.Variables["first"].(float64); ok {
		first = int(v)
	}
	after, _ := req.Variables["after"].(string)
	offset := 0
	if after != "" {
		offset = atoiDefault(strings.TrimPrefix(after, "cursor:"), 0)
	}

	status, body, retryAfter := s.record(Request{
		Page:          offset/max(first, 1) + 1,
		PerPage:       first,
		After:         after,
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
	})

	w.Header().Set("Content-Type", "application/json")
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}

	window := s.window(offset, first)
	nodes := make([]map[string]interface{}, 0, len(window))
	for _, name := range window {
		nodes = append(nodes, map[string]interface{}{"path": name})
	}
	end := offset + len(window)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"pullRequest": map[string]interface{}{
					"files": map[string]interface{}{
						"nodes": nodes,
						"pageInfo": map[string]interface{}{
							"hasNextPage": end < len(s.files),
							"endCursor":   fmt.Sprintf("cursor:%d", end),
						},
					},
				},
			},
		},
	})
}

func (s *FilesServer) window(offset, size int) []string {
	if offset >= len(s.files) || size <= 0 {
		return nil
	}
	return s.files[offset:min(offset+size, len(s.files))]
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Repeat returns n copies of name.
func Repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}
