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

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
// It serves Files in pages of the requested size.
type MockClient struct {
	// Files to return
	Files []string

	// Error to return
	Error error

	// FailOnPage makes the given page fail with Error (or a network error).
	// Zero means every page fails when Error is set.
	FailOnPage int

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	CallCount    int
	Pages        []int
	LastPageSize int
}

// NewMockClient creates a new mock client serving the given files.
func NewMockClient(files ...string) *MockClient {
	return &MockClient{Files: files}
}

// FetchPage implements the Client interface
func (m *MockClient) FetchPage(ctx context.Context, page, pageSize int) ([]string, error) {
	m.CallCount++
	m.Pages = append(m.Pages, page)
	m.LastPageSize = pageSize

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", gateerrors.ErrFetch, ctx.Err())
	default:
	}

	if m.ShouldFailAuth {
		return nil, fmt.Errorf("%w: authentication failed: %w", gateerrors.ErrFetch, gateerrors.ErrInvalidToken)
	}

	failing := m.FailOnPage == 0 || m.FailOnPage == page
	if m.ShouldFailNetwork && failing {
		return nil, fmt.Errorf("%w: network timeout: %w", gateerrors.ErrFetch, gateerrors.ErrNetworkFailure)
	}
	if m.Error != nil && failing {
		return nil, m.Error
	}

	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: invalid page size %d", gateerrors.ErrFetch, pageSize)
	}

	start := (page - 1) * pageSize
	if start >= len(m.Files) {
		return []string{}, nil
	}
	end := min(start+pageSize, len(m.Files))

	out := make([]string, end-start)
	copy(out, m.Files[start:end])
	return out, nil
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithFiles sets the files to serve
func WithFiles(files []string) MockClientOption {
	return func(m *MockClient) {
		m.Files = files
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithFailureOnPage restricts failures to a single page
func WithFailureOnPage(page int) MockClientOption {
	return func(m *MockClient) {
		m.FailOnPage = page
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
