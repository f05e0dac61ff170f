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

// Package errors defines sentinel errors for consistent error handling across the application.
// Every failure talking to the file-listing endpoint is an ErrFetch; the more specific
// sentinels below are attached alongside it so callers can tell causes apart.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrFetch indicates the changed-file listing could not be retrieved.
	// Classification aborts without a partial result when it is returned.
	ErrFetch = errors.New("failed to fetch changed files")

	// ErrMalformedPage indicates a listing page was not a sequence of filenames.
	// Always reported together with ErrFetch.
	ErrMalformedPage = errors.New("malformed file listing page")

	// ErrFileNotFound indicates an expected local metadata file is absent.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPullRequestURL indicates the pull request API URL could not be parsed.
	ErrInvalidPullRequestURL = errors.New("invalid pull request api url")

	// ErrInvalidToken indicates GitHub authentication failed.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrNotFound indicates the pull request does not exist or is not accessible.
	ErrNotFound = errors.New("pull request not found")

	// ErrNetworkFailure indicates a network connection problem.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	ErrRateLimit = errors.New("github rate limit exceeded")
)
