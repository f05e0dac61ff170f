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

import "context"

// Client defines the interface for listing a pull request's changed files.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchPage returns the filenames on one page of the pull request's file
	// listing. Pages are numbered from 1; a page shorter than pageSize is the
	// last one. Errors wrap errors.ErrFetch.
	FetchPage(ctx context.Context, page, pageSize int) ([]string, error)
}
