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

// Package classifier decides whether a release should proceed by looking at the
// files changed in a pull request.
//
// The changed files are read page by page from a PageFetcher. Pages are
// requested in order starting at 1, and the walk stops at the first page that is
// shorter than the requested page size. The first filename that is not the target
// ends the walk immediately, so a pull request touching anything besides the
// target costs a single request in the common case.
//
// Basic usage:
//
//	matcher, err := classifier.NewPrefixMatcher(`cmd/release/release_info\.json`)
//	if err != nil {
//	    return err
//	}
//	result, err := classifier.Classify(ctx, client, matcher)
//	if err != nil {
//	    return err
//	}
//	if result == classifier.OnlyTargetFileChanged {
//	    // release
//	}
package classifier
