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

// Package github lists the files changed by a pull request through GitHub's
// APIs. It hides the difference between the REST listing endpoint, which is
// paginated by page number, and the GraphQL API, which is paginated by cursor,
// behind a single page-numbered Client interface.
//
// The package includes:
//   - A Client interface returning one page of filenames at a time
//   - A REST implementation using go-github, with ETag caching and secondary
//     rate limit handling in the transport
//   - A GraphQL implementation using the shurcooL/graphql library
//   - Mock client for testing
//   - Pull request API URL parsing
//
// Basic usage:
//
//	ref, err := github.ParsePullRequestURL("https://api.github.com/repos/org/repo/pulls/42")
//	if err != nil {
//	    // Handle error
//	}
//	client, err := github.NewRESTClient(ref, github.Options{Token: token})
//	if err != nil {
//	    // Handle error
//	}
//	files, err := client.FetchPage(ctx, 1, 100)
package github
