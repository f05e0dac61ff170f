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

// Package main implements the sirseer-gate command-line interface.
// The tool runs inside a CI workflow and decides whether a pull request
// is a release: it lists the pull request's changed files through the
// GitHub API and publishes the decision as step outputs.
//
// Commands:
//   - check-release: is the pull request a release pull request, and
//     is the release newer than the one on the base branch
//   - check-version: does the pull request change the Go version file
//   - classify: generic classification against a pattern or glob
//
// Usage:
//
//	sirseer-gate check-release --api-url https://api.github.com/repos/<owner>/<repo>/pulls/<n>
//	sirseer-gate check-version --api-url <url> --version 1.2.0
//	sirseer-gate classify --pr <owner>/<repo>#<n> --glob 'docs/**'
//
// Outputs are printed as "::set-output name=<key>::<value>" lines on stdout
// and appended to $GITHUB_OUTPUT when set. Logs go to stderr.
//
// Exit codes:
//   - 0: Success
//   - 1: Any failure
package main
