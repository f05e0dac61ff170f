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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-gate/internal/classifier"
	"github.com/sirseerhq/sirseer-gate/internal/config"
	"github.com/sirseerhq/sirseer-gate/internal/github"
	"github.com/sirseerhq/sirseer-gate/internal/metadata"
	"github.com/sirseerhq/sirseer-gate/internal/testutil"
)

const (
	releaseFile = "cmd/release/release_info.json"
	versionGo   = "cmd/version.go"

	releaseInfo = `{
  "version": "1.3.0",
  "quay-image": "quay.io/redhat-certification/chart-verifier",
  "release-info": ["Add foo", "Fix bar"]
}`

	versionSource = `package cmd

// Version is the tool version.
var Version = "1.5.0"
`
)

// setupWorkspace changes into a fresh directory laid out like the checked
// out repository and isolates the run from the caller's environment.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GITHUB_OUTPUT", "")
	t.Setenv("GITHUB_TOKEN", "")

	testutil.WriteFile(t, filepath.Join(dir, releaseFile), releaseInfo)
	testutil.WriteFile(t, filepath.Join(dir, versionGo), versionSource)
	return dir
}

func runCLI(t *testing.T, args ...string) testutil.CLIResult {
	t.Helper()
	return testutil.RunCLI(t, run, args...)
}

func TestCheckRelease_OnlyReleaseFile(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, []string{releaseFile})

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.Equal(t, []string{
		"::set-output name=PR_version::1.3.0",
		"::set-output name=PR_release_image::quay.io/redhat-certification/chart-verifier",
		"::set-output name=PR_release_info::['Add foo', 'Fix bar']",
		"::set-output name=PR_includes_release::true",
		"::set-output name=PR_release_body::Chart verifier version 1.3.0 <br><br>Docker Image:<br>" +
			"- quay.io/redhat-certification/chart-verifier:1.3.0<br><br>" +
			"This version includes:<br>- Add foo<br>- Fix bar<br>",
	}, res.Lines())

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 100, reqs[0].PerPage)
	assert.Equal(t, "sirseer-gate/"+version, reqs[0].UserAgent)
}

func TestCheckRelease_OtherFilesChanged(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, []string{releaseFile, "README.md", "go.mod"})

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.Equal(t, []string{
		"::set-output name=PR_version::1.3.0",
		"::set-output name=PR_release_image::quay.io/redhat-certification/chart-verifier",
	}, res.Lines())
	assert.Contains(t, res.Stderr, "pull request contains non-release files")
}

func TestCheckRelease_ReleaseFileNotChanged(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, nil)

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.NotContains(t, res.Stdout, "PR_includes_release")
	assert.Contains(t, res.Stdout, "::set-output name=PR_version::1.3.0")
}

func TestCheckRelease_DotInTargetIsLiteral(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, []string{"cmd/release/release_infoXjson"})

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.NotContains(t, res.Stdout, "PR_includes_release")
	assert.Contains(t, res.Stdout, "::set-output name=PR_version::1.3.0")
}

func TestCheckRelease_ManyPages(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, testutil.Repeat(releaseFile, 250))

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.Contains(t, res.Stdout, "::set-output name=PR_includes_release::true")
	assert.Equal(t, []int{1, 2, 3}, server.Pages())
}

func TestCheckRelease_CompareVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    []string
	}{
		{name: "newer", version: "1.4.0", want: []string{"::set-output name=updated::true"}},
		{name: "same", version: "1.3.0", want: nil},
		{name: "older", version: "1.2.9", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t)

			res := runCLI(t, "check-release", "--version", tt.version)
			testutil.AssertCLISuccess(t, res)
			assert.Equal(t, tt.want, res.Lines())
		})
	}
}

func TestCheckRelease_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, dir string) []string
		wantErr string
	}{
		{
			name: "pull request not found",
			prepare: func(t *testing.T, _ string) []string {
				server := testutil.NewErrorServer(t, 404)
				return []string{"check-release", "--api-url", server.PullRequestURL()}
			},
			wantErr: "pull request not found",
		},
		{
			name: "malformed listing",
			prepare: func(t *testing.T, _ string) []string {
				server := testutil.NewMalformedServer(t, `{"message": "oops"}`)
				return []string{"check-release", "--api-url", server.PullRequestURL()}
			},
			wantErr: "malformed file listing page",
		},
		{
			name: "invalid api url",
			prepare: func(*testing.T, string) []string {
				return []string{"check-release", "--api-url", "https://github.com/o/r/pull/1"}
			},
			wantErr: "invalid pull request api url",
		},
		{
			name: "release info missing",
			prepare: func(t *testing.T, dir string) []string {
				require.NoError(t, os.Remove(filepath.Join(dir, releaseFile)))
				server := testutil.NewFilesServer(t, []string{releaseFile})
				return []string{"check-release", "--api-url", server.PullRequestURL()}
			},
			wantErr: "file not found",
		},
		{
			name: "invalid version",
			prepare: func(*testing.T, string) []string {
				return []string{"check-release", "--version", "not-a-version"}
			},
			wantErr: "not-a-version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupWorkspace(t)
			res := runCLI(t, tt.prepare(t, dir)...)

			testutil.AssertCLIError(t, res, "Error:")
			assert.Contains(t, res.Stderr, tt.wantErr)
			assert.Empty(t, res.Stdout, "no partial outputs on failure")
		})
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		args  []string
		want  []string
	}{
		{
			name: "no pull request",
			args: []string{"check-version"},
			want: []string{"::set-output name=version_in_PR::1.5.0"},
		},
		{
			name:  "version file changed",
			files: []string{"README.md", versionGo},
			args:  []string{"check-version"},
			want:  []string{"::set-output name=version_in_PR::1.5.0"},
		},
		{
			name:  "version file changed and newer",
			files: []string{versionGo, "go.sum"},
			args:  []string{"check-version", "--version", "1.4.2"},
			want:  []string{"::set-output name=version_in_PR::true"},
		},
		{
			name:  "version file changed but not newer",
			files: []string{versionGo},
			args:  []string{"check-version", "--version", "1.5.0"},
			want:  nil,
		},
		{
			name:  "dot in version path is literal",
			files: []string{"cmd/versionXgo"},
			args:  []string{"check-version"},
			want:  nil,
		},
		{
			name:  "version file not changed",
			files: []string{"README.md", "go.mod"},
			args:  []string{"check-version"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t)
			args := tt.args
			if tt.files != nil {
				server := testutil.NewFilesServer(t, tt.files)
				args = append(args, "--api-url", server.PullRequestURL())
			}

			res := runCLI(t, args...)
			testutil.AssertCLISuccess(t, res)
			assert.Equal(t, tt.want, res.Lines())
		})
	}
}

func TestCheckVersion_StopsAtFirstMatch(t *testing.T) {
	setupWorkspace(t)
	files := append([]string{versionGo}, testutil.Repeat("docs/page.md", 150)...)
	server := testutil.NewFilesServer(t, files)

	res := runCLI(t, "check-version", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)
	assert.Equal(t, []int{1}, server.Pages())
}

func TestCheckVersion_NoVersionLine(t *testing.T) {
	dir := setupWorkspace(t)
	testutil.WriteFile(t, filepath.Join(dir, versionGo), "package cmd\n")

	res := runCLI(t, "check-version")
	testutil.AssertCLIError(t, res, `no "var Version =" line`)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		args  []string
		want  []string
	}{
		{
			name:  "only target by pattern",
			files: []string{"docs/a.md", "docs/b.md"},
			args:  []string{"--pattern", "docs/"},
			want: []string{
				"::set-output name=classification::only-target-changed",
				"::set-output name=pages_fetched::1",
				"::set-output name=files_scanned::2",
			},
		},
		{
			name:  "other files by glob",
			files: []string{"docs/a.md", "main.go", "docs/b.md"},
			args:  []string{"--glob", "docs/**"},
			want: []string{
				"::set-output name=classification::other-files-changed",
				"::set-output name=pages_fetched::1",
				"::set-output name=files_scanned::2",
			},
		},
		{
			name:  "target not changed",
			files: nil,
			args:  []string{"--glob", "docs/**"},
			want: []string{
				"::set-output name=classification::target-not-changed",
				"::set-output name=pages_fetched::1",
				"::set-output name=files_scanned::0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t)
			server := testutil.NewFilesServer(t, tt.files)

			args := append([]string{"classify", "--api-url", server.PullRequestURL()}, tt.args...)
			res := runCLI(t, args...)
			testutil.AssertCLISuccess(t, res)
			assert.Equal(t, tt.want, res.Lines())
		})
	}
}

func TestClassify_PullRequestShorthand(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, []string{"docs/a.md"})
	t.Setenv("GITHUB_API_ENDPOINT", server.URL)

	res := runCLI(t, "classify", "--pr", testutil.Owner+"/"+testutil.Repo+"#42", "--glob", "docs/*")
	testutil.AssertCLISuccess(t, res)
	assert.Contains(t, res.Stdout, "::set-output name=classification::only-target-changed")
}

func TestClassify_GraphQLBackend(t *testing.T) {
	setupWorkspace(t)
	server := testutil.NewFilesServer(t, []string{"docs/a.md", "docs/b.md", "docs/c.md"})
	t.Setenv("GITHUB_GRAPHQL_ENDPOINT", server.GraphQLURL())

	res := runCLI(t, "--backend", "graphql", "--page-size", "2", "--token", "secret",
		"classify", "--api-url", server.PullRequestURL(), "--pattern", "docs/")
	testutil.AssertCLISuccess(t, res)

	assert.Equal(t, []string{
		"::set-output name=classification::only-target-changed",
		"::set-output name=pages_fetched::2",
		"::set-output name=files_scanned::3",
	}, res.Lines())

	reqs := server.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "cursor:2", reqs[1].After)
	assert.Equal(t, "Bearer secret", reqs[0].Authorization)
}

func TestClassify_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no target", []string{"classify", "--pr", "o/r#1"}},
		{"both targets", []string{"classify", "--pr", "o/r#1", "--pattern", "a", "--glob", "b"}},
		{"no pull request", []string{"classify", "--pattern", "a"}},
		{"invalid pattern", []string{"classify", "--pr", "o/r#1", "--pattern", "("}},
		{"invalid glob", []string{"classify", "--pr", "o/r#1", "--glob", "[a"}},
		{"invalid shorthand", []string{"classify", "--pr", "o/r", "--pattern", "a"}},
		{"page size out of range", []string{"--page-size", "101", "classify", "--pr", "o/r#1", "--pattern", "a"}},
		{"unknown backend", []string{"--backend", "soap", "classify", "--pr", "o/r#1", "--pattern", "a"}},
		{"unknown log level", []string{"--log-level", "loud", "classify", "--pr", "o/r#1", "--pattern", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t)
			res := runCLI(t, tt.args...)
			testutil.AssertCLIError(t, res, "Error:")
		})
	}
}

func TestRun_GitHubOutputFile(t *testing.T) {
	dir := setupWorkspace(t)
	outputFile := filepath.Join(dir, "github_output")
	t.Setenv("GITHUB_OUTPUT", outputFile)

	res := runCLI(t, "check-version")
	testutil.AssertCLISuccess(t, res)

	testutil.AssertFileContains(t, outputFile, "version_in_PR=1.5.0\n")
}

func TestRun_UnknownFlagWritesNoOutputs(t *testing.T) {
	dir := setupWorkspace(t)
	outputFile := filepath.Join(dir, "github_output")
	metaPath := filepath.Join(dir, "run.json")
	t.Setenv("GITHUB_OUTPUT", outputFile)

	res := runCLI(t, "--metadata-file", metaPath, "check-version", "--no-such-flag")
	testutil.AssertCLIError(t, res, "unknown flag")
	assert.Empty(t, res.Stdout)
	testutil.AssertFileNotExists(t, outputFile)
	testutil.AssertFileNotExists(t, metaPath)
}

func TestRun_MetadataFile(t *testing.T) {
	dir := setupWorkspace(t)
	server := testutil.NewFilesServer(t, testutil.Repeat(releaseFile, 3))
	metaPath := filepath.Join(dir, "out", "run.json")

	res := runCLI(t, "--metadata-file", metaPath, "--page-size", "2",
		"check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	var meta metadata.RunMetadata
	testutil.ReadJSON(t, metaPath, &meta)
	assert.Equal(t, "check-release", meta.Command)
	assert.Equal(t, version, meta.GateVersion)
	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, 2, meta.Parameters.PageSize)
	assert.Equal(t, decisionRelease, meta.Results.Decision)
	assert.Equal(t, 2, meta.Results.PagesFetched)
	assert.Equal(t, 3, meta.Results.FilesListed)
}

func TestRun_ConfigFile(t *testing.T) {
	dir := setupWorkspace(t)
	testutil.WriteFile(t, filepath.Join(dir, "meta", "release.json"), `{"version": "2.0.0", "quay-image": "quay.io/x/y", "release-info": []}`)
	testutil.WriteFile(t, filepath.Join(dir, ".sirseer-gate.yaml"), `
release:
  info_file: meta/release.json
  target_pattern: meta/release\.json
classifier:
  page_size: 1
`)
	server := testutil.NewFilesServer(t, []string{"meta/release.json"})

	res := runCLI(t, "check-release", "--api-url", server.PullRequestURL())
	testutil.AssertCLISuccess(t, res)

	assert.Contains(t, res.Stdout, "::set-output name=PR_version::2.0.0")
	assert.Contains(t, res.Stdout, "::set-output name=PR_includes_release::true")
	assert.Equal(t, []int{1, 2}, server.Pages())
}

// TestCheckRelease_MockFetcher runs the command against an in-memory fetcher.
func TestCheckRelease_MockFetcher(t *testing.T) {
	setupWorkspace(t)

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	mock := github.NewMockClient(releaseFile, "Makefile")

	var gotRef github.PullRequestRef
	a.newFetcher = func(_ *config.Config, ref github.PullRequestRef, opts github.Options) (classifier.PageFetcher, error) {
		gotRef = ref
		assert.Equal(t, "secret", opts.Token)
		return mock, nil
	}

	rootCmd := newRootCommand(a)
	rootCmd.SetArgs([]string{"--token", "secret", "check-release", "--api-url", "https://api.github.com/repos/o/r/pulls/9"})
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, "o/r#9", gotRef.String())
	assert.Equal(t, 1, mock.CallCount)
	assert.NotContains(t, stdout.String(), "PR_includes_release")
}

func TestCheckRelease_MockFetcherError(t *testing.T) {
	setupWorkspace(t)

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.newFetcher = func(*config.Config, github.PullRequestRef, github.Options) (classifier.PageFetcher, error) {
		return github.NewMockClientWithOptions(github.WithAuthFailure()), nil
	}

	rootCmd := newRootCommand(a)
	rootCmd.SetArgs([]string{"check-release", "--api-url", "https://api.github.com/repos/o/r/pulls/9"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid github token")
	assert.Empty(t, stdout.String())
}
