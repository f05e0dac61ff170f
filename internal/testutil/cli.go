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

package testutil

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

// RunFunc is the signature of the gate's in-process entry point.
type RunFunc func(ctx context.Context, args []string, stdout, stderr io.Writer) int

// CLIResult contains the result of running a CLI command
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Lines returns the non-empty stdout lines.
func (r CLIResult) Lines() []string {
	var out []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// RunCLI runs the command in-process with the given arguments
func RunCLI(t *testing.T, run RunFunc, args ...string) CLIResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	return CLIResult{
		ExitCode: code,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}

// AssertCLISuccess checks that the CLI command exited 0
func AssertCLISuccess(t *testing.T, result CLIResult) {
	t.Helper()

	if result.ExitCode != 0 {
		t.Fatalf("Command failed with exit code %d\nStderr: %s", result.ExitCode, result.Stderr)
	}
}

// AssertCLIError checks that the CLI command exited 1 and reported expectedError on stderr
func AssertCLIError(t *testing.T, result CLIResult, expectedError string) {
	t.Helper()

	if result.ExitCode != 1 {
		t.Fatalf("Expected command to fail with exit code 1, got %d\nStdout: %s", result.ExitCode, result.Stdout)
	}

	if expectedError != "" && !strings.Contains(result.Stderr, expectedError) {
		t.Errorf("Expected error containing %q, got: %s", expectedError, result.Stderr)
	}
}

// AssertExitCode checks the command exit code
func AssertExitCode(t *testing.T, result CLIResult, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStderr: %s", expected, result.ExitCode, result.Stderr)
	}
}
