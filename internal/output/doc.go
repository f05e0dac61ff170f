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

// Package output writes step outputs for the CI workflow that runs
// sirseer-gate.
//
// Every output is printed to stdout as a workflow command of the form
//
//	::set-output name=<name>::<value>
//
// and, when the runner provides a GITHUB_OUTPUT file, also appended to that
// file so that newer runners pick it up. Values containing newlines are
// written to the file with a random heredoc delimiter.
//
// Example usage:
//
//	w, err := output.NewFileWriter(os.Stdout, os.Getenv(output.EnvFile))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Set("PR_version", info.Version); err != nil {
//	    return err
//	}
package output
