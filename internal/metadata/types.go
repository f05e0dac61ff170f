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

// Package metadata types define the record written for each gate run.
package metadata

import (
	"time"
)

// RunMetadata is the complete record of a single gate run: which pull
// request was inspected, how, and what was decided.
type RunMetadata struct {
	GateVersion string     `json:"gate_version"`
	RunID       string     `json:"run_id"`
	Command     string     `json:"command"`
	Parameters  RunParams  `json:"parameters"`
	Results     RunResults `json:"results"`
}

// RunParams captures the inputs of a run.
type RunParams struct {
	PullRequest string `json:"pull_request,omitempty"`
	Backend     string `json:"backend,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	Target      string `json:"target,omitempty"`
	Version     string `json:"version,omitempty"`
}

// RunResults contains the decision and the API usage of a run.
type RunResults struct {
	Decision     string    `json:"decision,omitempty"`
	Error        string    `json:"error,omitempty"`
	PagesFetched int       `json:"pages_fetched"`
	FilesListed  int       `json:"files_listed"`
	Duration     string    `json:"duration"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}
