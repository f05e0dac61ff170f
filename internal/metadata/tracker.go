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

// Package metadata records what a gate run did. A Tracker observes the
// classifier's page fetches and produces a RunMetadata record that can be
// saved as JSON for later auditing of release decisions.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tracker collects statistics during a run. It implements
// classifier.Observer; create one per run.
type Tracker struct {
	mu           sync.Mutex
	runID        string
	startTime    time.Time
	pagesFetched int
	filesListed  int
}

// New creates a new tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
	}
}

// RunID returns the unique identifier of the tracked run.
func (t *Tracker) RunID() string {
	return t.runID
}

// PageFetched records that a page of count files was listed.
func (t *Tracker) PageFetched(_, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pagesFetched++
	t.filesListed += count
}

// PagesFetched returns the number of pages recorded so far.
func (t *Tracker) PagesFetched() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pagesFetched
}

// GenerateMetadata creates the record for the finished run. runErr is the
// error the run failed with, or nil; decision is ignored when runErr is set.
func (t *Tracker) GenerateMetadata(gateVersion, command string, params RunParams, decision string, runErr error) *RunMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	results := RunResults{
		Decision:     decision,
		PagesFetched: t.pagesFetched,
		FilesListed:  t.filesListed,
		Duration:     completedAt.Sub(t.startTime).String(),
		StartedAt:    t.startTime,
		CompletedAt:  completedAt,
	}
	if runErr != nil {
		results.Decision = ""
		results.Error = runErr.Error()
	}

	return &RunMetadata{
		GateVersion: gateVersion,
		RunID:       t.runID,
		Command:     command,
		Parameters:  params,
		Results:     results,
	}
}

// SaveMetadata writes a RunMetadata record to path as indented JSON. The
// file is written to a temporary file first and renamed into place so that
// readers never see a partial record.
func SaveMetadata(metadata *RunMetadata, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metadata directory: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save metadata file: %w", err)
	}

	return nil
}

// WriteMetadataToWriter serializes metadata to indented JSON on w.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
