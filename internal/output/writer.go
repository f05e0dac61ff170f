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

package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EnvFile names the environment variable through which the runner passes
// the step output file.
const EnvFile = "GITHUB_OUTPUT"

// commandEscaper escapes the characters that would end a workflow command.
var commandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// Writer publishes step outputs. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	file      io.Writer
	count     int
	closeFunc func() error
	delimiter func() string
}

// NewWriter creates a Writer that prints workflow commands to w only.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		output:    w,
		delimiter: newDelimiter,
	}
}

// NewFileWriter creates a Writer that prints workflow commands to w and
// appends every output to the file at path. An empty path behaves like
// NewWriter. The caller must call Close() when done.
func NewFileWriter(w io.Writer, path string) (*Writer, error) {
	writer := NewWriter(w)
	if path == "" {
		return writer, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	writer.file = file
	writer.closeFunc = file.Close
	return writer, nil
}

// Set publishes name=value.
func (w *Writer) Set(name, value string) error {
	if err := validateName(name); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.output, "::set-output name=%s::%s\n", name, commandEscaper.Replace(value)); err != nil {
		return fmt.Errorf("failed to write output %s: %w", name, err)
	}

	if w.file != nil {
		if _, err := io.WriteString(w.file, w.fileEntry(name, value)); err != nil {
			return fmt.Errorf("failed to append output %s: %w", name, err)
		}
	}

	w.count++
	return nil
}

// fileEntry formats one output for the GITHUB_OUTPUT file.
func (w *Writer) fileEntry(name, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n"
	}

	delim := w.delimiter()
	for strings.Contains(value, delim) {
		delim = w.delimiter()
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
}

// Count returns the number of outputs written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the output file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		closeFunc := w.closeFunc
		w.closeFunc = nil
		w.file = nil
		return closeFunc()
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("output name cannot be empty")
	}
	if strings.ContainsAny(name, "=:\r\n \t") {
		return fmt.Errorf("invalid output name %q", name)
	}
	return nil
}

func newDelimiter() string {
	return "ghadelimiter_" + uuid.NewString()
}
