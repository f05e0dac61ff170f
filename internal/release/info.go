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

// Package release loads the release metadata file that a release pull request
// edits, and renders the release notes derived from it.
package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

// DefaultInfoFile is the repository-relative path of the release metadata file.
const DefaultInfoFile = "cmd/release/release_info.json"

// Info is the content of the release metadata file.
type Info struct {
	Version string   `json:"version"`
	Image   string   `json:"quay-image"`
	Notes   []string `json:"release-info"`
}

// LoadInfo reads and validates the release metadata file at path.
func LoadInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("release info %s: %w", path, gateerrors.ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to read release info %s: %w", path, err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse release info %s: %w", path, err)
	}
	if info.Version == "" {
		return nil, fmt.Errorf("release info %s has no version", path)
	}

	return &info, nil
}

// NotesString renders the release notes the way they appear in step outputs:
// a bracketed list with each note quoted the way Python's repr quotes a string.
func (i *Info) NotesString() string {
	quoted := make([]string, len(i.Notes))
	for n, note := range i.Notes {
		quoted[n] = quoteNote(note)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// quoteNote single-quotes note unless it contains a single quote and no
// double quote, in which case double quotes are used.
func quoteNote(note string) string {
	quote := '\''
	if strings.ContainsRune(note, '\'') && !strings.ContainsRune(note, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range note {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// Body returns the HTML fragment used as the GitHub release description.
func Body(info *Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chart verifier version %s <br><br>Docker Image:<br>- %s:%s<br><br>", info.Version, info.Image, info.Version)
	b.WriteString("This version includes:<br>")
	for _, note := range info.Notes {
		fmt.Fprintf(&b, "- %s<br>", note)
	}
	return b.String()
}
