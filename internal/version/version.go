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

// Package version reads declared version literals out of source files and
// compares them.
package version

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

// DefaultMarker is the assignment that declares the version in cmd/version.go.
const DefaultMarker = "var Version ="

// Extract returns the value assigned on the first line containing marker.
// Everything after the first '=' is kept with all whitespace removed and
// surrounding double quotes stripped. The boolean is false if no line matches.
func Extract(r io.Reader, marker string) (string, bool, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, marker) {
			continue
		}

		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Join(strings.Fields(value), "")
		return strings.Trim(value, `"`), true, nil
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("failed to read version source: %w", err)
	}

	return "", false, nil
}

// ExtractFile is Extract over the file at path.
func ExtractFile(path, marker string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("version file %s: %w", path, gateerrors.ErrFileNotFound)
		}
		return "", false, fmt.Errorf("failed to open version file %s: %w", path, err)
	}
	defer f.Close()

	return Extract(f, marker)
}

// IsNewer reports whether candidate is a strictly greater semantic version
// than current. A leading "v" is accepted on either side.
func IsNewer(candidate, current string) (bool, error) {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", candidate, err)
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", current, err)
	}
	return c.GreaterThan(cur), nil
}
