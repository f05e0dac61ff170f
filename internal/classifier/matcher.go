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

package classifier

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher identifies the target file.
type Matcher interface {
	Match(filename string) bool
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(filename string) bool

// Match calls f.
func (f MatcherFunc) Match(filename string) bool {
	return f(filename)
}

// PrefixMatcher matches a regular expression against the start of a filename.
// The rest of the filename is not constrained, so "cmd/version.go" also
// matches "cmd/version.go.orig".
type PrefixMatcher struct {
	re *regexp.Regexp
}

// NewPrefixMatcher compiles pattern anchored at the start of the filename.
func NewPrefixMatcher(pattern string) (*PrefixMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty target pattern")
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid target pattern %q: %w", pattern, err)
	}
	return &PrefixMatcher{re: re}, nil
}

// Match reports whether filename starts with a match of the pattern.
func (m *PrefixMatcher) Match(filename string) bool {
	return m.re.MatchString(filename)
}

// String returns the anchored expression.
func (m *PrefixMatcher) String() string {
	return m.re.String()
}

// GlobMatcher matches the whole filename against a doublestar glob such as
// "cmd/release/*.json" or "**/version.go".
type GlobMatcher struct {
	pattern string
}

// NewGlobMatcher validates pattern and returns a GlobMatcher for it.
func NewGlobMatcher(pattern string) (*GlobMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty target glob")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid target glob %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return &GlobMatcher{pattern: pattern}, nil
}

// Match reports whether filename matches the glob.
func (m *GlobMatcher) Match(filename string) bool {
	ok, err := doublestar.Match(m.pattern, filename)
	return err == nil && ok
}

// String returns the glob.
func (m *GlobMatcher) String() string {
	return m.pattern
}
