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

package release

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gateerrors "github.com/sirseerhq/sirseer-gate/internal/errors"
)

func writeInfo(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "release_info.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadInfo(t *testing.T) {
	path := writeInfo(t, `{
  "version": "1.13.2",
  "quay-image": "quay.io/redhat-certification/chart-verifier",
  "release-info": ["Fix signed chart check", "Bump helm"]
}`)

	info, err := LoadInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "1.13.2", info.Version)
	assert.Equal(t, "quay.io/redhat-certification/chart-verifier", info.Image)
	assert.Equal(t, []string{"Fix signed chart check", "Bump helm"}, info.Notes)
}

func TestLoadInfo_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadInfo(filepath.Join(t.TempDir(), "release_info.json"))
		assert.ErrorIs(t, err, gateerrors.ErrFileNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadInfo(writeInfo(t, `{"version": `))
		require.Error(t, err)
		assert.NotErrorIs(t, err, gateerrors.ErrFileNotFound)
	})

	t.Run("no version", func(t *testing.T) {
		_, err := LoadInfo(writeInfo(t, `{"quay-image": "quay.io/x/y"}`))
		assert.ErrorContains(t, err, "no version")
	})
}

func TestBody(t *testing.T) {
	info := &Info{
		Version: "1.2.0",
		Image:   "quay.io/org/verifier",
		Notes:   []string{"first", "second"},
	}

	want := "Chart verifier version 1.2.0 <br><br>Docker Image:<br>- quay.io/org/verifier:1.2.0<br><br>" +
		"This version includes:<br>- first<br>- second<br>"
	assert.Equal(t, want, Body(info))
}

func TestNotesString(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		want  string
	}{
		{name: "empty", want: "[]"},
		{name: "plain", notes: []string{"a", "b"}, want: "['a', 'b']"},
		{name: "single quote switches to double quotes", notes: []string{"don't"}, want: `["don't"]`},
		{name: "double quote stays single quoted", notes: []string{`say "hi"`}, want: `['say "hi"']`},
		{name: "both quotes escape the single quote", notes: []string{`it's "x"`}, want: `['it\'s "x"']`},
		{name: "backslash", notes: []string{`C:\dir`}, want: `['C:\\dir']`},
		{name: "control characters", notes: []string{"a\tb\nc\x01"}, want: `['a\tb\nc\x01']`},
		{name: "unicode is kept", notes: []string{"café"}, want: "['café']"},
		{name: "mixed", notes: []string{"fix", "can't fail"}, want: `['fix', "can't fail"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Info{Notes: tt.notes}).NotesString())
		})
	}
}
