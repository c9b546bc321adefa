// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[int]string
		errMsg  string
	}{
		{
			name: "cleans and upper-cases letters",
			content: `year: 2010
subject: 机电工程
answers:
  21: bde
  22: "B, D, E"
  30: BDE
`,
			want: map[int]string{21: "BDE", 22: "BDE", 30: "BDE"},
		},
		{
			name: "drops entries with no usable letters",
			content: `year: 2012
subject: 建筑工程
answers:
  1: A
  2: "??"
`,
			want: map[int]string{1: "A"},
		},
		{
			name:    "errors on missing answers",
			content: "year: 2010\nsubject: 机电工程\n",
			errMsg:  "no answers",
		},
		{
			name:    "errors on malformed yaml",
			content: "answers: [not, a, map",
			errMsg:  "parsing overrides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "overrides.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := Load(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading overrides")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, "2010-jidian.yaml", `year: 2010
subject: 机电工程
answers:
  21: BDE
`)
	writeOverride(t, dir, "2011-shizheng.yml", `year: 2011
subject: 市政工程
answers:
  5: ACD
`)
	writeOverride(t, dir, "notes.txt", "not an override")
	writeOverride(t, dir, ".hidden.yaml", "answers: {1: A}")
	writeOverride(t, dir, "broken.yaml", "answers: [")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[int]string{
		"2010-jidian":   {21: "BDE"},
		"2011-shizheng": {5: "ACD"},
	}, got)
}

func TestLoadDirMissing(t *testing.T) {
	got, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func writeOverride(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
