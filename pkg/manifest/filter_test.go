package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclude(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Path: "."},
		{Path: "./etc"},
		{Path: "./etc/hosts"},
		{Path: "./var/cache/apt/pkgcache.bin"},
		{Path: "./var/log/syslog"},
		{Path: "./tmp/build.tmp"},
	}

	paths := func(es []Entry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Path
		}
		return out
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "no patterns keeps everything",
			patterns: nil,
			want:     []string{".", "./etc", "./etc/hosts", "./var/cache/apt/pkgcache.bin", "./var/log/syslog", "./tmp/build.tmp"},
		},
		{
			name:     "parent directory excludes children",
			patterns: []string{"var/cache"},
			want:     []string{".", "./etc", "./etc/hosts", "./var/log/syslog", "./tmp/build.tmp"},
		},
		{
			name:     "glob",
			patterns: []string{"**/*.tmp"},
			want:     []string{".", "./etc", "./etc/hosts", "./var/cache/apt/pkgcache.bin", "./var/log/syslog"},
		},
		{
			name:     "exception",
			patterns: []string{"var", "!var/log"},
			want:     []string{".", "./etc", "./etc/hosts", "./var/log/syslog", "./tmp/build.tmp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Exclude(entries, tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths(got))
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := Exclude(entries, []string{"["})
		require.Error(t, err)
	})
}
