package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr error
	}{
		{
			name:  "empty file",
			input: ``,
			want:  Config{},
		},
		{
			name: "all fields",
			input: `log-level "debug"
				format "json"
				parallelism 4
				exclude "var/cache" "**/*.tmp"`,
			want: Config{
				LogLevel:    "debug",
				Format:      "json",
				Parallelism: 4,
				Exclude:     []string{"var/cache", "**/*.tmp"},
			},
		},
		{
			name: "exclude may repeat",
			input: `exclude "a"
				exclude "b"`,
			want: Config{Exclude: []string{"a", "b"}},
		},
		{
			name:    "unknown node",
			input:   `colour "always"`,
			wantErr: ErrUnknownNode,
		},
		{
			name: "duplicate field",
			input: `format "json"
				format "text"`,
			wantErr: ErrDuplicateField,
		},
		{
			name:    "missing value",
			input:   `format`,
			wantErr: ErrMissingField,
		},
		{
			name:    "extra arguments",
			input:   `log-level "info" "debug"`,
			wantErr: ErrExtraArgs,
		},
		{
			name:    "string where integer expected",
			input:   `parallelism "4"`,
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "integer where string expected",
			input:   `format 1`,
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "empty exclude",
			input:   `exclude`,
			wantErr: ErrMissingField,
		},
		{
			name:    "invalid format value",
			input:   `format "yaml"`,
			wantErr: errdefs.ErrInvalidArgument,
		},
		{
			name:    "invalid log level",
			input:   `log-level "loud"`,
			wantErr: errdefs.ErrInvalidArgument,
		},
		{
			name:    "negative parallelism",
			input:   `parallelism -1`,
			wantErr: errdefs.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseString(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultFile)
		require.NoError(t, os.WriteFile(path, []byte("format \"text\"\n"), 0o644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Config{Format: "text"}, c)
	})

	t.Run("missing file is not found", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), DefaultFile))
		require.Error(t, err)
		assert.True(t, errdefs.IsNotFound(err))
	})

	t.Run("invalid value is invalid argument", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultFile)
		require.NoError(t, os.WriteFile(path, []byte("parallelism -3\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidArgument(err))
	})
}
