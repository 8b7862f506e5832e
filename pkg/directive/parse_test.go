package directive

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestParseKeywordType(t *testing.T) {
	t.Parallel()

	for _, et := range EntryTypes() {
		t.Run(et.String(), func(t *testing.T) {
			t.Parallel()
			got, err := ParseKeyword("type=" + et.String())
			require.NoError(t, err)
			assert.Equal(t, TypeKeyword{Type: et}, got)
		})
	}

	rejected := []string{"", "directory", "di", "Dir", "FILE", "symlink", "sock", "fil"}
	for _, lit := range rejected {
		t.Run("rejects "+strconv.Quote(lit), func(t *testing.T) {
			t.Parallel()
			_, err := ParseKeyword("type=" + lit)
			require.ErrorIs(t, err, ErrUnknownType)
		})
	}
}

func TestParseKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Keyword
		wantErr error
	}{
		{
			name:  "uid zero",
			input: "uid=0",
			want:  UIDKeyword{UID: 0},
		},
		{
			name:  "uid max",
			input: "uid=4294967295",
			want:  UIDKeyword{UID: math.MaxUint32},
		},
		{
			name:    "uid overflow",
			input:   "uid=4294967296",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "uid empty",
			input:   "uid=",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "uid negative",
			input:   "uid=-1",
			wantErr: ErrInvalidInteger,
		},
		{
			name:  "size",
			input: "size=384",
			want:  SizeKeyword{Size: 384},
		},
		{
			name:  "size max",
			input: "size=18446744073709551615",
			want:  SizeKeyword{Size: math.MaxUint64},
		},
		{
			name:    "size overflow",
			input:   "size=18446744073709551616",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "size with suffix",
			input:   "size=12k",
			wantErr: ErrTrailingInput,
		},
		{
			name:  "time whole seconds",
			input: "time=1630456800.0",
			want:  TimeKeyword{Time: time.Unix(1630456800, 0).UTC()},
		},
		{
			name:  "time with nanoseconds",
			input: "time=1769640177.434772208",
			want:  TimeKeyword{Time: time.Unix(1769640177, 434772208).UTC()},
		},
		{
			name:  "time before epoch",
			input: "time=-86400.5",
			want:  TimeKeyword{Time: time.Unix(-86400, 5).UTC()},
		},
		{
			name:  "time explicit plus",
			input: "time=+10.999999999",
			want:  TimeKeyword{Time: time.Unix(10, 999999999).UTC()},
		},
		{
			name:    "time nanoseconds out of range",
			input:   "time=1630456800.1000000000",
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "time nanoseconds overflow uint32",
			input:   "time=1630456800.4294967296",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "time seconds overflow int64",
			input:   "time=9223372036854775808.0",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "time seconds beyond representable range",
			input:   "time=9223372036854775807.0",
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "time missing separator",
			input:   "time=1630456800",
			wantErr: ErrSyntax,
		},
		{
			name:    "time missing nanoseconds",
			input:   "time=1630456800.",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "time missing seconds",
			input:   "time=.5",
			wantErr: ErrInvalidInteger,
		},
		{
			name:  "sha256",
			input: "sha256=" + _emptySHA256,
			want:  SHA256Keyword{Digest: _emptySHA256},
		},
		{
			name:  "sha256digest",
			input: "sha256digest=" + _emptySHA256,
			want:  SHA256Keyword{Digest: _emptySHA256},
		},
		{
			name:    "sha256 too short",
			input:   "sha256=abc123",
			wantErr: ErrInvalidDigest,
		},
		{
			name:    "sha256 uppercase",
			input:   "sha256=E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855",
			wantErr: ErrInvalidDigest,
		},
		{
			name:    "sha256 non hex",
			input:   "sha256=g3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			wantErr: ErrInvalidDigest,
		},
		{
			name:    "sha256 empty",
			input:   "sha256=",
			wantErr: ErrInvalidDigest,
		},
		{
			name:  "link plain",
			input: "link=foo.bar",
			want:  LinkKeyword{Target: "foo.bar"},
		},
		{
			name:  "link dot relative",
			input: "link=./foo.bar",
			want:  LinkKeyword{Target: "./foo.bar"},
		},
		{
			name:  "link parent relative",
			input: "link=../../foo.bar",
			want:  LinkKeyword{Target: "../../foo.bar"},
		},
		{
			name:  "link absolute",
			input: "link=/usr/lib/libc.so.6",
			want:  LinkKeyword{Target: "/usr/lib/libc.so.6"},
		},
		{
			name:    "link empty",
			input:   "link=",
			wantErr: ErrSyntax,
		},
		{
			name:    "unknown keyword",
			input:   "mode=0755",
			wantErr: ErrUnknownKeyword,
		},
		{
			name:    "missing equals",
			input:   "size 10",
			wantErr: ErrSyntax,
		},
		{
			name:    "uppercase name",
			input:   "SIZE=10",
			wantErr: ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKeyword(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSHA256SpellingsAreEquivalent(t *testing.T) {
	t.Parallel()

	short, err := ParseKeyword("sha256=" + _emptySHA256)
	require.NoError(t, err)
	long, err := ParseKeyword("sha256digest=" + _emptySHA256)
	require.NoError(t, err)
	assert.Equal(t, short, long)
	assert.Equal(t, "sha256:"+_emptySHA256, long.(SHA256Keyword).OCIDigest().String())
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []Keyword
		wantErr error
	}{
		{
			name:  "empty",
			input: "",
			want:  []Keyword{},
		},
		{
			name:  "single",
			input: "uid=0",
			want:  []Keyword{UIDKeyword{UID: 0}},
		},
		{
			name:  "order preserved",
			input: "type=dir size=384 time=1769640373.412526597",
			want: []Keyword{
				TypeKeyword{Type: TypeDir},
				SizeKeyword{Size: 384},
				TimeKeyword{Time: time.Unix(1769640373, 412526597).UTC()},
			},
		},
		{
			name:  "duplicates kept",
			input: "size=1 size=2",
			want:  []Keyword{SizeKeyword{Size: 1}, SizeKeyword{Size: 2}},
		},
		{
			name:  "tabs and runs of spaces separate",
			input: "type=link \t  link=../target",
			want:  []Keyword{TypeKeyword{Type: TypeLink}, LinkKeyword{Target: "../target"}},
		},
		{
			name:    "adjacent keywords",
			input:   "size=1uid=2",
			wantErr: ErrTrailingInput,
		},
		{
			name:    "adjacent type keywords",
			input:   "type=dirsize=1",
			wantErr: ErrUnknownType,
		},
		{
			name:    "leading whitespace",
			input:   " size=1",
			wantErr: ErrSyntax,
		},
		{
			name:    "trailing whitespace",
			input:   "size=1 ",
			wantErr: ErrTrailingInput,
		},
		{
			name:    "bad second keyword",
			input:   "size=1 flags=none",
			wantErr: ErrUnknownKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKeywords(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		want       Command
		wantErr    error
		wantOffset int
	}{
		{
			name:  "set",
			input: "/set type=dir size=384 time=1769640373.412526597",
			want: Set{Keywords: []Keyword{
				TypeKeyword{Type: TypeDir},
				SizeKeyword{Size: 384},
				TimeKeyword{Time: time.Unix(1769640373, 412526597).UTC()},
			}},
		},
		{
			name:  "set every keyword",
			input: "/set type=file uid=1000 time=0.0 size=0 sha256digest=" + _emptySHA256 + " link=x",
			want: Set{Keywords: []Keyword{
				TypeKeyword{Type: TypeFile},
				UIDKeyword{UID: 1000},
				TimeKeyword{Time: time.Unix(0, 0).UTC()},
				SizeKeyword{Size: 0},
				SHA256Keyword{Digest: _emptySHA256},
				LinkKeyword{Target: "x"},
			}},
		},
		{
			name:  "unset",
			input: "/unset",
			want:  Unset{},
		},
		{
			name:       "set glued to word",
			input:      "/setx",
			wantErr:    ErrSyntax,
			wantOffset: 4,
		},
		{
			name:       "set without keywords",
			input:      "/set",
			wantErr:    ErrSyntax,
			wantOffset: 4,
		},
		{
			name:       "set with only whitespace",
			input:      "/set  ",
			wantErr:    ErrSyntax,
			wantOffset: 6,
		},
		{
			name:       "missing sentinel",
			input:      "set type=dir",
			wantErr:    ErrSyntax,
			wantOffset: 0,
		},
		{
			name:       "unknown directive",
			input:      "/reset",
			wantErr:    ErrSyntax,
			wantOffset: 1,
		},
		{
			name:       "unset with garbage",
			input:      "/unset type=dir",
			wantErr:    ErrTrailingInput,
			wantOffset: 6,
		},
		{
			name:       "trailing garbage after keywords",
			input:      "/set type=dir)",
			wantErr:    ErrUnknownType,
			wantOffset: 10,
		},
		{
			name:       "unknown keyword offset",
			input:      "/set type=dir gid=0",
			wantErr:    ErrUnknownKeyword,
			wantOffset: 14,
		},
		{
			name:       "bad timestamp offset",
			input:      "/set time=1.1000000000",
			wantErr:    ErrInvalidTimestamp,
			wantOffset: 10,
		},
		{
			name:       "empty line",
			input:      "",
			wantErr:    ErrSyntax,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCommand(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantOffset, pe.Offset)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Entry
		wantErr error
	}{
		{
			name:  "bare path",
			input: "./etc",
			want:  Entry{Path: "./etc", Keywords: []Keyword{}},
		},
		{
			name:  "path with keywords",
			input: "./etc/hosts type=file size=12",
			want: Entry{
				Path:     "./etc/hosts",
				Keywords: []Keyword{TypeKeyword{Type: TypeFile}, SizeKeyword{Size: 12}},
			},
		},
		{
			name:    "directive is not an entry",
			input:   "/set type=dir",
			wantErr: ErrSyntax,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrSyntax,
		},
		{
			name:    "trailing whitespace",
			input:   "./etc ",
			wantErr: ErrTrailingInput,
		},
		{
			name:    "bad keyword",
			input:   "./etc type=folder",
			wantErr: ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseEntry(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	t.Parallel()

	_, err := ParseCommand("/set uid=x")
	require.Error(t, err)
	assert.Equal(t, `offset 9: expected decimal digits, found "x": invalid integer`, err.Error())

	_, err = ParseCommand("/set")
	require.Error(t, err)
	assert.Equal(t, "offset 4: expected whitespace, found end of input: syntax error", err.Error())

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Found)
}
