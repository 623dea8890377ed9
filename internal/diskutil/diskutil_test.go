package diskutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKeyForDisk(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", HashKeyForDisk(""))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", HashKeyForDisk("hello"))
}

func TestBuildValidFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "extension.apk", want: "extension.apk"},
		{name: "trims dots and spaces", in: " ..hidden. ", want: "hidden"},
		{name: "empty", in: "", want: InvalidFilename},
		{name: "only dots", in: "...", want: InvalidFilename},
		{name: "reserved characters", in: `a"b*c/d:e<f>g?h\i|j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "control characters", in: "a\tb\x00c\x7f", want: "a_b_c_"},
		{name: "unicode kept", in: "漫画 ñ", want: "漫画 ñ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildValidFilename(tt.in))
		})
	}
}

func TestBuildValidFilenameTruncatesRunes(t *testing.T) {
	t.Parallel()
	got := BuildValidFilename(strings.Repeat("é", 300))
	assert.Equal(t, MaxFilenameLength, len([]rune(got)))
}

func TestDirectorySize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 20), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "deeper", "c"), make([]byte, 5), 0o600))

	size, err := DirectorySize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(35), size)

	size, err = DirectorySize(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	_, err = DirectorySize(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
