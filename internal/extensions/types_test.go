package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    float64
		wantErr bool
	}{
		{version: "1.4.12", want: 1.4},
		{version: "1.5.0", want: 1.5},
		{version: "1.3", want: 1},
		{version: "10", wantErr: true},
		{version: "a.b.c", wantErr: true},
		{version: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			got, err := LibVersion(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestURLs(t *testing.T) {
	t.Parallel()
	base := "https://repo.example.com/ext"
	assert.Equal(t, "https://repo.example.com/ext/apk/tachiyomi-en.foo-v1.4.2.apk", APKURL(base, "tachiyomi-en.foo-v1.4.2.apk"))
	assert.Equal(t, "https://repo.example.com/ext/icon/eu.kanade.foo.png", IconURL(base, "eu.kanade.foo"))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "MangaDex", displayName("Tachiyomi: MangaDex"))
	assert.Equal(t, "MangaDex", displayName("MangaDex"))
}

func TestHasUpdate(t *testing.T) {
	t.Parallel()

	available := Available{PkgName: "pkg", VersionCode: 10, LibVersion: 1.4}
	tests := []struct {
		name      string
		installed Installed
		want      bool
	}{
		{name: "newer code", installed: Installed{VersionCode: 9, LibVersion: 1.4}, want: true},
		{name: "newer lib", installed: Installed{VersionCode: 10, LibVersion: 1.3}, want: true},
		{name: "same", installed: Installed{VersionCode: 10, LibVersion: 1.4}},
		{name: "installed newer", installed: Installed{VersionCode: 11, LibVersion: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, available.HasUpdate(tt.installed))
		})
	}
}
