package sources_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade-dev/extrepo/internal/sources"
)

const sampleIndex = `[
  {
    "name": "Tachiyomi: MangaDex",
    "pkg": "eu.kanade.tachiyomi.extension.all.mangadex",
    "apk": "tachiyomi-all.mangadex-v1.4.190.apk",
    "lang": "all",
    "code": 190,
    "version": "1.4.190",
    "nsfw": 1,
    "sources": [
      {"name": "MangaDex", "lang": "en", "id": "2499283573021220255", "baseUrl": "https://mangadex.org"},
      {"name": "MangaDex", "lang": "ja", "id": 1411768577036936240, "baseUrl": "https://mangadex.org"}
    ]
  },
  {
    "name": "Tachiyomi: Example",
    "pkg": "eu.kanade.tachiyomi.extension.en.example",
    "apk": "tachiyomi-en.example-v1.5.3.apk",
    "lang": "en",
    "code": 3,
    "version": "1.5.3",
    "nsfw": 0
  },
  {"name": "Broken", "pkg": "eu.kanade.tachiyomi.extension.en.broken"}
]`

func TestParseIndex(t *testing.T) {
	t.Parallel()

	entries, skipped, err := sources.ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "Tachiyomi: MangaDex", first.Name)
	assert.Equal(t, int64(190), first.Code)
	assert.Equal(t, 1, first.NSFW)
	require.Len(t, first.Sources, 2)
	assert.Equal(t, int64(2499283573021220255), first.Sources[0].ID)
	assert.Equal(t, int64(1411768577036936240), first.Sources[1].ID)

	assert.Empty(t, entries[1].Sources)
}

func TestParseIndex_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "object instead of array", body: `{"extensions":[]}`},
		{name: "malformed json", body: `[{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := sources.ParseIndex([]byte(tt.body))
			require.ErrorIs(t, err, sources.ErrInvalidIndex)
		})
	}
}

func TestHTTPIndexFetcher(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repo/index.min.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleIndex))
	}))
	defer server.Close()

	fetcher := sources.NewIndexFetcher(newTestClient())

	entries, err := fetcher.FetchIndex(context.Background(), server.URL+"/repo")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = fetcher.FetchIndex(context.Background(), server.URL+"/other")
	require.Error(t, err)
}
