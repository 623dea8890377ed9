package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/internal/sources"
)

func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func newTestClient() httpclient.Client {
	return httpclient.NewDefaultClient(5*time.Second,
		httpclient.WithMaxTries(1),
	)
}

func TestParseRepoDetails(t *testing.T) {
	t.Parallel()

	const base = "https://example.org/repo"

	tests := []struct {
		name          string
		body          string
		wantErr       bool
		wantShortName *string
	}{
		{
			name:          "full descriptor",
			body:          `{"meta":{"name":"Example Repo","shortName":"ex","website":"https://example.org","signingKeyFingerprint":"AB12"}}`,
			wantShortName: func() *string { s := "ex"; return &s }(),
		},
		{
			name: "short name is optional",
			body: `{"meta":{"name":"Example Repo","website":"https://example.org","signingKeyFingerprint":"AB12"}}`,
		},
		{
			name: "null short name is treated as absent",
			body: `{"meta":{"name":"Example Repo","shortName":null,"website":"https://example.org","signingKeyFingerprint":"AB12"}}`,
		},
		{name: "missing meta", body: `{"name":"Example Repo"}`, wantErr: true},
		{name: "meta is not an object", body: `{"meta":"nope"}`, wantErr: true},
		{name: "missing name", body: `{"meta":{"website":"https://example.org","signingKeyFingerprint":"AB12"}}`, wantErr: true},
		{name: "missing website", body: `{"meta":{"name":"Example Repo","signingKeyFingerprint":"AB12"}}`, wantErr: true},
		{name: "missing fingerprint", body: `{"meta":{"name":"Example Repo","website":"https://example.org"}}`, wantErr: true},
		{name: "blank fingerprint", body: `{"meta":{"name":"Example Repo","website":"https://example.org","signingKeyFingerprint":"  "}}`, wantErr: true},
		{name: "malformed json", body: `{"meta":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := sources.ParseRepoDetails(base, []byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, sources.ErrInvalidRepoDetails)
				assert.Nil(t, r)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, base, r.BaseURL)
			assert.Equal(t, "Example Repo", r.Name)
			assert.Equal(t, "https://example.org", r.Website)
			assert.Equal(t, "AB12", r.SigningKeyFingerprint)
			assert.Equal(t, tt.wantShortName, r.ShortName)
		})
	}
}

func TestHTTPRepoDetailsFetcher(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good/repo.json":
			_, _ = w.Write([]byte(`{"meta":{"name":"Good","website":"https://good.example","signingKeyFingerprint":"FP1"}}`))
		case "/bad/repo.json":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	fetcher := sources.NewRepoDetailsFetcher(newTestClient())
	ctx := context.Background()

	t.Run("fetches and parses descriptor", func(t *testing.T) {
		t.Parallel()
		r, err := fetcher.FetchRepoDetails(ctx, server.URL+"/good")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/good", r.BaseURL)
		assert.Equal(t, "FP1", r.SigningKeyFingerprint)
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		t.Parallel()
		_, err := fetcher.FetchRepoDetails(ctx, server.URL+"/bad")
		require.ErrorIs(t, err, sources.ErrInvalidRepoDetails)
	})

	t.Run("missing descriptor", func(t *testing.T) {
		t.Parallel()
		_, err := fetcher.FetchRepoDetails(ctx, server.URL+"/missing")
		require.Error(t, err)
		assert.True(t, httpclient.IsNotFound(err))
	})
}
