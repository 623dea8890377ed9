package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/internal/repo"
)

// HTTPRepoDetailsFetcher reads {baseURL}/repo.json over HTTP
type HTTPRepoDetailsFetcher struct {
	client httpclient.Client
}

// NewRepoDetailsFetcher creates a RepoDetailsFetcher using client
func NewRepoDetailsFetcher(client httpclient.Client) *HTTPRepoDetailsFetcher {
	return &HTTPRepoDetailsFetcher{client: client}
}

// FetchRepoDetails fetches and parses the descriptor for baseURL. The returned
// record carries baseURL as given, not any URL found in the document.
func (f *HTTPRepoDetailsFetcher) FetchRepoDetails(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error) {
	url := baseURL + "/" + repo.DetailsFileName

	data, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	r, err := ParseRepoDetails(baseURL, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return r, nil
}

// ParseRepoDetails builds a repository record from a repo.json document.
// name, website and signingKeyFingerprint are required string fields of meta;
// shortName is optional.
func ParseRepoDetails(baseURL string, data []byte) (*repo.ExtensionRepo, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidRepoDetails)
	}

	meta := gjson.GetBytes(data, "meta")
	if !meta.IsObject() {
		return nil, fmt.Errorf("%w: missing meta object", ErrInvalidRepoDetails)
	}

	fields := make(map[string]string, 3)
	for _, key := range []string{"name", "website", "signingKeyFingerprint"} {
		v := meta.Get(key)
		if !isScalar(v) {
			return nil, fmt.Errorf("%w: missing meta.%s", ErrInvalidRepoDetails, key)
		}
		fields[key] = v.String()
	}

	r := &repo.ExtensionRepo{
		BaseURL:               baseURL,
		Name:                  fields["name"],
		Website:               fields["website"],
		SigningKeyFingerprint: fields["signingKeyFingerprint"],
	}

	if v := meta.Get("shortName"); isScalar(v) {
		shortName := v.String()
		r.ShortName = &shortName
	}

	if strings.TrimSpace(r.SigningKeyFingerprint) == "" {
		return nil, fmt.Errorf("%w: empty meta.signingKeyFingerprint", ErrInvalidRepoDetails)
	}

	return r, nil
}

// isScalar reports whether v is a present, non-null JSON primitive
func isScalar(v gjson.Result) bool {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return true
	default:
		return false
	}
}
