package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/internal/repo"
)

// HTTPIndexFetcher reads {baseURL}/index.min.json over HTTP
type HTTPIndexFetcher struct {
	client httpclient.Client
}

// NewIndexFetcher creates an IndexFetcher using client
func NewIndexFetcher(client httpclient.Client) *HTTPIndexFetcher {
	return &HTTPIndexFetcher{client: client}
}

// FetchIndex fetches and parses the extension listing for baseURL
func (f *HTTPIndexFetcher) FetchIndex(ctx context.Context, baseURL string) ([]IndexEntry, error) {
	url := baseURL + "/" + repo.IndexFileName

	data, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	entries, skipped, err := ParseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	if skipped > 0 {
		slog.DebugContext(ctx, "Skipped malformed index entries", "repo", baseURL, "skipped", skipped)
	}
	return entries, nil
}

// ParseIndex parses an index.min.json document. Entries missing a required
// field are skipped and counted; a document that is not a JSON array fails.
// Source ids are accepted both as numbers and as quoted numbers.
func ParseIndex(data []byte) ([]IndexEntry, int, error) {
	if !gjson.ValidBytes(data) {
		return nil, 0, fmt.Errorf("%w: malformed JSON", ErrInvalidIndex)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, 0, fmt.Errorf("%w: expected a JSON array", ErrInvalidIndex)
	}

	var (
		entries []IndexEntry
		skipped int
	)
	doc.ForEach(func(_, item gjson.Result) bool {
		entry, ok := parseIndexEntry(item)
		if !ok {
			skipped++
			return true
		}
		entries = append(entries, entry)
		return true
	})

	return entries, skipped, nil
}

func parseIndexEntry(item gjson.Result) (IndexEntry, bool) {
	if !item.IsObject() {
		return IndexEntry{}, false
	}

	for _, key := range []string{"name", "pkg", "apk", "lang", "code", "version", "nsfw"} {
		if !isScalar(item.Get(key)) {
			return IndexEntry{}, false
		}
	}

	entry := IndexEntry{
		Name:    item.Get("name").String(),
		Pkg:     item.Get("pkg").String(),
		APK:     item.Get("apk").String(),
		Lang:    item.Get("lang").String(),
		Code:    item.Get("code").Int(),
		Version: item.Get("version").String(),
		NSFW:    int(item.Get("nsfw").Int()),
	}

	item.Get("sources").ForEach(func(_, s gjson.Result) bool {
		entry.Sources = append(entry.Sources, IndexSource{
			Name:    s.Get("name").String(),
			Lang:    s.Get("lang").String(),
			ID:      s.Get("id").Int(),
			BaseURL: s.Get("baseUrl").String(),
		})
		return true
	})

	return entry, true
}
