// Package helpers provides the fixtures used by the integration suite.
package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// HostedSource is a content source listed in an index entry
type HostedSource struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	ID      string `json:"id"`
	BaseURL string `json:"baseUrl"`
}

// HostedExtension is one entry of a hosted index.min.json
type HostedExtension struct {
	Name    string         `json:"name"`
	Pkg     string         `json:"pkg"`
	APK     string         `json:"apk"`
	Lang    string         `json:"lang"`
	Code    int64          `json:"code"`
	Version string         `json:"version"`
	NSFW    int            `json:"nsfw"`
	Sources []HostedSource `json:"sources,omitempty"`
}

// HostedRepo is the content of one repository on the host
type HostedRepo struct {
	Name        string
	ShortName   string
	Website     string
	Fingerprint string
	Extensions  []HostedExtension
	APKs        map[string][]byte
}

// RepoHost serves extension repositories over TLS the way a static file host does.
// Each repository lives under /{name}/.
type RepoHost struct {
	server *httptest.Server

	mu    sync.RWMutex
	repos map[string]HostedRepo
}

// NewRepoHost starts a TLS host with no repositories
func NewRepoHost() *RepoHost {
	h := &RepoHost{repos: make(map[string]HostedRepo)}

	r := chi.NewRouter()
	r.Get("/{repo}/repo.json", h.serveDetails)
	r.Get("/{repo}/index.min.json", h.serveIndex)
	r.Get("/{repo}/apk/{apk}", h.serveAPK)

	h.server = httptest.NewTLSServer(r)
	h.server.Config.SetKeepAlivesEnabled(false)
	return h
}

// Put publishes or replaces the repository called name
func (h *RepoHost) Put(name string, repo HostedRepo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.repos[name] = repo
}

// Remove takes the repository called name offline
func (h *RepoHost) Remove(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.repos, name)
}

// BaseURL returns the base URL of the repository called name
func (h *RepoHost) BaseURL(name string) string {
	return h.server.URL + "/" + name
}

// IndexURL returns the index URL users add for the repository called name
func (h *RepoHost) IndexURL(name string) string {
	return h.BaseURL(name) + "/index.min.json"
}

// Transport returns a round tripper trusting the host's certificate
func (h *RepoHost) Transport() http.RoundTripper {
	return h.server.Client().Transport
}

// Close shuts the host down
func (h *RepoHost) Close() {
	h.server.Close()
}

func (h *RepoHost) lookup(r *http.Request) (HostedRepo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	repo, ok := h.repos[chi.URLParam(r, "repo")]
	return repo, ok
}

func (h *RepoHost) serveDetails(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	meta := map[string]string{
		"name":                  repo.Name,
		"website":               repo.Website,
		"signingKeyFingerprint": repo.Fingerprint,
	}
	if repo.ShortName != "" {
		meta["shortName"] = repo.ShortName
	}
	writeJSON(w, map[string]any{"meta": meta})
}

func (h *RepoHost) serveIndex(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	entries := repo.Extensions
	if entries == nil {
		entries = []HostedExtension{}
	}
	writeJSON(w, entries)
}

func (h *RepoHost) serveAPK(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, ok := repo.APKs[chi.URLParam(r, "apk")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.android.package-archive")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
