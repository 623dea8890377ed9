package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/onsi/gomega"

	v1 "github.com/kanade-dev/extrepo/internal/api/v1"
	extrepoapp "github.com/kanade-dev/extrepo/internal/app"
	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/sources"
)

// ServerTestHelper manages the API server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	host       *RepoHost
	dataDir    string
	baseURL    string
	httpClient *http.Client
	app        *extrepoapp.ExtRepoApp
}

// NewServerTestHelper creates a helper whose server fetches repositories from host
func NewServerTestHelper(ctx context.Context, host *RepoHost, dataDir string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:     ctx,
		host:    host,
		dataDir: dataDir,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StartServer builds the application and serves it on a random local port
func (s *ServerTestHelper) StartServer() error {
	cfg := config.Default()
	cfg.FileStorage.BaseDir = s.dataDir
	cfg.Sync = &config.SyncConfig{Interval: "1h"}

	client := httpclient.NewDefaultClient(5*time.Second,
		httpclient.WithTransport(s.host.Transport()),
		httpclient.WithMaxTries(1),
	)

	app, err := extrepoapp.NewExtRepoApp(s.ctx,
		extrepoapp.WithConfig(cfg),
		extrepoapp.WithRepoDetailsFetcher(sources.NewRepoDetailsFetcher(client)),
		extrepoapp.WithIndexFetcher(sources.NewIndexFetcher(client)),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.baseURL = "http://" + listener.Addr().String()

	go func() {
		if err := app.Serve(listener); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the API server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to answer readiness probes
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// CreateRepo makes a POST request to /v1/repos
func (s *ServerTestHelper) CreateRepo(indexURL string) (*http.Response, error) {
	return s.send(http.MethodPost, "/v1/repos", v1.CreateRepoRequest{URL: indexURL})
}

// RenameRepo makes a POST request to /v1/repos/rename
func (s *ServerTestHelper) RenameRepo(baseURL, indexURL string) (*http.Response, error) {
	return s.send(http.MethodPost, "/v1/repos/rename", v1.RenameRepoRequest{BaseURL: baseURL, URL: indexURL})
}

// ReplaceRepo makes a PUT request to /v1/repos
func (s *ServerTestHelper) ReplaceRepo(r repo.ExtensionRepo) (*http.Response, error) {
	return s.send(http.MethodPut, "/v1/repos", r)
}

// DeleteRepo makes a DELETE request to /v1/repos
func (s *ServerTestHelper) DeleteRepo(baseURL string) (*http.Response, error) {
	return s.send(http.MethodDelete, "/v1/repos?baseUrl="+url.QueryEscape(baseURL), nil)
}

// RefreshRepos makes a POST request to /v1/repos/refresh
func (s *ServerTestHelper) RefreshRepos() (*http.Response, error) {
	return s.send(http.MethodPost, "/v1/repos/refresh", nil)
}

// ListRepos returns the stored repositories
func (s *ServerTestHelper) ListRepos() []repo.ExtensionRepo {
	return Decode[[]repo.ExtensionRepo](s.get("/v1/repos"), http.StatusOK)
}

// GetRepo makes a GET request to /v1/repos/detail
func (s *ServerTestHelper) GetRepo(baseURL string) (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/v1/repos/detail?baseUrl=" + url.QueryEscape(baseURL))
}

// CountRepos returns the number of stored repositories
func (s *ServerTestHelper) CountRepos() int {
	return Decode[v1.CountResponse](s.get("/v1/repos/count"), http.StatusOK).Count
}

// ListExtensions returns the extensions available from stored repositories
func (s *ServerTestHelper) ListExtensions() v1.ExtensionListResponse {
	return Decode[v1.ExtensionListResponse](s.get("/v1/extensions"), http.StatusOK)
}

// CheckUpdates returns the available updates for installed
func (s *ServerTestHelper) CheckUpdates(installed []extensions.Installed) v1.ExtensionListResponse {
	resp, err := s.send(http.MethodPost, "/v1/extensions/updates", installed)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return Decode[v1.ExtensionListResponse](resp, http.StatusOK)
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}

func (s *ServerTestHelper) get(path string) *http.Response {
	resp, err := s.httpClient.Get(s.baseURL + path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return resp
}

func (s *ServerTestHelper) send(method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.httpClient.Do(req)
}

// Decode checks the response status and decodes its JSON body
func Decode[T any](resp *http.Response, wantStatus int) T {
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(resp.StatusCode).To(gomega.Equal(wantStatus), "unexpected status, body: %s", string(data))

	var v T
	gomega.Expect(json.Unmarshal(data, &v)).To(gomega.Succeed())
	return v
}

// ExpectStatus checks the response status and discards the body
func ExpectStatus(resp *http.Response, err error, wantStatus int) {
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	defer func() {
		_ = resp.Body.Close()
	}()
	data, _ := io.ReadAll(resp.Body)
	gomega.Expect(resp.StatusCode).To(gomega.Equal(wantStatus), "unexpected status, body: %s", string(data))
}
