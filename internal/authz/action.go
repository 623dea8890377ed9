package authz

import (
	"net/http"
	"strings"

	"github.com/kanade-dev/extrepo/internal/config"
)

const (
	reposPath   = "/v1/repos"
	refreshPath = "/v1/repos/refresh"
	updatesPath = "/v1/extensions/updates"
)

// RouteAction returns the action an API request requires.
// Unknown mutating requests require admin.
func RouteAction(method, path string) string {
	path = strings.TrimSuffix(path, "/")

	switch {
	case method == http.MethodGet || method == http.MethodHead:
		return config.ActionRead
	case method == http.MethodPost && path == updatesPath:
		return config.ActionRead
	case method == http.MethodPost && path == refreshPath:
		return config.ActionAdmin
	case path == reposPath || strings.HasPrefix(path, reposPath+"/"):
		switch method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			return config.ActionWrite
		}
	}
	return config.ActionAdmin
}

// targetRepo returns the repository a request names through its baseUrl query parameter
func targetRepo(r *http.Request) string {
	return r.URL.Query().Get("baseUrl")
}
