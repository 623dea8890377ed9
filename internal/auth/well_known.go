package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kanade-dev/extrepo/internal/config"
)

// ProtectedResourcePath is where the RFC 9728 metadata is served
const ProtectedResourcePath = "/.well-known/oauth-protected-resource"

// protectedResourceMetadata is RFC 9728 OAuth 2.0 Protected Resource Metadata
type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
}

// newProtectedResourceHandler requires a resource URL and at least one authorization server
func newProtectedResourceHandler(
	resourceURL string,
	authorizationServers []string,
	scopes []string,
) (http.Handler, error) {
	if resourceURL == "" {
		return nil, errors.New("resourceURL is required")
	}
	if len(authorizationServers) == 0 {
		return nil, errors.New("at least one authorization server is required")
	}
	if len(scopes) == 0 {
		scopes = append([]string{}, config.DefaultScopes...)
	}

	data, err := json.Marshal(protectedResourceMetadata{
		Resource:               resourceURL,
		AuthorizationServers:   authorizationServers,
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        scopes,
	})
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			slog.DebugContext(r.Context(), "auth: failed to write protected resource metadata", "error", err)
		}
	}), nil
}
