package authz_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kanade-dev/extrepo/internal/auth"
	"github.com/kanade-dev/extrepo/internal/authz"
	"github.com/kanade-dev/extrepo/internal/authz/mocks"
	"github.com/kanade-dev/extrepo/internal/config"
)

func request(method, target string, claims jwt.MapClaims) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	if claims != nil {
		r = r.WithContext(auth.WithClaims(r.Context(), claims))
	}
	return r
}

func serve(mw func(http.Handler) http.Handler, r *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, r)
	return rr, called
}

func TestMiddleware_PassesUnauthenticatedRequests(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mw := authz.Middleware(mocks.NewMockAuthorizer(ctrl), config.DefaultScopeMapping)

	rr, called := serve(mw, request(http.MethodGet, "/v1/repos", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_Decisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		decision   authz.Decision
		err        error
		wantStatus int
	}{
		{"allowed", authz.Decision{Allowed: true, Reasons: []string{"policy0"}}, nil, http.StatusOK},
		{"denied", authz.Decision{}, nil, http.StatusForbidden},
		{"evaluation error", authz.Decision{}, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			authorizer := mocks.NewMockAuthorizer(ctrl)
			authorizer.EXPECT().Authorize(gomock.Any(), authz.Request{
				GrantedActions: []string{"read"},
				Action:         "write",
				RepoBaseURL:    "https://example.com/repo",
			}).Return(tt.decision, tt.err)

			mw := authz.Middleware(authorizer, config.DefaultScopeMapping)
			r := request(http.MethodDelete, "/v1/repos?baseUrl=https://example.com/repo",
				jwt.MapClaims{"sub": "user", "scope": "extrepo:read"})

			rr, called := serve(mw, r)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestMiddleware_ForbiddenBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	authorizer := mocks.NewMockAuthorizer(ctrl)
	authorizer.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(authz.Decision{}, nil)

	mw := authz.Middleware(authorizer, config.DefaultScopeMapping)
	rr, _ := serve(mw, request(http.MethodPost, "/v1/repos/refresh", jwt.MapClaims{"scope": "extrepo:read"}))
	require.Equal(t, http.StatusForbidden, rr.Code)

	var body authz.ForbiddenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body.Error)
	require.NotNil(t, body.Details)
	assert.Equal(t, "admin", body.Details.RequiredAction)
	assert.Equal(t, []string{"extrepo:read"}, body.Details.UserScopes)
	assert.Contains(t, body.Details.Hint, "extrepo:admin")
}

func TestNewMiddleware_Cedar(t *testing.T) {
	t.Parallel()

	mw, err := authz.NewMiddleware(&config.AuthzConfig{})
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		target     string
		scope      string
		wantStatus int
	}{
		{"reader lists", http.MethodGet, "/v1/repos", "extrepo:read", http.StatusOK},
		{"reader cannot add", http.MethodPost, "/v1/repos", "extrepo:read", http.StatusForbidden},
		{"writer adds", http.MethodPost, "/v1/repos", "extrepo:write", http.StatusOK},
		{"writer cannot refresh", http.MethodPost, "/v1/repos/refresh", "extrepo:write", http.StatusForbidden},
		{"admin refreshes", http.MethodPost, "/v1/repos/refresh", "extrepo:admin", http.StatusOK},
		{"no scopes", http.MethodGet, "/v1/repos", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr, _ := serve(mw, request(tt.method, tt.target, jwt.MapClaims{"sub": "user", "scope": tt.scope}))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestNewMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	mw, err := authz.NewMiddleware(nil)
	require.NoError(t, err)

	rr, called := serve(mw, request(http.MethodPost, "/v1/repos/refresh", jwt.MapClaims{}))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewMiddleware_BadPolicyFile(t *testing.T) {
	t.Parallel()

	_, err := authz.NewMiddleware(&config.AuthzConfig{PolicyFile: "/nonexistent/policies.cedar"})
	require.Error(t, err)
}
