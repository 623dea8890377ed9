package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kanade-dev/extrepo/internal/auth/mocks"
	"github.com/kanade-dev/extrepo/internal/config"
)

func oauthConfig(resourceURL string) *config.AuthConfig {
	return &config.AuthConfig{
		Mode: config.AuthModeOAuth,
		OAuth: &config.OAuthConfig{
			ResourceURL: resourceURL,
			Providers:   singleProvider(),
		},
	}
}

func TestNewAuthMiddleware(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockFactory := func(_ context.Context, _ config.OAuthProviderConfig) (TokenValidator, error) {
		return mocks.NewMockTokenValidator(ctrl), nil
	}

	tests := []struct {
		name        string
		config      *config.AuthConfig
		wantErr     string
		wantHandler bool
	}{
		{name: "nil config returns anonymous"},
		{name: "empty mode returns anonymous", config: &config.AuthConfig{}},
		{name: "explicit anonymous mode", config: &config.AuthConfig{Mode: config.AuthModeAnonymous}},
		{name: "unsupported mode", config: &config.AuthConfig{Mode: "custom"}, wantErr: "unsupported auth mode"},
		{
			name:    "oauth without section",
			config:  &config.AuthConfig{Mode: config.AuthModeOAuth},
			wantErr: "oauth configuration is required",
		},
		{
			name:    "oauth without providers",
			config:  &config.AuthConfig{Mode: config.AuthModeOAuth, OAuth: &config.OAuthConfig{}},
			wantErr: "at least one provider",
		},
		{name: "oauth without resource url", config: oauthConfig("")},
		{name: "oauth with resource url", config: oauthConfig("https://extrepo.example.com"), wantHandler: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw, handler, err := NewAuthMiddleware(context.Background(), tt.config, mockFactory)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, mw)
			assert.Equal(t, tt.wantHandler, handler != nil)
		})
	}
}

func TestAnonymousMiddleware(t *testing.T) {
	t.Parallel()

	called := false
	rr := httptest.NewRecorder()
	anonymousMiddleware(okHandler(&called)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/repos", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_Composition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		anonReads  bool
		method     string
		path       string
		wantStatus int
	}{
		{"public path without token", false, http.MethodGet, "/health", http.StatusOK},
		{"protected read without token", false, http.MethodGet, "/v1/repos", http.StatusUnauthorized},
		{"anonymous read", true, http.MethodGet, "/v1/extensions", http.StatusOK},
		{"write still protected with anonymous reads", true, http.MethodPost, "/v1/repos", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockFactory := func(_ context.Context, _ config.OAuthProviderConfig) (TokenValidator, error) {
				return mocks.NewMockTokenValidator(ctrl), nil
			}

			cfg := oauthConfig("https://extrepo.example.com")
			cfg.AllowAnonymousReads = tt.anonReads

			mw, wellKnown, err := Middleware(context.Background(), cfg, mockFactory)
			require.NoError(t, err)
			require.NotNil(t, wellKnown)

			called := false
			rr := httptest.NewRecorder()
			mw(okHandler(&called)).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestMiddleware_Anonymous(t *testing.T) {
	t.Parallel()

	mw, wellKnown, err := Middleware(context.Background(), nil, DefaultValidatorFactory)
	require.NoError(t, err)
	assert.Nil(t, wellKnown)

	called := false
	rr := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/repos", nil))
	assert.True(t, called)
}
