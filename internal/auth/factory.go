package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kanade-dev/extrepo/internal/config"
)

// NewAuthMiddleware creates authentication middleware based on cfg.
// The returned handler serves the protected resource metadata and is nil in anonymous mode.
func NewAuthMiddleware(
	ctx context.Context,
	cfg *config.AuthConfig,
	factory validatorFactory,
) (func(http.Handler) http.Handler, http.Handler, error) {
	switch cfg.GetMode() {
	case config.AuthModeAnonymous:
		slog.Info("auth: anonymous mode")
		return anonymousMiddleware, nil, nil
	case config.AuthModeOAuth:
		return createOAuthMiddleware(ctx, cfg, factory)
	default:
		return nil, nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

func createOAuthMiddleware(
	ctx context.Context,
	cfg *config.AuthConfig,
	factory validatorFactory,
) (func(http.Handler) http.Handler, http.Handler, error) {
	if cfg.OAuth == nil {
		return nil, nil, errors.New("oauth configuration is required for oauth mode")
	}
	oauth := cfg.OAuth

	issuerURLs := make([]string, len(oauth.Providers))
	for i, p := range oauth.Providers {
		issuerURLs[i] = p.IssuerURL
	}

	m, err := newMultiProviderMiddleware(ctx, oauth.Providers, oauth.ResourceURL, oauth.Realm, factory)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create multi-provider middleware: %w", err)
	}

	var handler http.Handler
	if oauth.ResourceURL != "" {
		handler, err = newProtectedResourceHandler(oauth.ResourceURL, issuerURLs, oauth.ScopesSupported)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create protected resource handler: %w", err)
		}
	}

	slog.Info("auth: OAuth mode", "providers", len(oauth.Providers))
	return m.Middleware, handler, nil
}

// anonymousMiddleware passes requests through without authentication
func anonymousMiddleware(next http.Handler) http.Handler {
	return next
}
