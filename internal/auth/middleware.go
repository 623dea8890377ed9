// Package auth provides bearer token authentication for the extension repository API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kanade-dev/extrepo/internal/config"
)

var (
	errAllProvidersFailed = errors.New("all providers failed to validate token")
	errMissingToken       = errors.New("authorization header is missing")
	errMalformedHeader    = errors.New("authorization header must use the Bearer scheme")
)

// RFC 6750 Section 3 error codes
const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeInvalidToken   = "invalid_token"
)

// defaultRealm is the protection space used when none is configured
const defaultRealm = "extrepo"

type validationResult struct {
	Provider string
	Error    error
	Errors   []providerError
	Claims   jwt.MapClaims
}

type providerError struct {
	Provider string
	Error    error
}

type namedValidator struct {
	Name      string
	Validator TokenValidator
}

// multiProviderMiddleware accepts a token issued by any of several providers
type multiProviderMiddleware struct {
	validators  []namedValidator
	resourceURL string
	realm       string
}

func newMultiProviderMiddleware(
	ctx context.Context,
	providers []config.OAuthProviderConfig,
	resourceURL string,
	realm string,
	factory validatorFactory,
) (*multiProviderMiddleware, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider must be configured")
	}
	if realm == "" {
		realm = defaultRealm
	}

	m := &multiProviderMiddleware{
		validators:  make([]namedValidator, 0, len(providers)),
		resourceURL: resourceURL,
		realm:       realm,
	}
	for _, p := range providers {
		validator, err := factory(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to create validator for provider %q: %w", p.Name, err)
		}
		m.validators = append(m.validators, namedValidator{Name: p.Name, Validator: validator})
	}
	return m, nil
}

// Middleware rejects requests without a valid bearer token
func (m *multiProviderMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			slog.WarnContext(r.Context(), "Token extraction failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidRequest, "missing or malformed authorization header")
			return
		}

		result := m.validateToken(r.Context(), token)
		if result.Error != nil {
			slog.WarnContext(r.Context(), "Token validation failed",
				"error", result.Error,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path)
			m.writeError(w, http.StatusUnauthorized, errorCodeInvalidToken, "token validation failed")
			return
		}

		slog.DebugContext(r.Context(), "Authentication successful",
			"provider", result.Provider,
			"subject", result.Claims["sub"],
			"path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), result.Claims)))
	})
}

type claimsKey struct{}

// WithClaims stores the validated claims of the caller in ctx
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the authentication middleware.
// It reports false for requests that were not authenticated.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// validateToken tries each provider in order and returns the first success
func (m *multiProviderMiddleware) validateToken(ctx context.Context, token string) validationResult {
	providerErrors := make([]providerError, 0, len(m.validators))

	for _, nv := range m.validators {
		claims, err := nv.Validator.ValidateToken(ctx, token)
		if err != nil {
			providerErrors = append(providerErrors, providerError{Provider: nv.Name, Error: err})
			slog.DebugContext(ctx, "Provider failed to validate token", "provider", nv.Name, "error", err)
			continue
		}
		return validationResult{Provider: nv.Name, Claims: claims, Errors: providerErrors}
	}

	return validationResult{Error: errAllProvidersFailed, Errors: providerErrors}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}

// sanitizeHeaderValue strips CR and LF and escapes quotes
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeError writes a JSON error with an RFC 6750 WWW-Authenticate challenge
func (m *multiProviderMiddleware) writeError(w http.ResponseWriter, status int, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")

	wwwAuth := fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description))
	if m.resourceURL != "" {
		wwwAuth += fmt.Sprintf(`, resource_metadata="%s%s"`,
			sanitizeHeaderValue(strings.TrimSuffix(m.resourceURL, "/")), ProtectedResourcePath)
	}
	w.Header().Set("WWW-Authenticate", wwwAuth)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": description}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// IsPublicPath reports whether requestPath falls under one of publicPaths.
// Encoded separators never match, the path is cleaned before comparison
// and matching respects segment boundaries so /health does not match /healthcheck.
func IsPublicPath(requestPath string, publicPaths []string) bool {
	lowerPath := strings.ToLower(requestPath)
	if strings.Contains(lowerPath, "%2f") || strings.Contains(lowerPath, "%2e") {
		return false
	}

	cleanPath := path.Clean("/" + requestPath)
	for _, publicPath := range publicPaths {
		cleanPublicPath := path.Clean("/" + publicPath)
		if cleanPublicPath == "/" || cleanPath == cleanPublicPath ||
			strings.HasPrefix(cleanPath, cleanPublicPath+"/") {
			return true
		}
	}
	return false
}

// WrapWithPublicPaths applies authMw to every request except those for publicPaths
func WrapWithPublicPaths(
	authMw func(http.Handler) http.Handler,
	publicPaths []string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authWrappedNext := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}
			authWrappedNext.ServeHTTP(w, r)
		})
	}
}

// WrapWithAnonymousReads applies authMw to every request that is not a GET or HEAD
func WrapWithAnonymousReads(authMw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authWrappedNext := authMw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			authWrappedNext.ServeHTTP(w, r)
		})
	}
}

// Middleware builds the complete authentication middleware for cfg.
// The returned handler serves the protected resource metadata and may be nil.
func Middleware(
	ctx context.Context,
	cfg *config.AuthConfig,
	factory validatorFactory,
) (func(http.Handler) http.Handler, http.Handler, error) {
	authMw, wellKnown, err := NewAuthMiddleware(ctx, cfg, factory)
	if err != nil {
		return nil, nil, err
	}
	if cfg.GetMode() == config.AuthModeAnonymous {
		return authMw, nil, nil
	}
	if cfg.AllowAnonymousReads {
		authMw = WrapWithAnonymousReads(authMw)
	}
	return WrapWithPublicPaths(authMw, cfg.GetPublicPaths()), wellKnown, nil
}
