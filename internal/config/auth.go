package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// AuthMode selects how API requests are authenticated
type AuthMode string

const (
	// AuthModeAnonymous serves every request without credentials
	AuthModeAnonymous AuthMode = "anonymous"

	// AuthModeOAuth requires a bearer token issued by one of the configured providers
	AuthModeOAuth AuthMode = "oauth"
)

var (
	// DefaultPublicPaths never require authentication
	DefaultPublicPaths = []string{"/health", "/readiness", "/version", "/metrics", "/.well-known"}

	// DefaultScopes are advertised in the protected resource metadata when none are configured
	DefaultScopes = []string{"openid"}
)

// AuthConfig defines API authentication
type AuthConfig struct {
	// Mode is anonymous (default) or oauth
	Mode AuthMode `yaml:"mode,omitempty"`

	// PublicPaths are served without authentication. Defaults to DefaultPublicPaths.
	PublicPaths []string `yaml:"publicPaths,omitempty"`

	// AllowAnonymousReads lets GET and HEAD requests through without a token
	AllowAnonymousReads bool `yaml:"allowAnonymousReads,omitempty"`

	OAuth *OAuthConfig `yaml:"oauth,omitempty"`

	// Authz restricts what an authenticated caller may do. Unset allows everything.
	Authz *AuthzConfig `yaml:"authz,omitempty"`
}

// Authorization actions
const (
	ActionRead  = "read"
	ActionWrite = "write"
	ActionAdmin = "admin"
)

// DefaultScopeMapping is used when authz is enabled without a mapping
var DefaultScopeMapping = []ScopeMappingEntry{
	{Scope: "extrepo:read", Actions: []string{ActionRead}},
	{Scope: "extrepo:write", Actions: []string{ActionRead, ActionWrite}},
	{Scope: "extrepo:admin", Actions: []string{ActionRead, ActionWrite, ActionAdmin}},
}

// AuthzConfig maps token scopes to actions evaluated by Cedar policies
type AuthzConfig struct {
	ScopeMapping []ScopeMappingEntry `yaml:"scopeMapping,omitempty"`

	// PolicyFile replaces the built-in Cedar policies
	PolicyFile string `yaml:"policyFile,omitempty"`
}

// ScopeMappingEntry grants Actions to tokens carrying Scope
type ScopeMappingEntry struct {
	Scope   string   `yaml:"scope"`
	Actions []string `yaml:"actions"`
}

// GetScopeMapping returns the configured mapping or DefaultScopeMapping
func (a *AuthzConfig) GetScopeMapping() []ScopeMappingEntry {
	if a == nil || len(a.ScopeMapping) == 0 {
		return DefaultScopeMapping
	}
	return a.ScopeMapping
}

// OAuthConfig defines the bearer token providers
type OAuthConfig struct {
	// ResourceURL is the public URL of this API, advertised in RFC 9728 metadata
	ResourceURL string `yaml:"resourceUrl"`

	// Realm is the protection space reported in WWW-Authenticate. Defaults to "extrepo".
	Realm string `yaml:"realm,omitempty"`

	ScopesSupported []string `yaml:"scopesSupported,omitempty"`

	Providers []OAuthProviderConfig `yaml:"providers"`
}

// OAuthProviderConfig identifies one token issuer
type OAuthProviderConfig struct {
	Name string `yaml:"name"`

	// IssuerURL must match the iss claim
	IssuerURL string `yaml:"issuerUrl"`

	// JWKSURL serves the signing keys. Defaults to {issuerUrl}/.well-known/jwks.json
	JWKSURL string `yaml:"jwksUrl,omitempty"`

	// Audience must be present in the aud claim when set
	Audience string `yaml:"audience,omitempty"`
}

// GetMode returns the configured mode, anonymous when unset
func (a *AuthConfig) GetMode() AuthMode {
	if a == nil || a.Mode == "" {
		return AuthModeAnonymous
	}
	return a.Mode
}

// GetPublicPaths returns the configured public paths or the defaults
func (a *AuthConfig) GetPublicPaths() []string {
	if a == nil || len(a.PublicPaths) == 0 {
		return append([]string{}, DefaultPublicPaths...)
	}
	return a.PublicPaths
}

// GetJWKSURL returns the key set URL of the provider
func (p *OAuthProviderConfig) GetJWKSURL() string {
	if p.JWKSURL != "" {
		return p.JWKSURL
	}
	return strings.TrimSuffix(p.IssuerURL, "/") + "/.well-known/jwks.json"
}

func validateAuthConfig(a *AuthConfig) error {
	switch a.GetMode() {
	case AuthModeAnonymous:
		return nil
	case AuthModeOAuth:
	default:
		return fmt.Errorf("auth.mode must be %q or %q, got %q", AuthModeAnonymous, AuthModeOAuth, a.Mode)
	}

	if a.OAuth == nil {
		return errors.New("auth.oauth is required for oauth mode")
	}
	if len(a.OAuth.Providers) == 0 {
		return errors.New("auth.oauth.providers must list at least one provider")
	}
	if a.OAuth.ResourceURL != "" {
		if _, err := url.ParseRequestURI(a.OAuth.ResourceURL); err != nil {
			return fmt.Errorf("auth.oauth.resourceUrl must be a valid URL: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(a.OAuth.Providers))
	for i, p := range a.OAuth.Providers {
		if p.Name == "" {
			return fmt.Errorf("auth.oauth.providers[%d].name is required", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("auth.oauth.providers[%d].name %q is used twice", i, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.IssuerURL == "" {
			return fmt.Errorf("auth.oauth.providers[%d].issuerUrl is required", i)
		}
		if _, err := url.ParseRequestURI(p.GetJWKSURL()); err != nil {
			return fmt.Errorf("auth.oauth.providers[%d].jwksUrl must be a valid URL: %w", i, err)
		}
	}
	return validateAuthzConfig(a.Authz)
}

func validateAuthzConfig(a *AuthzConfig) error {
	if a == nil {
		return nil
	}
	for i, entry := range a.ScopeMapping {
		if entry.Scope == "" {
			return fmt.Errorf("auth.authz.scopeMapping[%d].scope is required", i)
		}
		for _, action := range entry.Actions {
			switch action {
			case ActionRead, ActionWrite, ActionAdmin:
			default:
				return fmt.Errorf("auth.authz.scopeMapping[%d] has unknown action %q", i, action)
			}
		}
	}
	if a.PolicyFile != "" {
		if _, err := os.Stat(a.PolicyFile); err != nil {
			return fmt.Errorf("auth.authz.policyFile: %w", err)
		}
	}
	return nil
}
