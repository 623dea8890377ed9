package auth

//go:generate mockgen -destination=mocks/mock_validator.go -package=mocks -source=validator.go TokenValidator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/httpclient"
)

const (
	// keySetTTL is how long a fetched key set is trusted before it is fetched again
	keySetTTL = time.Hour

	// minRefetchInterval limits key set fetches triggered by unknown key IDs
	minRefetchInterval = time.Minute

	// clockSkewLeeway is tolerated on exp, nbf and iat
	clockSkewLeeway = 30 * time.Second

	jwksFetchTimeout = 10 * time.Second
)

var (
	errUnknownKey = errors.New("no signing key matches the token")

	signingMethods = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512"}
)

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (jwt.MapClaims, error)
}

// JWKSValidator validates signed JWTs against the key set published by one issuer
type JWKSValidator struct {
	jwksURL string
	client  httpclient.Client
	parser  *jwt.Parser

	keys *expirable.LRU[string, jwk.Set]

	mu        sync.Mutex
	lastFetch time.Time
}

var _ TokenValidator = (*JWKSValidator)(nil)

// NewJWKSValidator creates a validator for provider. Keys are fetched on first use.
func NewJWKSValidator(provider config.OAuthProviderConfig, client httpclient.Client) *JWKSValidator {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(signingMethods),
		jwt.WithIssuer(provider.IssuerURL),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkewLeeway),
	}
	if provider.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(provider.Audience))
	}

	return &JWKSValidator{
		jwksURL: provider.GetJWKSURL(),
		client:  client,
		parser:  jwt.NewParser(parserOpts...),
		keys:    expirable.NewLRU[string, jwk.Set](1, nil, keySetTTL),
	}
}

// ValidateToken verifies the signature, issuer, audience and lifetime of token
func (v *JWKSValidator) ValidateToken(ctx context.Context, token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.signingKey(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (v *JWKSValidator) signingKey(ctx context.Context, t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)

	set, err := v.keySet(ctx, false)
	if err != nil {
		return nil, err
	}
	key, ok := lookupKey(set, kid)
	if !ok {
		// The issuer may have rotated its keys since the last fetch
		set, err = v.keySet(ctx, true)
		if err != nil {
			return nil, err
		}
		if key, ok = lookupKey(set, kid); !ok {
			return nil, fmt.Errorf("%w: kid %q", errUnknownKey, kid)
		}
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to export signing key %q: %w", kid, err)
	}
	return raw, nil
}

// keySet returns the cached key set. With refetch it fetches again unless a fetch happened recently.
func (v *JWKSValidator) keySet(ctx context.Context, refetch bool) (jwk.Set, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cached, ok := v.keys.Get(v.jwksURL)
	if ok && (!refetch || time.Since(v.lastFetch) < minRefetchInterval) {
		return cached, nil
	}

	data, err := v.client.Get(ctx, v.jwksURL)
	if err != nil {
		if ok {
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch key set from %s: %w", v.jwksURL, err)
	}
	set, err := jwk.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key set from %s: %w", v.jwksURL, err)
	}

	v.lastFetch = time.Now()
	v.keys.Add(v.jwksURL, set)
	return set, nil
}

// lookupKey finds kid in set. A token without kid matches a set holding exactly one key.
func lookupKey(set jwk.Set, kid string) (jwk.Key, bool) {
	if kid != "" {
		return set.LookupKeyID(kid)
	}
	if set.Len() == 1 {
		return set.Key(0)
	}
	return nil, false
}

// validatorFactory creates the validator of one provider
type validatorFactory func(ctx context.Context, provider config.OAuthProviderConfig) (TokenValidator, error)

// DefaultValidatorFactory validates tokens against each provider's JWKS endpoint
var DefaultValidatorFactory validatorFactory = func(
	_ context.Context,
	provider config.OAuthProviderConfig,
) (TokenValidator, error) {
	return NewJWKSValidator(provider, httpclient.NewDefaultClient(jwksFetchTimeout)), nil
}
