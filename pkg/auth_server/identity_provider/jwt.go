package identity_provider

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

type JWTProviderConfig struct {
	// JWKSURL is the JSON Web Key Set endpoint of the external provider.
	// When empty, PublicKey must carry a PEM encoded verification key.
	JWKSURL   string `yaml:"jwks_url"`
	PublicKey string `yaml:"public_key"`

	Issuer   string `yaml:"issuer"`   // Expected iss claim. Checked when non-empty.
	Audience string `yaml:"audience"` // Expected aud claim. Checked when non-empty.

	// Claim names carrying the authorized tenants and roles. The defaults
	// are "tenants" and "roles".
	TenantsClaim string `yaml:"tenants_claim"`
	RolesClaim   string `yaml:"roles_claim"`
}

// JWTProvider validates compact JWT bearer tokens against the signing keys
// of an external identity provider.
type JWTProvider struct {
	cfg      JWTProviderConfig
	jwkCache *jwk.Cache
	localKey jwk.Set
}

func NewJWTProvider(cfg JWTProviderConfig) (*JWTProvider, error) {
	if cfg.TenantsClaim == "" {
		cfg.TenantsClaim = "tenants"
	}
	if cfg.RolesClaim == "" {
		cfg.RolesClaim = "roles"
	}

	p := &JWTProvider{cfg: cfg}
	if cfg.JWKSURL != "" {
		jwkCache := jwk.NewCache(context.Background())
		if err := jwkCache.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
		}
		p.jwkCache = jwkCache
		return p, nil
	}

	if cfg.PublicKey == "" {
		return nil, fmt.Errorf("identity provider needs jwks_url or public_key%w", model.ErrInvalidParameter)
	}
	key, err := jwk.ParseKey([]byte(cfg.PublicKey), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity provider public key: %w", err)
	}
	keySet := jwk.NewSet()
	if err := keySet.AddKey(key); err != nil {
		return nil, fmt.Errorf("failed to build identity provider key set: %w", err)
	}
	p.localKey = keySet
	return p, nil
}

func (p *JWTProvider) ValidateToken(ctx context.Context, token string) (TokenClaims, error) {
	keySet, err := p.keySet(ctx)
	if err != nil {
		logrus.Warnf("JWTProvider::ValidateToken(): fail to fetch key set: %v", err)
		return TokenClaims{}, fmt.Errorf("%s%w", err.Error(), model.ErrUpstreamUnavailable)
	}

	options := []jwt.ParseOption{
		jwt.WithContext(ctx),
		jwt.WithKeySet(keySet, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
	}
	if p.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(p.cfg.Issuer))
	}
	if p.cfg.Audience != "" {
		options = append(options, jwt.WithAudience(p.cfg.Audience))
	}

	tok, err := jwt.Parse([]byte(token), options...)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%s%w", err.Error(), model.ErrCredentialInvalid)
	}
	if tok.Subject() == "" {
		return TokenClaims{}, fmt.Errorf("token has no subject%w", model.ErrCredentialInvalid)
	}

	return TokenClaims{
		UserID:    tok.Subject(),
		TenantIDs: stringsClaim(tok, p.cfg.TenantsClaim),
		Roles:     stringsClaim(tok, p.cfg.RolesClaim),
	}, nil
}

// keySet returns the verification keys, fetching the JWKS endpoint through
// the refreshing cache. The fetch is retried a few times so a transient
// provider hiccup does not immediately surface as UpstreamUnavailable.
func (p *JWTProvider) keySet(ctx context.Context) (jwk.Set, error) {
	if p.localKey != nil {
		return p.localKey, nil
	}

	return retry.DoWithData(
		func() (jwk.Set, error) {
			return p.jwkCache.Get(ctx, p.cfg.JWKSURL)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func stringsClaim(tok jwt.Token, name string) []string {
	raw, ok := tok.Get(name)
	if !ok {
		return nil
	}

	switch value := raw.(type) {
	case []string:
		return value
	case []interface{}:
		return lo.FilterMap(value, func(item interface{}, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	}
	return nil
}
