package identity_provider

import (
	"context"
	"fmt"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

// TokenClaims is the outcome of a successful token validation.
type TokenClaims struct {
	UserID    string   `json:"user_id"`    // Canonical user identifier (subject).
	TenantIDs []string `json:"tenant_ids"` // Tenants the user may act within.
	Roles     []string `json:"roles"`      // Roles claimed by the provider, if any.
}

// IdentityProvider validates an opaque bearer token with an external
// provider. One implementation exists per provider; the deployment selects
// the variant through configuration (see NewProvider).
//
// ValidateToken returns model.ErrCredentialInvalid (wrapped) when the token
// is rejected by the provider and model.ErrUpstreamUnavailable (wrapped) when
// the provider cannot be reached. The distinction matters: the token
// authorizer only serves stale cache entries for the latter.
type IdentityProvider interface {
	ValidateToken(ctx context.Context, token string) (TokenClaims, error)
}

// Config selects and configures the identity provider of a deployment.
type Config struct {
	Type   string            `yaml:"type"` // "jwt" or "static".
	JWT    JWTProviderConfig `yaml:"jwt"`
	Static map[string]TokenClaims `yaml:"static"`
}

// NewProvider builds the configured identity provider variant.
func NewProvider(cfg Config) (IdentityProvider, error) {
	switch cfg.Type {
	case "jwt":
		return NewJWTProvider(cfg.JWT)
	case "static":
		return NewStaticProvider(cfg.Static), nil
	default:
		return nil, fmt.Errorf("unknown identity provider type %q%w", cfg.Type, model.ErrInvalidParameter)
	}
}
