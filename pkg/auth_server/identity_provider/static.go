package identity_provider

import (
	"context"
	"fmt"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

// StaticProvider resolves tokens from a fixed table. It backs development
// deployments and tests; production deployments use the JWT variant.
type StaticProvider struct {
	tokens map[string]TokenClaims
}

func NewStaticProvider(tokens map[string]TokenClaims) *StaticProvider {
	if tokens == nil {
		tokens = make(map[string]TokenClaims)
	}
	return &StaticProvider{tokens: tokens}
}

func (p *StaticProvider) ValidateToken(ctx context.Context, token string) (TokenClaims, error) {
	if err := ctx.Err(); err != nil {
		return TokenClaims{}, err
	}

	claims, ok := p.tokens[token]
	if !ok {
		return TokenClaims{}, fmt.Errorf("unknown token%w", model.ErrCredentialInvalid)
	}
	return claims, nil
}
