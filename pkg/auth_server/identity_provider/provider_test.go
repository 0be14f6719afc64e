package identity_provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantguard/tenantguard/pkg/auth_server/identity_provider"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	provider := identity_provider.NewStaticProvider(map[string]identity_provider.TokenClaims{
		"dev-token": {
			UserID:    "alice",
			TenantIDs: []string{"acme"},
			Roles:     []string{"operator"},
		},
	})

	claims, err := provider.ValidateToken(ctx, "dev-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, []string{"acme"}, claims.TenantIDs)

	_, err = provider.ValidateToken(ctx, "unknown")
	assert.ErrorIs(t, err, model.ErrCredentialInvalid)
}

func TestStaticProviderNilTable(t *testing.T) {
	provider := identity_provider.NewStaticProvider(nil)
	_, err := provider.ValidateToken(context.Background(), "any")
	assert.ErrorIs(t, err, model.ErrCredentialInvalid)
}

func TestNewProvider(t *testing.T) {
	provider, err := identity_provider.NewProvider(identity_provider.Config{
		Type: "static",
		Static: map[string]identity_provider.TokenClaims{
			"dev-token": {UserID: "alice"},
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &identity_provider.StaticProvider{}, provider)

	_, err = identity_provider.NewProvider(identity_provider.Config{Type: "carrier-pigeon"})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}
