package identity

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

// CallerType tells downstream components which validation path produced the
// identity.
type CallerType string

const (
	CallerTypeAgent = CallerType("agent") // Machine caller authenticated by client certificate.
	CallerTypeUser  = CallerType("user")  // Human caller authenticated by bearer token.
)

// Identity is the request-scoped identity context produced by the
// authorization boundary and consumed by all downstream business components.
//
// It is owned exclusively by the request. Each field is written at most once
// during authorization and is read-only for the remainder of the request.
// The struct is never persisted.
type Identity struct {
	UserID              string     `json:"user_id"`               // Canonical user identifier.
	TenantID            string     `json:"tenant_id"`             // Tenant selected for this request.
	AuthorizedTenantIDs []string   `json:"authorized_tenant_ids"` // Tenants the user may act within.
	Roles               []string   `json:"roles"`                 // Roles of the user, scoped to TenantID.
	CallerType          CallerType `json:"caller_type"`           // Which validation path produced this identity.
	Impersonating       bool       `json:"impersonating"`         // True when a system admin selected a foreign tenant.
}

// IsAuthorizedForTenant reports whether the identity may act within the given
// tenant. The default tenant is open to every authenticated caller, and
// system admins may act within any tenant.
func (id *Identity) IsAuthorizedForTenant(tenantID string) bool {
	if tenantID == model.DefaultTenantID {
		return true
	}
	if id.IsSystemAdmin() {
		return true
	}
	return lo.Contains(id.AuthorizedTenantIDs, tenantID)
}

// IsSystemAdmin reports whether the identity carries the global admin role.
func (id *Identity) IsSystemAdmin() bool {
	return lo.Contains(id.Roles, model.SystemAdminRole)
}

// HasAnyRole reports whether the identity holds at least one of the given
// roles. Comparison is case-insensitive.
func (id *Identity) HasAnyRole(roles ...string) bool {
	return lo.SomeBy(roles, func(role string) bool {
		return lo.ContainsBy(id.Roles, func(held string) bool {
			return strings.EqualFold(held, role)
		})
	})
}

type identityCtxKey struct{}

// NewContext attaches a fresh, empty identity to ctx and returns it for the
// authorization boundary to populate.
func NewContext(ctx context.Context) (context.Context, *Identity) {
	id := &Identity{}
	return context.WithValue(ctx, identityCtxKey{}, id), id
}

// FromContext returns the identity attached to ctx, or nil when the request
// has not passed the authorization boundary.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	if !ok {
		return nil
	}
	return id
}
