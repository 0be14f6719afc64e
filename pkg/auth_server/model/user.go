package model

// SystemAdminRole is the role granted globally to users flagged as system
// admin. Holders of this role may impersonate any tenant.
const SystemAdminRole = "system_admin"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a caller known to the system. Both certificate-bearing agents and
// token-bearing humans resolve to a User record.
type User struct {
	ID      string     `json:"id"`      // Canonical user identifier.
	Version int64      `json:"version"` // Version of the record.
	Status  UserStatus `json:"status"`  // Status of the user.
	Name    string     `json:"name"`    // Display name of the user.

	// TenantRoles maps a tenant ID onto the roles the user holds within that
	// tenant. Membership of a tenant is implied by presence of the key.
	TenantRoles map[string][]string `json:"tenant_roles"`

	// SystemAdmin marks the user as a platform operator. System admins carry
	// SystemAdminRole in every tenant and may impersonate tenants.
	SystemAdmin bool `json:"system_admin"`

	CreatedAt int64  `json:"created_at"` // Unix Time (in second) when the user was created.
	CreatedBy string `json:"created_by"` // User who created the record.
	UpdatedAt int64  `json:"updated_at"` // Unix Time (in second) when the user was last updated.
	UpdatedBy string `json:"updated_by"` // User who last updated the record.
}

// RolesForTenant returns the roles the user holds for the given tenant,
// including the global admin role when the user is a system admin.
func (u User) RolesForTenant(tenantID string) []string {
	roles := append([]string{}, u.TenantRoles[tenantID]...)
	if u.SystemAdmin {
		roles = append(roles, SystemAdminRole)
	}
	return roles
}

// AuthorizedTenants returns the IDs of the tenants the user is a member of.
func (u User) AuthorizedTenants() []string {
	tenants := make([]string, 0, len(u.TenantRoles))
	for id := range u.TenantRoles {
		tenants = append(tenants, id)
	}
	return tenants
}
