package model

// DefaultTenantID is the well-known sentinel tenant. Callers whose identity
// provider returns no tenant membership are placed into this tenant, and a
// tenant-switch request for it is always allowed.
const DefaultTenantID = "default"

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant is the configuration record of a tenant.
type Tenant struct {
	ID      string       `json:"id"`      // Unique identifier of the tenant.
	Version int64        `json:"version"` // Version of the record.
	Status  TenantStatus `json:"status"`  // Status of the tenant.
	Name    string       `json:"name"`    // Display name of the tenant.

	CreatedAt int64  `json:"created_at"` // Unix Time (in second) when the tenant was created.
	CreatedBy string `json:"created_by"` // User who created the tenant.
	UpdatedAt int64  `json:"updated_at"` // Unix Time (in second) when the tenant was last updated.
	UpdatedBy string `json:"updated_by"` // User who last updated the tenant.
}
