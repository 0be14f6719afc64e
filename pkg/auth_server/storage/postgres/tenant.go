package postgres

import (
	"context"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

func (s *_Storage) StoreTenant(ctx context.Context, tx storage.Tx, tenant model.Tenant) error {
	query := `
INSERT INTO tenant (id, "version", status, created_at, updated_at, tenant)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	"version" = excluded."version",
	status = excluded.status,
	updated_at = excluded.updated_at,
	tenant = excluded.tenant`

	_, err := tx.Exec(ctx, query, tenant.ID, tenant.Version, tenant.Status, tenant.CreatedAt, tenant.UpdatedAt, tenant)
	if err != nil {
		return err
	}
	return nil
}

func (s *_Storage) ListTenants(ctx context.Context, tx storage.Tx, req storage.ListTenantsRequest) (storage.ListTenantsResult, error) {
	query := `
SELECT count(*) OVER (), tenant FROM tenant
WHERE
	(COALESCE(array_length($3::TEXT[], 1), 0) = 0 OR id = ANY($3)) AND
	(COALESCE(array_length($4::TEXT[], 1), 0) = 0 OR status = ANY($4))
ORDER BY rec_id ASC
OFFSET $1 LIMIT $2`

	rows, err := tx.Query(ctx, query, req.Offset, req.Limit, req.IDs, req.Statuses)
	if err != nil {
		return storage.ListTenantsResult{}, err
	}
	defer rows.Close()

	result := storage.ListTenantsResult{}
	for rows.Next() {
		var tenant model.Tenant
		if err := rows.Scan(&result.Total, &tenant); err != nil {
			return storage.ListTenantsResult{}, err
		}
		result.Tenants = append(result.Tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return storage.ListTenantsResult{}, err
	}

	return result, nil
}
