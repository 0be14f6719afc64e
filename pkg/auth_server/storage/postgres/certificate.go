package postgres

import (
	"context"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

func (s *_Storage) StoreCert(ctx context.Context, tx storage.Tx, cert model.Cert) error {
	query := `
WITH new_data AS (
	INSERT INTO certificate (thumbprint, "version", status, tenant_id, user_id, created_at, updated_at, cert)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (thumbprint) DO UPDATE SET
		"version" = excluded."version",
		status = excluded.status,
		tenant_id = excluded.tenant_id,
		user_id = excluded.user_id,
		updated_at = excluded.updated_at,
		cert = excluded.cert
	RETURNING thumbprint, "version", updated_at, cert
)
INSERT INTO certificate_history (thumbprint, "version", created_at, cert)
SELECT * FROM new_data`

	_, err := tx.Exec(ctx, query, cert.Thumbprint, cert.Version, cert.Status, cert.TenantID, cert.UserID, cert.CreatedAt, cert.UpdatedAt, cert)
	if err != nil {
		return err
	}
	return nil
}

func (s *_Storage) ListCerts(ctx context.Context, tx storage.Tx, req storage.ListCertsRequest) (storage.ListCertsResult, error) {
	query := `
SELECT count(*) OVER (), cert FROM certificate
WHERE
	(COALESCE(array_length($3::TEXT[], 1), 0) = 0 OR thumbprint = ANY($3)) AND
	($4 = '' OR tenant_id = $4) AND
	($5 = '' OR user_id = $5) AND
	(COALESCE(array_length($6::TEXT[], 1), 0) = 0 OR status = ANY($6))
ORDER BY rec_id ASC
OFFSET $1 LIMIT $2`

	rows, err := tx.Query(ctx, query, req.Offset, req.Limit, req.Thumbprints, req.TenantID, req.UserID, req.Statuses)
	if err != nil {
		return storage.ListCertsResult{}, err
	}
	defer rows.Close()

	result := storage.ListCertsResult{}
	for rows.Next() {
		var cert model.Cert
		if err := rows.Scan(&result.Total, &cert); err != nil {
			return storage.ListCertsResult{}, err
		}
		result.Certs = append(result.Certs, cert)
	}
	if err := rows.Err(); err != nil {
		return storage.ListCertsResult{}, err
	}

	return result, nil
}
