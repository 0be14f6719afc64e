package postgres

import (
	"context"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

func (s *_Storage) StoreUser(ctx context.Context, tx storage.Tx, user model.User) error {
	query := `
WITH new_data AS (
	INSERT INTO "user" (id, "version", status, created_at, updated_at, "user")
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		"version" = excluded."version",
		status = excluded.status,
		updated_at = excluded.updated_at,
		"user" = excluded."user"
	RETURNING id, "version", updated_at, "user"
)
INSERT INTO user_history (id, "version", created_at, "user")
SELECT * FROM new_data`

	_, err := tx.Exec(ctx, query, user.ID, user.Version, user.Status, user.CreatedAt, user.UpdatedAt, user)
	if err != nil {
		return err
	}
	return nil
}

func (s *_Storage) ListUsers(ctx context.Context, tx storage.Tx, req storage.ListUsersRequest) (storage.ListUsersResult, error) {
	query := `
SELECT count(*) OVER (), "user" FROM "user"
WHERE
	(COALESCE(array_length($3::TEXT[], 1), 0) = 0 OR id = ANY($3)) AND
	(COALESCE(array_length($4::TEXT[], 1), 0) = 0 OR status = ANY($4))
ORDER BY rec_id ASC
OFFSET $1 LIMIT $2`

	rows, err := tx.Query(ctx, query, req.Offset, req.Limit, req.IDs, req.Statuses)
	if err != nil {
		return storage.ListUsersResult{}, err
	}
	defer rows.Close()

	result := storage.ListUsersResult{}
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&result.Total, &user); err != nil {
			return storage.ListUsersResult{}, err
		}
		result.Users = append(result.Users, user)
	}
	if err := rows.Err(); err != nil {
		return storage.ListUsersResult{}, err
	}

	return result, nil
}
