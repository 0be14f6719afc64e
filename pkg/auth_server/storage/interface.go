package storage

import (
	"context"
	"database/sql"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (Result, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type Row interface {
	Scan(dest ...any) error
}

type Result interface {
	// RowsAffected returns the number of rows affected by an
	// update, insert, or delete. Not every database or database
	// driver may support this.
	RowsAffected() (int64, error)
}

type CreateTxOption func(*sql.TxOptions)

type TransactionInterface interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
}

func TxOptionWithWrite(write bool) CreateTxOption {
	return func(option *sql.TxOptions) {
		option.ReadOnly = !write
	}
}

func TxOptionWithIsolationLevel(level sql.IsolationLevel) CreateTxOption {
	return func(option *sql.TxOptions) {
		option.Isolation = level
	}
}

// ListCertsRequest is the request to list certificate records.
type ListCertsRequest struct {
	Offset int `json:"offset"` // Offset of the certificates to be listed.
	Limit  int `json:"limit"`  // Limit of the certificates to be listed.

	// Filters
	Thumbprints []string           `json:"thumbprints"` // Thumbprints of the certificates.
	TenantID    string             `json:"tenant_id"`   // Tenant the certificates belong to.
	UserID      string             `json:"user_id"`     // User the certificates were issued to.
	Statuses    []model.CertStatus `json:"statuses"`    // Statuses of the certificates.
}

// ListCertsResult is the result of listing certificate records.
type ListCertsResult struct {
	Total int64        `json:"total"` // Total number of certificates matching the filters.
	Certs []model.Cert `json:"certs"` // Records of certificates.
}

type CertStorage interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
	StoreCert(ctx context.Context, tx Tx, cert model.Cert) error
	ListCerts(ctx context.Context, tx Tx, req ListCertsRequest) (ListCertsResult, error)
}

// ListTenantsRequest is the request to list tenants.
type ListTenantsRequest struct {
	Offset int `json:"offset"` // Offset of the tenants to be listed.
	Limit  int `json:"limit"`  // Limit of the tenants to be listed.

	// Filters
	IDs      []string             `json:"ids"`      // IDs of the tenants.
	Statuses []model.TenantStatus `json:"statuses"` // Statuses of the tenants.
}

// ListTenantsResult is the result of listing tenants.
type ListTenantsResult struct {
	Total   int64          `json:"total"`   // Total number of tenants matching the filters.
	Tenants []model.Tenant `json:"tenants"` // Records of tenants.
}

type TenantStorage interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
	StoreTenant(ctx context.Context, tx Tx, tenant model.Tenant) error
	ListTenants(ctx context.Context, tx Tx, req ListTenantsRequest) (ListTenantsResult, error)
}

// ListUsersRequest is the request to list users.
type ListUsersRequest struct {
	Offset int `json:"offset"` // Offset of the users to be listed.
	Limit  int `json:"limit"`  // Limit of the users to be listed.

	// Filters
	IDs      []string           `json:"ids"`      // IDs of the users.
	Statuses []model.UserStatus `json:"statuses"` // Statuses of the users.
}

// ListUsersResult is the result of listing users.
type ListUsersResult struct {
	Total int64        `json:"total"` // Total number of users matching the filters.
	Users []model.User `json:"users"` // Records of users.
}

type UserStorage interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
	StoreUser(ctx context.Context, tx Tx, user model.User) error
	ListUsers(ctx context.Context, tx Tx, req ListUsersRequest) (ListUsersResult, error)
}

// AuthStorage is the combined storage surface of the auth server. The
// postgres implementation satisfies all of it with a single pool.
type AuthStorage interface {
	CertStorage
	TenantStorage
	UserStorage
}
