// Package registry manages the tenant and user records the authenticators
// resolve against.
package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

type Registry interface {
	CreateTenant(ctx context.Context, ts int64, req CreateTenantRequest) (model.Tenant, error)
	UpdateTenant(ctx context.Context, ts int64, req UpdateTenantRequest) (model.Tenant, error)
	SetTenantStatus(ctx context.Context, ts int64, req SetTenantStatusRequest) (model.Tenant, error)
	ListTenants(ctx context.Context, req storage.ListTenantsRequest) (storage.ListTenantsResult, error)

	CreateUser(ctx context.Context, ts int64, req CreateUserRequest) (model.User, error)
	UpdateUser(ctx context.Context, ts int64, req UpdateUserRequest) (model.User, error)
	SetUserStatus(ctx context.Context, ts int64, req SetUserStatusRequest) (model.User, error)
	ListUsers(ctx context.Context, req storage.ListUsersRequest) (storage.ListUsersResult, error)
}

type CreateTenantRequest struct {
	Requester string `json:"requester"` // Who makes the request.
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
}

type UpdateTenantRequest struct {
	Requester string `json:"requester"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
}

type SetTenantStatusRequest struct {
	Requester string             `json:"requester"`
	TenantID  string             `json:"tenant_id"`
	Status    model.TenantStatus `json:"status"`
}

type CreateUserRequest struct {
	Requester   string              `json:"requester"`
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	TenantRoles map[string][]string `json:"tenant_roles"`
	SystemAdmin bool                `json:"system_admin"`
}

type UpdateUserRequest struct {
	Requester   string              `json:"requester"`
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	TenantRoles map[string][]string `json:"tenant_roles"`
	SystemAdmin bool                `json:"system_admin"`
}

type SetUserStatusRequest struct {
	Requester string           `json:"requester"`
	UserID    string           `json:"user_id"`
	Status    model.UserStatus `json:"status"`
}

type _Registry struct {
	tenantStorage storage.TenantStorage
	userStorage   storage.UserStorage
}

func NewRegistry(authStorage storage.AuthStorage) *_Registry {
	return &_Registry{
		tenantStorage: authStorage,
		userStorage:   authStorage,
	}
}

func (r *_Registry) CreateTenant(ctx context.Context, ts int64, req CreateTenantRequest) (model.Tenant, error) {
	if err := ValidateCreateTenantRequest(req); err != nil {
		return model.Tenant{}, err
	}
	tenantID, err := model.NormalizeTenantID(req.TenantID)
	if err != nil {
		return model.Tenant{}, err
	}

	tenant := model.Tenant{
		ID:        tenantID,
		Version:   1,
		Status:    model.TenantStatusActive,
		Name:      req.Name,
		CreatedAt: ts,
		CreatedBy: req.Requester,
		UpdatedAt: ts,
		UpdatedBy: req.Requester,
	}

	tx, ctx, err := r.tenantStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return model.Tenant{}, err
	}
	defer tx.Rollback(ctx)

	old, err := r.tenantStorage.ListTenants(ctx, tx, storage.ListTenantsRequest{Limit: 1, IDs: []string{tenant.ID}})
	if err != nil {
		return model.Tenant{}, err
	}
	if len(old.Tenants) > 0 {
		return model.Tenant{}, model.ErrTenantAlreadyExists
	}

	if err := r.tenantStorage.StoreTenant(ctx, tx, tenant); err != nil {
		return model.Tenant{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Tenant{}, err
	}
	return tenant, nil
}

func (r *_Registry) UpdateTenant(ctx context.Context, ts int64, req UpdateTenantRequest) (model.Tenant, error) {
	if err := ValidateUpdateTenantRequest(req); err != nil {
		return model.Tenant{}, err
	}

	return r.mutateTenant(ctx, req.TenantID, func(tenant *model.Tenant) {
		tenant.Name = req.Name
		tenant.Version += 1
		tenant.UpdatedAt = ts
		tenant.UpdatedBy = req.Requester
	})
}

func (r *_Registry) SetTenantStatus(ctx context.Context, ts int64, req SetTenantStatusRequest) (model.Tenant, error) {
	if err := ValidateSetTenantStatusRequest(req); err != nil {
		return model.Tenant{}, err
	}

	return r.mutateTenant(ctx, req.TenantID, func(tenant *model.Tenant) {
		tenant.Status = req.Status
		tenant.Version += 1
		tenant.UpdatedAt = ts
		tenant.UpdatedBy = req.Requester
	})
}

func (r *_Registry) mutateTenant(ctx context.Context, tenantID string, mutate func(*model.Tenant)) (model.Tenant, error) {
	normalized, err := model.NormalizeTenantID(tenantID)
	if err != nil {
		return model.Tenant{}, err
	}

	tx, ctx, err := r.tenantStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return model.Tenant{}, err
	}
	defer tx.Rollback(ctx)

	result, err := r.tenantStorage.ListTenants(ctx, tx, storage.ListTenantsRequest{Limit: 1, IDs: []string{normalized}})
	if err != nil {
		return model.Tenant{}, err
	}
	if len(result.Tenants) == 0 {
		return model.Tenant{}, model.ErrTenantNotFound
	}

	tenant := result.Tenants[0]
	mutate(&tenant)
	if err := r.tenantStorage.StoreTenant(ctx, tx, tenant); err != nil {
		return model.Tenant{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Tenant{}, err
	}
	return tenant, nil
}

func (r *_Registry) ListTenants(ctx context.Context, req storage.ListTenantsRequest) (storage.ListTenantsResult, error) {
	if err := ValidateListTenantsRequest(req); err != nil {
		return storage.ListTenantsResult{}, err
	}

	tx, ctx, err := r.tenantStorage.CreateTx(ctx)
	if err != nil {
		return storage.ListTenantsResult{}, err
	}
	defer tx.Rollback(ctx)

	return r.tenantStorage.ListTenants(ctx, tx, req)
}

func (r *_Registry) CreateUser(ctx context.Context, ts int64, req CreateUserRequest) (model.User, error) {
	if err := ValidateCreateUserRequest(req); err != nil {
		return model.User{}, err
	}
	userID, err := model.NormalizeUserID(req.UserID)
	if err != nil {
		return model.User{}, err
	}
	tenantRoles, err := normalizeTenantRoles(req.TenantRoles)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:          userID,
		Version:     1,
		Status:      model.UserStatusActive,
		Name:        req.Name,
		TenantRoles: tenantRoles,
		SystemAdmin: req.SystemAdmin,
		CreatedAt:   ts,
		CreatedBy:   req.Requester,
		UpdatedAt:   ts,
		UpdatedBy:   req.Requester,
	}

	tx, ctx, err := r.userStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return model.User{}, err
	}
	defer tx.Rollback(ctx)

	old, err := r.userStorage.ListUsers(ctx, tx, storage.ListUsersRequest{Limit: 1, IDs: []string{user.ID}})
	if err != nil {
		return model.User{}, err
	}
	if len(old.Users) > 0 {
		return model.User{}, model.ErrUserAlreadyExists
	}

	if err := r.userStorage.StoreUser(ctx, tx, user); err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *_Registry) UpdateUser(ctx context.Context, ts int64, req UpdateUserRequest) (model.User, error) {
	if err := ValidateUpdateUserRequest(req); err != nil {
		return model.User{}, err
	}
	tenantRoles, err := normalizeTenantRoles(req.TenantRoles)
	if err != nil {
		return model.User{}, err
	}

	return r.mutateUser(ctx, req.UserID, func(user *model.User) {
		user.Name = req.Name
		user.TenantRoles = tenantRoles
		user.SystemAdmin = req.SystemAdmin
		user.Version += 1
		user.UpdatedAt = ts
		user.UpdatedBy = req.Requester
	})
}

func (r *_Registry) SetUserStatus(ctx context.Context, ts int64, req SetUserStatusRequest) (model.User, error) {
	if err := ValidateSetUserStatusRequest(req); err != nil {
		return model.User{}, err
	}

	return r.mutateUser(ctx, req.UserID, func(user *model.User) {
		user.Status = req.Status
		user.Version += 1
		user.UpdatedAt = ts
		user.UpdatedBy = req.Requester
	})
}

func (r *_Registry) mutateUser(ctx context.Context, userID string, mutate func(*model.User)) (model.User, error) {
	normalized, err := model.NormalizeUserID(userID)
	if err != nil {
		return model.User{}, err
	}

	tx, ctx, err := r.userStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return model.User{}, err
	}
	defer tx.Rollback(ctx)

	result, err := r.userStorage.ListUsers(ctx, tx, storage.ListUsersRequest{Limit: 1, IDs: []string{normalized}})
	if err != nil {
		return model.User{}, err
	}
	if len(result.Users) == 0 {
		return model.User{}, model.ErrUserNotFound
	}

	user := result.Users[0]
	mutate(&user)
	if err := r.userStorage.StoreUser(ctx, tx, user); err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *_Registry) ListUsers(ctx context.Context, req storage.ListUsersRequest) (storage.ListUsersResult, error) {
	if err := ValidateListUsersRequest(req); err != nil {
		return storage.ListUsersResult{}, err
	}

	tx, ctx, err := r.userStorage.CreateTx(ctx)
	if err != nil {
		return storage.ListUsersResult{}, err
	}
	defer tx.Rollback(ctx)

	return r.userStorage.ListUsers(ctx, tx, req)
}

// normalizeTenantRoles canonicalizes the tenant keys of a role assignment so
// membership checks against normalized tenant IDs always line up.
func normalizeTenantRoles(tenantRoles map[string][]string) (map[string][]string, error) {
	if tenantRoles == nil {
		return nil, nil
	}
	normalized := make(map[string][]string, len(tenantRoles))
	for tenantID, roles := range tenantRoles {
		id, err := model.NormalizeTenantID(tenantID)
		if err != nil {
			return nil, fmt.Errorf("tenant_roles: %w", err)
		}
		normalized[id] = roles
	}
	return normalized, nil
}
