package registry

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

func ValidateCreateTenantRequest(req CreateTenantRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.TenantID, validation.Required, validation.Length(1, 128)),
		validation.Field(&req.Name, validation.Required),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateUpdateTenantRequest(req UpdateTenantRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.TenantID, validation.Required),
		validation.Field(&req.Name, validation.Required),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateSetTenantStatusRequest(req SetTenantStatusRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.TenantID, validation.Required),
		validation.Field(&req.Status, validation.Required, validation.In(model.TenantStatusActive, model.TenantStatusInactive)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateListTenantsRequest(req storage.ListTenantsRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Limit, validation.Required, validation.Min(1)),
		validation.Field(&req.Offset, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateCreateUserRequest(req CreateUserRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.UserID, validation.Required, validation.Length(1, 128)),
		validation.Field(&req.Name, validation.Required),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateUpdateUserRequest(req UpdateUserRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateSetUserStatusRequest(req SetUserStatusRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Status, validation.Required, validation.In(model.UserStatusActive, model.UserStatusInactive)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateListUsersRequest(req storage.ListUsersRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Limit, validation.Required, validation.Min(1)),
		validation.Field(&req.Offset, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}
