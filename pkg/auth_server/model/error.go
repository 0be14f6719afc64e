package model

import (
	"errors"
	"fmt"
)

var ErrInvalidParameter = errors.New("") // Base error for invalid parameter
var ErrAuthError = errors.New("")        // Base error for authentication/authorization failures
var ErrTenantError = errors.New("")      // Base error for Tenant
var ErrUserError = errors.New("")        // Base error for User
var ErrCertError = errors.New("")        // Base error for Certificate

// Authentication/authorization errors.
// Every error of the auth boundary wraps ErrAuthError so the HTTP layer can
// collapse the whole family into a single opaque 401 without leaking the
// internal reason to the caller.
var ErrCredentialMissing = fmt.Errorf("credential missing or malformed%w", ErrAuthError)
var ErrCredentialInvalid = fmt.Errorf("credential invalid%w", ErrAuthError)
var ErrCredentialRevoked = fmt.Errorf("credential revoked%w", ErrAuthError)
var ErrIdentityUnknown = fmt.Errorf("identity unknown%w", ErrAuthError)
var ErrTenantUnauthorized = fmt.Errorf("tenant unauthorized%w", ErrAuthError)
var ErrTenantUnknown = fmt.Errorf("tenant unknown%w", ErrAuthError)
var ErrRoleInsufficient = fmt.Errorf("role insufficient%w", ErrAuthError)
var ErrUpstreamUnavailable = fmt.Errorf("upstream unavailable%w", ErrAuthError)

// Tenant errors
var ErrTenantNotFound = fmt.Errorf("tenant not found%w", ErrTenantError)
var ErrTenantAlreadyExists = fmt.Errorf("tenant already exists%w", ErrTenantError)

// User errors
var ErrUserNotFound = fmt.Errorf("user not found%w", ErrUserError)
var ErrUserAlreadyExists = fmt.Errorf("user already exists%w", ErrUserError)

// Certificate errors
var ErrCertNotFound = fmt.Errorf("certificate not found%w", ErrCertError)
var ErrCertAlreadyRevoked = fmt.Errorf("certificate already revoked%w", ErrCertError)
var ErrRootCertInvalid = fmt.Errorf("root certificate invalid%w", ErrCertError)
