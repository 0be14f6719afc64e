// Package token_auth implements bearer-token authorization for human
// callers: token validation through the configured identity provider, result
// caching, tenant resolution, and the cache-then-bypass retry machine.
package token_auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/audit"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cache"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity_provider"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
	"github.com/tenantguard/tenantguard/pkg/util"
)

// DefaultClaimsTTL bounds how long a successful token validation is reused
// without contacting the identity provider again.
const DefaultClaimsTTL = 10 * time.Minute

const claimsKeyPrefix = "token:"

type Authorizer interface {
	// Authorize evaluates the policy described by opts against the request.
	// On success id carries the caller identity; the tenant fields are only
	// populated when the policy requires tenant scoping.
	Authorize(ctx context.Context, ts int64, req AuthorizeRequest, opts AuthorizeOption, id *identity.Identity) error
}

type AuthorizeRequest struct {
	AuthorizationHeader string `json:"authorization_header"` // "Bearer <token>".
	TenantSwitchHeader  string `json:"tenant_switch_header"` // X-Tenant-Id value, required when the policy demands tenant scoping.
}

// AuthorizeOption parameterizes the policy of a protected endpoint.
type AuthorizeOption struct {
	RequireTenant       bool     `json:"require_tenant"`        // The request must select an authorized tenant.
	RequireTenantConfig bool     `json:"require_tenant_config"` // The selected tenant must exist in the tenant store.
	RequiredRoles       []string `json:"required_roles"`        // At least one must be held (case-insensitive).
}

type _Authorizer struct {
	provider      identity_provider.IdentityProvider
	tenantStorage storage.TenantStorage
	userStorage   storage.UserStorage
	claimsCache   cache.ValidationCache
	claimsTTL     time.Duration
	sink          audit.Sink
}

type Option func(*_Authorizer)

func WithClaimsTTL(ttl time.Duration) Option {
	return func(a *_Authorizer) {
		a.claimsTTL = ttl
	}
}

func NewAuthorizer(
	provider identity_provider.IdentityProvider,
	authStorage storage.AuthStorage,
	claimsCache cache.ValidationCache,
	sink audit.Sink,
	opts ...Option,
) *_Authorizer {
	a := &_Authorizer{
		provider:      provider,
		tenantStorage: authStorage,
		userStorage:   authStorage,
		claimsCache:   claimsCache,
		claimsTTL:     DefaultClaimsTTL,
		sink:          sink,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// retryableError marks a failure of the cached attempt that a fresh
// identity-provider round trip might resolve: the cached claims can be
// authorization-stale even though the token itself is still valid.
type retryableError struct {
	err error
}

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var re retryableError
	return errors.As(err, &re)
}

// Authorize is a two-attempt state machine: one attempt through the claims
// cache, and on a retryable failure exactly one more attempt that forces a
// fresh identity-provider round trip. The single retry distinguishes
// "genuinely unauthorized" from "cache drift" without a retry storm.
func (a *_Authorizer) Authorize(ctx context.Context, ts int64, req AuthorizeRequest, opts AuthorizeOption, id *identity.Identity) error {
	err := a.tryAuthorize(ctx, ts, req, opts, false, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrCredentialMissing) {
		return err
	}
	if !isRetryable(err) && !errors.Is(err, model.ErrUpstreamUnavailable) {
		return err
	}

	logrus.Infof("TokenAuthorizer::Authorize(): cached attempt failed (%v), retrying with fresh validation", err)
	return a.tryAuthorize(ctx, ts, req, opts, true, id)
}

func (a *_Authorizer) tryAuthorize(ctx context.Context, ts int64, req AuthorizeRequest, opts AuthorizeOption, bypassCache bool, id *identity.Identity) error {
	token, err := extractBearerToken(req.AuthorizationHeader)
	if err != nil {
		return err
	}

	claims, fromCache, err := a.validateToken(ctx, token, bypassCache)
	if err != nil {
		return err
	}

	user, err := a.lookupUser(ctx, claims.UserID)
	if err != nil {
		return err
	}

	authorizedTenants := claims.TenantIDs
	if user != nil {
		authorizedTenants = lo.Union(authorizedTenants, user.AuthorizedTenants())
	}
	if len(authorizedTenants) == 0 {
		// A caller without tenant membership works in the personal
		// default workspace instead of being rejected.
		authorizedTenants = []string{model.DefaultTenantID}
	}

	// Identity is populated before any tenant check so that token-only
	// policies still see who the caller is.
	id.UserID = claims.UserID
	id.AuthorizedTenantIDs = authorizedTenants
	id.CallerType = identity.CallerTypeUser
	id.Roles = a.resolveRoles(claims, user, "")

	if !opts.RequireTenant {
		return nil
	}

	if req.TenantSwitchHeader == "" {
		return fmt.Errorf("tenant required but absent%w", model.ErrTenantUnauthorized)
	}
	tenantID, err := model.NormalizeTenantID(req.TenantSwitchHeader)
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrTenantUnauthorized)
	}

	systemAdmin := user != nil && user.SystemAdmin
	impersonating := false
	if tenantID != model.DefaultTenantID && !lo.Contains(authorizedTenants, tenantID) {
		if !systemAdmin {
			err := fmt.Errorf("tenant %q not in authorized set%w", tenantID, model.ErrTenantUnauthorized)
			if fromCache {
				return retryableError{err: err}
			}
			return err
		}
		impersonating = true
		a.auditImpersonation(claims.UserID, tenantID)
	}

	if opts.RequireTenantConfig {
		if err := a.checkTenantExists(ctx, tenantID); err != nil {
			return err
		}
	}

	roles := a.resolveRoles(claims, user, tenantID)
	if len(opts.RequiredRoles) > 0 {
		held := lo.SomeBy(opts.RequiredRoles, func(required string) bool {
			return lo.ContainsBy(roles, func(role string) bool {
				return strings.EqualFold(role, required)
			})
		})
		if !held {
			err := fmt.Errorf("none of the required roles held%w", model.ErrRoleInsufficient)
			if fromCache {
				return retryableError{err: err}
			}
			return err
		}
	}

	id.TenantID = tenantID
	id.Roles = roles
	id.Impersonating = impersonating
	return nil
}

// validateToken resolves claims for the token, consulting the claims cache
// unless bypassing. Only successful validations are cached: a rejected
// credential that gets fixed out-of-band is retried promptly.
func (a *_Authorizer) validateToken(ctx context.Context, token string, bypassCache bool) (identity_provider.TokenClaims, bool, error) {
	if !bypassCache {
		value, ok, err := a.claimsCache.Get(ctx, claimsKeyPrefix+token)
		if err != nil {
			// A cache-layer hiccup becomes a retryable upstream failure:
			// the bypass attempt goes straight to the provider.
			logrus.Warnf("TokenAuthorizer::validateToken(): fail to read cache: %v", err)
			return identity_provider.TokenClaims{}, false, fmt.Errorf("claims cache unavailable: %s%w", err.Error(), model.ErrUpstreamUnavailable)
		}
		if ok {
			claims := identity_provider.TokenClaims{}
			if err := json.Unmarshal(value, &claims); err == nil {
				return claims, true, nil
			}
			logrus.Warnf("TokenAuthorizer::validateToken(): corrupt cache entry, revalidating")
		}
	}

	claims, err := a.provider.ValidateToken(ctx, token)
	if err != nil {
		return identity_provider.TokenClaims{}, false, err
	}

	if value, err := json.Marshal(claims); err == nil {
		if err := a.claimsCache.Set(ctx, claimsKeyPrefix+token, value, a.claimsTTL); err != nil {
			logrus.Warnf("TokenAuthorizer::validateToken(): fail to write cache: %v", err)
		}
	}
	return claims, false, nil
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing token%w", model.ErrCredentialMissing)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("missing token%w", model.ErrCredentialMissing)
	}
	return strings.TrimSpace(parts[1]), nil
}

// lookupUser returns the local user record, or nil when the caller is only
// known to the external provider.
func (a *_Authorizer) lookupUser(ctx context.Context, userID string) (*model.User, error) {
	tx, ctx, err := a.userStorage.CreateTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("user store unavailable: %s%w", err.Error(), model.ErrUpstreamUnavailable)
	}
	defer tx.Rollback(ctx)

	result, err := a.userStorage.ListUsers(ctx, tx, storage.ListUsersRequest{
		IDs:   []string{userID},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("user store unavailable: %s%w", err.Error(), model.ErrUpstreamUnavailable)
	}
	if len(result.Users) == 0 {
		return nil, nil
	}
	user := result.Users[0]
	if user.Status != model.UserStatusActive {
		return nil, fmt.Errorf("user %q is inactive%w", userID, model.ErrIdentityUnknown)
	}
	return &user, nil
}

func (a *_Authorizer) checkTenantExists(ctx context.Context, tenantID string) error {
	tx, ctx, err := a.tenantStorage.CreateTx(ctx)
	if err != nil {
		return fmt.Errorf("tenant store unavailable: %s%w", err.Error(), model.ErrUpstreamUnavailable)
	}
	defer tx.Rollback(ctx)

	result, err := a.tenantStorage.ListTenants(ctx, tx, storage.ListTenantsRequest{
		IDs:   []string{tenantID},
		Limit: 1,
	})
	if err != nil {
		return fmt.Errorf("tenant store unavailable: %s%w", err.Error(), model.ErrUpstreamUnavailable)
	}
	if len(result.Tenants) == 0 {
		return fmt.Errorf("tenant %q has no configuration%w", tenantID, model.ErrTenantUnknown)
	}
	return nil
}

// resolveRoles merges provider-claimed roles with locally assigned roles for
// the selected tenant. With an empty tenantID only tenant-independent roles
// are returned.
func (a *_Authorizer) resolveRoles(claims identity_provider.TokenClaims, user *model.User, tenantID string) []string {
	roles := append([]string{}, claims.Roles...)
	if user != nil {
		if tenantID != "" {
			roles = append(roles, user.TenantRoles[tenantID]...)
		}
		if user.SystemAdmin {
			roles = append(roles, model.SystemAdminRole)
		}
	}
	return lo.Uniq(roles)
}

func (a *_Authorizer) auditImpersonation(userID, tenantID string) {
	logrus.Infof("TokenAuthorizer: system admin %s impersonating tenant %s", userID, tenantID)
	if a.sink == nil {
		return
	}
	event := util.NewUUID()
	a.sink.Enqueue(func() {
		logrus.Infof("audit: event=%s impersonation user=%s tenant=%s caller=user", event, userID, tenantID)
	})
}
