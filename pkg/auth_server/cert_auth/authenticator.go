// Package cert_auth implements certificate-based authentication for machine
// callers: extraction of the presented certificate, validation against the
// self-hosted root, revocation handling, and identity construction.
package cert_auth

import (
	"context"
	"crypto/x509"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/audit"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cache"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_authority"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
	"github.com/tenantguard/tenantguard/pkg/pkix"
	"github.com/tenantguard/tenantguard/pkg/util"
)

const (
	// DefaultVerdictTTL bounds how long a validation verdict is reused
	// before chain building and revocation lookup run again.
	DefaultVerdictTTL = 5 * time.Minute

	verdictKeyPrefix = "certvalid:"
	verdictValid     = "valid"
	verdictInvalid   = "invalid"
)

type Authenticator interface {
	// Authenticate runs the certificate validation state machine and, on
	// success, populates id with the agent identity derived from the
	// certificate subject.
	Authenticate(ctx context.Context, ts int64, req AuthenticateRequest, id *identity.Identity) error

	// Revoke marks the certificate revoked and synchronously evicts its
	// validation verdict, so no validation that starts after Revoke returns
	// can still accept the certificate. Returns false when no record was
	// modified (unknown thumbprint, or already revoked).
	Revoke(ctx context.Context, ts int64, req RevokeCertificateRequest) (bool, error)
}

type AuthenticateRequest struct {
	AuthorizationHeader string `json:"authorization_header"` // "Bearer <base64 DER certificate>".
	TenantSwitchHeader  string `json:"tenant_switch_header"` // Optional X-Tenant-Id value.
}

type RevokeCertificateRequest struct {
	Requester  string `json:"requester"`  // Who makes the request.
	Thumbprint string `json:"thumbprint"` // Thumbprint of the certificate to be revoked.
	Reason     string `json:"reason"`     // Reason of the revocation.
}

type _Authenticator struct {
	certStorage   storage.CertStorage
	tenantStorage storage.TenantStorage
	userStorage   storage.UserStorage
	rootProvider  *cert_authority.RootProvider
	verdictCache  cache.ValidationCache
	verdictTTL    time.Duration
	sink          audit.Sink
}

type Option func(*_Authenticator)

func WithVerdictTTL(ttl time.Duration) Option {
	return func(a *_Authenticator) {
		a.verdictTTL = ttl
	}
}

func NewAuthenticator(
	authStorage storage.AuthStorage,
	rootProvider *cert_authority.RootProvider,
	verdictCache cache.ValidationCache,
	sink audit.Sink,
	opts ...Option,
) *_Authenticator {
	a := &_Authenticator{
		certStorage:   authStorage,
		tenantStorage: authStorage,
		userStorage:   authStorage,
		rootProvider:  rootProvider,
		verdictCache:  verdictCache,
		verdictTTL:    DefaultVerdictTTL,
		sink:          sink,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *_Authenticator) Authenticate(ctx context.Context, ts int64, req AuthenticateRequest, id *identity.Identity) error {
	leafCert, err := extractCredential(req.AuthorizationHeader)
	if err != nil {
		return err
	}
	thumbprint := pkix.GetFingerPrint(leafCert)

	valid, cached := a.lookupVerdict(ctx, thumbprint)
	if cached && !valid {
		return fmt.Errorf("certificate %s cached as invalid%w", thumbprint, model.ErrCredentialInvalid)
	}
	if !cached {
		if err := a.fullValidate(ctx, ts, thumbprint, leafCert); err != nil {
			return err
		}
	}

	return a.buildIdentity(ctx, leafCert, req.TenantSwitchHeader, id)
}

// extractCredential reads the raw certificate from an Authorization header of
// the form "Bearer <base64 DER>".
func extractCredential(header string) (*x509.Certificate, error) {
	if header == "" {
		return nil, fmt.Errorf("no valid certificate%w", model.ErrCredentialMissing)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("no valid certificate%w", model.ErrCredentialMissing)
	}

	rawCert, err := base64.StdEncoding.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("no valid certificate%w", model.ErrCredentialMissing)
	}
	cert, err := x509.ParseCertificate(rawCert)
	if err != nil {
		return nil, fmt.Errorf("malformed certificate: %s%w", err.Error(), model.ErrCredentialInvalid)
	}
	return cert, nil
}

// fullValidate runs the ordered validation steps, short-circuiting on the
// first failure. The verdict is cached either way; failure details are logged
// server-side only.
func (a *_Authenticator) fullValidate(ctx context.Context, ts int64, thumbprint string, leafCert *x509.Certificate) error {
	reasons, rejectKind, err := a.validateCertificate(ctx, ts, thumbprint, leafCert)
	if err != nil {
		return err
	}
	if len(reasons) > 0 {
		logrus.Warnf("CertAuthenticator::fullValidate(): certificate %s rejected: %s", thumbprint, strings.Join(reasons, "; "))
		a.storeVerdict(ctx, thumbprint, false)
		return fmt.Errorf("certificate %s rejected%w", thumbprint, rejectKind)
	}

	a.storeVerdict(ctx, thumbprint, true)
	return nil
}

// validateCertificate returns the list of validation failures together with
// the error kind of the rejection, or a non-nil error for infrastructure
// failures (storage outage) that must not be cached.
func (a *_Authenticator) validateCertificate(ctx context.Context, ts int64, thumbprint string, leafCert *x509.Certificate) (reasons []string, rejectKind error, err error) {
	root, err := a.rootProvider.Get()
	if err != nil {
		return nil, nil, err
	}

	tx, ctx, err := a.certStorage.CreateTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	// Revocation is tracked in the certificate store, not through X.509
	// CRLs, so it is checked before any chain work.
	certResult, err := a.certStorage.ListCerts(ctx, tx, storage.ListCertsRequest{
		Thumbprints: []string{thumbprint},
		Limit:       1,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(certResult.Certs) > 0 && certResult.Certs[0].Status == model.CertStatusRevoked {
		return []string{fmt.Sprintf("certificate revoked: %s", certResult.Certs[0].RevocationReason)}, model.ErrCredentialRevoked, nil
	}

	chains, err := pkix.Verify([]*x509.Certificate{leafCert}, []*x509.Certificate{root.Cert}, ts)
	if err != nil {
		return []string{fmt.Sprintf("chain build failed: %s", err.Error())}, model.ErrCredentialInvalid, nil
	}

	chain := chains[0]
	if pkix.GetFingerPrint(chain[len(chain)-1]) != root.Thumbprint() {
		return []string{"not signed by expected root"}, model.ErrCredentialInvalid, nil
	}

	hasClientAuth := false
	for _, usage := range leafCert.ExtKeyUsage {
		if usage == x509.ExtKeyUsageClientAuth || usage == x509.ExtKeyUsageAny {
			hasClientAuth = true
			break
		}
	}
	if !hasClientAuth {
		return []string{"missing client-authentication extended key usage"}, model.ErrCredentialInvalid, nil
	}

	if len(leafCert.Subject.Organization) == 0 || leafCert.Subject.Organization[0] == "" {
		return []string{"subject has no organization (tenant)"}, model.ErrCredentialInvalid, nil
	}
	tenantID, err := model.NormalizeTenantID(leafCert.Subject.Organization[0])
	if err != nil {
		return []string{fmt.Sprintf("invalid tenant in subject: %s", err.Error())}, model.ErrCredentialInvalid, nil
	}
	tenantResult, err := a.tenantStorage.ListTenants(ctx, tx, storage.ListTenantsRequest{
		IDs:   []string{tenantID},
		Limit: 1,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(tenantResult.Tenants) == 0 {
		return []string{fmt.Sprintf("unknown tenant %q", tenantID)}, model.ErrCredentialInvalid, nil
	}

	return nil, nil, nil
}

func (a *_Authenticator) buildIdentity(ctx context.Context, leafCert *x509.Certificate, tenantSwitch string, id *identity.Identity) error {
	if len(leafCert.Subject.Organization) == 0 || len(leafCert.Subject.OrganizationalUnit) == 0 {
		return fmt.Errorf("certificate subject carries no tenant/user%w", model.ErrCredentialInvalid)
	}
	tenantID, err := model.NormalizeTenantID(leafCert.Subject.Organization[0])
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrCredentialInvalid)
	}
	userID, err := model.NormalizeUserID(leafCert.Subject.OrganizationalUnit[0])
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrCredentialInvalid)
	}

	tx, ctx, err := a.userStorage.CreateTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userResult, err := a.userStorage.ListUsers(ctx, tx, storage.ListUsersRequest{
		IDs:   []string{userID},
		Limit: 1,
	})
	if err != nil {
		return err
	}
	if len(userResult.Users) == 0 || userResult.Users[0].Status != model.UserStatusActive {
		return fmt.Errorf("unknown user %q%w", userID, model.ErrIdentityUnknown)
	}
	user := userResult.Users[0]

	selectedTenant := tenantID
	impersonating := false
	if tenantSwitch != "" {
		requested, err := model.NormalizeTenantID(tenantSwitch)
		if err != nil {
			return fmt.Errorf("%s%w", err.Error(), model.ErrTenantUnauthorized)
		}
		if requested != tenantID {
			if !user.SystemAdmin {
				return fmt.Errorf("certificate tenant %q does not match requested tenant %q%w", tenantID, requested, model.ErrTenantUnauthorized)
			}
			impersonating = true
			a.auditImpersonation(user.ID, tenantID, requested)
		}
		selectedTenant = requested
	}

	id.UserID = user.ID
	id.TenantID = selectedTenant
	id.AuthorizedTenantIDs = user.AuthorizedTenants()
	id.Roles = user.RolesForTenant(selectedTenant)
	id.CallerType = identity.CallerTypeAgent
	id.Impersonating = impersonating
	return nil
}

func (a *_Authenticator) Revoke(ctx context.Context, ts int64, req RevokeCertificateRequest) (bool, error) {
	if err := ValidateRevokeCertificateRequest(req); err != nil {
		return false, err
	}
	thumbprint, err := model.NormalizeThumbprint(req.Thumbprint)
	if err != nil {
		return false, err
	}
	reason, err := model.NormalizeRevocationReason(req.Reason)
	if err != nil {
		return false, err
	}

	tx, ctx, err := a.certStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	certResult, err := a.certStorage.ListCerts(ctx, tx, storage.ListCertsRequest{
		Thumbprints: []string{thumbprint},
		Limit:       1,
	})
	if err != nil {
		return false, err
	}
	if len(certResult.Certs) == 0 {
		return false, nil
	}
	cert := certResult.Certs[0]
	if cert.Status == model.CertStatusRevoked {
		return false, nil
	}

	cert.Status = model.CertStatusRevoked
	cert.Version += 1
	cert.RevokedAt = ts
	cert.RevokedBy = req.Requester
	cert.RevocationReason = reason
	cert.UpdatedAt = ts

	if err := a.certStorage.StoreCert(ctx, tx, cert); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	// Write-through invalidation: the verdict must be gone before Revoke
	// returns. A revocation that leaves a stale "valid" entry behind is a
	// security defect, so eviction failure fails the call even though the
	// record is already revoked in storage.
	err = retry.Do(
		func() error {
			return a.verdictCache.Delete(ctx, verdictKeyPrefix+thumbprint)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logrus.Errorf("CertAuthenticator::Revoke(): fail to evict verdict of %s: %v", thumbprint, err)
		return false, fmt.Errorf("failed to evict validation verdict: %w", err)
	}

	a.auditRevoked(cert)
	return true, nil
}

func (a *_Authenticator) lookupVerdict(ctx context.Context, thumbprint string) (valid bool, cached bool) {
	value, ok, err := a.verdictCache.Get(ctx, verdictKeyPrefix+thumbprint)
	if err != nil {
		// A cache hiccup falls back to full validation instead of failing
		// the request.
		logrus.Warnf("CertAuthenticator::lookupVerdict(): fail to read cache: %v", err)
		return false, false
	}
	if !ok {
		return false, false
	}
	return string(value) == verdictValid, true
}

func (a *_Authenticator) storeVerdict(ctx context.Context, thumbprint string, valid bool) {
	verdict := verdictInvalid
	if valid {
		verdict = verdictValid
	}
	if err := a.verdictCache.Set(ctx, verdictKeyPrefix+thumbprint, []byte(verdict), a.verdictTTL); err != nil {
		logrus.Warnf("CertAuthenticator::storeVerdict(): fail to write cache: %v", err)
	}
}

func (a *_Authenticator) auditImpersonation(userID, ownTenant, requestedTenant string) {
	logrus.Infof("CertAuthenticator: system admin %s impersonating tenant %s (own tenant %s)", userID, requestedTenant, ownTenant)
	if a.sink == nil {
		return
	}
	event := util.NewUUID()
	a.sink.Enqueue(func() {
		logrus.Infof("audit: event=%s impersonation user=%s own_tenant=%s tenant=%s caller=agent", event, userID, ownTenant, requestedTenant)
	})
}

func (a *_Authenticator) auditRevoked(cert model.Cert) {
	if a.sink == nil {
		return
	}
	event := util.NewUUID()
	a.sink.Enqueue(func() {
		logrus.Infof("audit: event=%s certificate revoked thumbprint=%s tenant=%s user=%s reason=%q", event, cert.Thumbprint, cert.TenantID, cert.UserID, cert.RevocationReason)
	})
}
