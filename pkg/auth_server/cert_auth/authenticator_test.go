package cert_auth_test

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	gopkix "crypto/x509/pkix"
	"encoding/base64"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/tenantguard/tenantguard/pkg/auth_server/cache"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_auth"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_authority"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
	tgpkix "github.com/tenantguard/tenantguard/pkg/pkix"
	mock_cache "github.com/tenantguard/tenantguard/test/mock/auth_server/cache"
	mock_storage "github.com/tenantguard/tenantguard/test/mock/auth_server/storage"
)

type AuthenticatorTestSuite struct {
	suite.Suite

	ctrl    *gomock.Controller
	ctx     context.Context
	storage *mock_storage.MockAuthStorage
	tx      *mock_storage.MockTx
	cache   *cache.MemoryCache
	root    cert_authority.RootMaterial
	auth    cert_auth.Authenticator
}

func TestAuthenticatorTestSuite(t *testing.T) {
	suite.Run(t, new(AuthenticatorTestSuite))
}

func (s *AuthenticatorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.storage = mock_storage.NewMockAuthStorage(s.ctrl)
	s.tx = mock_storage.NewMockTx(s.ctrl)
	s.cache = cache.NewMemoryCache()
	s.root = s.newRootMaterial()
	s.auth = cert_auth.NewAuthenticator(s.storage, cert_authority.NewRootProviderFromMaterial(s.root), s.cache, nil)
}

func (s *AuthenticatorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthenticatorTestSuite) newRootMaterial() cert_authority.RootMaterial {
	privKey, err := tgpkix.CreateECDSAPrivateKey()
	s.Require().NoError(err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               gopkix.Name{CommonName: "Test Root CA"},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		IsCA:                  true,
		BasicConstraintsValid: true,
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privKey.PublicKey, privKey)
	s.Require().NoError(err)
	cert, err := x509.ParseCertificate(certBytes)
	s.Require().NoError(err)
	return cert_authority.RootMaterial{Cert: cert, PrivateKey: privKey}
}

// issueLeaf signs a client certificate for tenantID/userID with the given
// root. extKeyUsage controls the EKU extension of the leaf.
func (s *AuthenticatorTestSuite) issueLeaf(root cert_authority.RootMaterial, tenantID, userID string, extKeyUsage []x509.ExtKeyUsage) *x509.Certificate {
	privKey, err := tgpkix.CreateECDSAPrivateKey()
	s.Require().NoError(err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: gopkix.Name{
			CommonName:         userID + "@" + tenantID,
			Organization:       []string{tenantID},
			OrganizationalUnit: []string{userID},
		},
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           extKeyUsage,
		BasicConstraintsValid: true,
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().AddDate(1, 0, 0),
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, &template, root.Cert, &privKey.PublicKey, root.PrivateKey)
	s.Require().NoError(err)
	cert, err := x509.ParseCertificate(certBytes)
	s.Require().NoError(err)
	return cert
}

func authHeader(cert *x509.Certificate) string {
	return "Bearer " + base64.StdEncoding.EncodeToString(cert.Raw)
}

func (s *AuthenticatorTestSuite) expectValidationQueries(thumbprint string, certs []model.Cert, tenants []model.Tenant) {
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(0)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, storage.ListCertsRequest{Thumbprints: []string{thumbprint}, Limit: 1}).Return(
			storage.ListCertsResult{Total: int64(len(certs)), Certs: certs}, nil,
		),
		s.storage.EXPECT().ListTenants(gomock.Any(), s.tx, gomock.Any()).Return(
			storage.ListTenantsResult{Total: int64(len(tenants)), Tenants: tenants}, nil,
		).MaxTimes(1),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)
}

func (s *AuthenticatorTestSuite) expectUserLookup(users []model.User) {
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(0)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListUsers(gomock.Any(), s.tx, gomock.Any()).Return(
			storage.ListUsersResult{Total: int64(len(users)), Users: users}, nil,
		),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)
}

func (s *AuthenticatorTestSuite) TestAuthenticate() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})
	thumbprint := tgpkix.GetFingerPrint(leaf)
	user := model.User{
		ID:          "agent-1",
		Status:      model.UserStatusActive,
		TenantRoles: map[string][]string{"acme": {"operator"}},
	}

	s.expectValidationQueries(thumbprint, nil, []model.Tenant{{ID: "acme", Status: model.TenantStatusActive}})
	s.expectUserLookup([]model.User{user})

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().NoError(err)
	s.Assert().Equal("agent-1", id.UserID)
	s.Assert().Equal("acme", id.TenantID)
	s.Assert().Equal([]string{"acme"}, id.AuthorizedTenantIDs)
	s.Assert().Equal([]string{"operator"}, id.Roles)
	s.Assert().Equal(identity.CallerTypeAgent, id.CallerType)
	s.Assert().False(id.Impersonating)

	// The verdict is cached, so the second call skips full validation and
	// only resolves the user.
	value, ok, err := s.cache.Get(s.ctx, "certvalid:"+thumbprint)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Assert().Equal("valid", string(value))

	s.expectUserLookup([]model.User{user})
	id = identity.Identity{}
	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().NoError(err)
	s.Assert().Equal("agent-1", id.UserID)
}

func (s *AuthenticatorTestSuite) TestAuthenticateRevokedCertificate() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})
	thumbprint := tgpkix.GetFingerPrint(leaf)
	revoked := model.Cert{
		Thumbprint:       thumbprint,
		Status:           model.CertStatusRevoked,
		RevocationReason: "compromised",
	}

	s.expectValidationQueries(thumbprint, []model.Cert{revoked}, nil)

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialRevoked)

	// The negative verdict is cached, so the second call fails without
	// touching storage.
	id = identity.Identity{}
	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateForeignRoot() {
	otherRoot := s.newRootMaterial()
	leaf := s.issueLeaf(otherRoot, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, nil)

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateExpiredCertificate() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, nil)

	id := identity.Identity{}
	ts := time.Now().AddDate(2, 0, 0).Unix()
	err := s.auth.Authenticate(s.ctx, ts, cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateMissingClientAuthUsage() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, nil)

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateUnknownTenant() {
	leaf := s.issueLeaf(s.root, "ghost", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, nil)

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateUnknownUser() {
	leaf := s.issueLeaf(s.root, "acme", "ghost", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, []model.Tenant{{ID: "acme"}})
	s.expectUserLookup(nil)

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrIdentityUnknown)
}

func (s *AuthenticatorTestSuite) TestAuthenticateInactiveUser() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})

	s.expectValidationQueries(tgpkix.GetFingerPrint(leaf), nil, []model.Tenant{{ID: "acme"}})
	s.expectUserLookup([]model.User{{ID: "agent-1", Status: model.UserStatusInactive}})

	id := identity.Identity{}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrIdentityUnknown)
}

func (s *AuthenticatorTestSuite) TestAuthenticateMalformedCredential() {
	id := identity.Identity{}

	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialMissing)

	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: "Basic abc"}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialMissing)

	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: "Bearer not-base64!!"}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialMissing)

	garbage := base64.StdEncoding.EncodeToString([]byte("not a certificate"))
	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), cert_auth.AuthenticateRequest{AuthorizationHeader: "Bearer " + garbage}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialInvalid)
}

func (s *AuthenticatorTestSuite) TestAuthenticateTenantSwitch() {
	leaf := s.issueLeaf(s.root, "acme", "agent-1", []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth})
	thumbprint := tgpkix.GetFingerPrint(leaf)

	// Non-admin requesting a foreign tenant is rejected.
	s.expectValidationQueries(thumbprint, nil, []model.Tenant{{ID: "acme"}})
	s.expectUserLookup([]model.User{{
		ID:          "agent-1",
		Status:      model.UserStatusActive,
		TenantRoles: map[string][]string{"acme": {"operator"}},
	}})

	id := identity.Identity{}
	req := cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf), TenantSwitchHeader: "globex"}
	err := s.auth.Authenticate(s.ctx, time.Now().Unix(), req, &id)
	s.Require().ErrorIs(err, model.ErrTenantUnauthorized)

	// System admin may impersonate a foreign tenant.
	admin := model.User{
		ID:          "agent-1",
		Status:      model.UserStatusActive,
		TenantRoles: map[string][]string{"acme": {"operator"}},
		SystemAdmin: true,
	}
	s.expectUserLookup([]model.User{admin})

	id = identity.Identity{}
	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), req, &id)
	s.Require().NoError(err)
	s.Assert().Equal("globex", id.TenantID)
	s.Assert().True(id.Impersonating)
	s.Assert().Contains(id.Roles, model.SystemAdminRole)

	// Switching to the certificate's own tenant is not impersonation.
	s.expectUserLookup([]model.User{admin})

	id = identity.Identity{}
	req.TenantSwitchHeader = "ACME"
	err = s.auth.Authenticate(s.ctx, time.Now().Unix(), req, &id)
	s.Require().NoError(err)
	s.Assert().Equal("acme", id.TenantID)
	s.Assert().False(id.Impersonating)
}

// TestIssueAuthenticateRevokeRoundTrip drives the full certificate lifecycle
// through the real authority and authenticator sharing one root.
func (s *AuthenticatorTestSuite) TestIssueAuthenticateRevokeRoundTrip() {
	ts := time.Now().Unix()
	ca := cert_authority.NewCertAuthority(s.storage, s.storage, cert_authority.NewRootProviderFromMaterial(s.root), nil)

	var storedCert model.Cert
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListTenants(gomock.Any(), s.tx, storage.ListTenantsRequest{IDs: []string{"acme"}, Limit: 1}).Return(
			storage.ListTenantsResult{Total: 1, Tenants: []model.Tenant{{ID: "acme", Status: model.TenantStatusActive}}}, nil,
		),
		s.storage.EXPECT().StoreCert(gomock.Any(), s.tx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, tx storage.Tx, cert model.Cert) error {
				storedCert = cert
				return nil
			},
		),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	bundle, err := ca.IssueClientCertificate(s.ctx, ts, cert_authority.IssueClientCertificateRequest{
		Requester: "admin",
		TenantID:  "acme",
		UserID:    "alice",
	})
	s.Require().NoError(err)

	leafs, err := tgpkix.ParseCertificate([]byte(bundle.Cert.Certificate))
	s.Require().NoError(err)
	s.Require().NotEmpty(leafs)
	leaf := leafs[0]

	user := model.User{
		ID:          "alice",
		Status:      model.UserStatusActive,
		TenantRoles: map[string][]string{"acme": {"operator"}},
	}
	s.expectValidationQueries(bundle.Cert.Thumbprint, []model.Cert{storedCert}, []model.Tenant{{ID: "acme", Status: model.TenantStatusActive}})
	s.expectUserLookup([]model.User{user})

	id := identity.Identity{}
	err = s.auth.Authenticate(s.ctx, ts, cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().NoError(err)
	s.Assert().Equal("acme", id.TenantID)
	s.Assert().Equal("alice", id.UserID)

	// Revoke and authenticate again with the same credential. The cached
	// "valid" verdict must not survive the revocation.
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, storage.ListCertsRequest{Thumbprints: []string{bundle.Cert.Thumbprint}, Limit: 1}).Return(
			storage.ListCertsResult{Total: 1, Certs: []model.Cert{storedCert}}, nil,
		),
		s.storage.EXPECT().StoreCert(gomock.Any(), s.tx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, tx storage.Tx, cert model.Cert) error {
				storedCert = cert
				return nil
			},
		),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)
	revoked, err := s.auth.Revoke(s.ctx, ts, cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: bundle.Cert.Thumbprint,
		Reason:     "compromised",
	})
	s.Require().NoError(err)
	s.Require().True(revoked)

	s.expectValidationQueries(bundle.Cert.Thumbprint, []model.Cert{storedCert}, []model.Tenant{{ID: "acme", Status: model.TenantStatusActive}})
	id = identity.Identity{}
	err = s.auth.Authenticate(s.ctx, ts, cert_auth.AuthenticateRequest{AuthorizationHeader: authHeader(leaf)}, &id)
	s.Require().ErrorIs(err, model.ErrCredentialRevoked)
}

func (s *AuthenticatorTestSuite) TestRevoke() {
	ts := time.Now().Unix()
	thumbprint := "0123456789abcdef0123456789abcdef01234567"
	existing := model.Cert{
		Thumbprint: thumbprint,
		Version:    1,
		Status:     model.CertStatusActive,
		TenantID:   "acme",
		UserID:     "agent-1",
	}

	s.Require().NoError(s.cache.Set(s.ctx, "certvalid:"+thumbprint, []byte("valid"), time.Minute))

	var receivedCert model.Cert
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, storage.ListCertsRequest{Thumbprints: []string{thumbprint}, Limit: 1}).Return(
			storage.ListCertsResult{Total: 1, Certs: []model.Cert{existing}}, nil,
		),
		s.storage.EXPECT().StoreCert(gomock.Any(), s.tx, gomock.Any()).DoAndReturn(
			func(ctx context.Context, tx storage.Tx, cert model.Cert) error {
				receivedCert = cert
				return nil
			},
		),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	revoked, err := s.auth.Revoke(s.ctx, ts, cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: thumbprint,
		Reason:     "key compromised",
	})
	s.Require().NoError(err)
	s.Require().True(revoked)

	s.Assert().Equal(model.CertStatusRevoked, receivedCert.Status)
	s.Assert().Equal(int64(2), receivedCert.Version)
	s.Assert().Equal(ts, receivedCert.RevokedAt)
	s.Assert().Equal("admin", receivedCert.RevokedBy)
	s.Assert().Equal("key compromised", receivedCert.RevocationReason)

	// The cached verdict is evicted before Revoke returns.
	_, ok, err := s.cache.Get(s.ctx, "certvalid:"+thumbprint)
	s.Require().NoError(err)
	s.Assert().False(ok)
}

func (s *AuthenticatorTestSuite) TestRevokeUnknownCertificate() {
	thumbprint := "0123456789abcdef0123456789abcdef01234567"
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, gomock.Any()).Return(storage.ListCertsResult{}, nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	revoked, err := s.auth.Revoke(s.ctx, time.Now().Unix(), cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: thumbprint,
		Reason:     "cleanup",
	})
	s.Require().NoError(err)
	s.Assert().False(revoked)
}

func (s *AuthenticatorTestSuite) TestRevokeAlreadyRevoked() {
	thumbprint := "0123456789abcdef0123456789abcdef01234567"
	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, gomock.Any()).Return(
			storage.ListCertsResult{Total: 1, Certs: []model.Cert{{Thumbprint: thumbprint, Status: model.CertStatusRevoked}}}, nil,
		),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	revoked, err := s.auth.Revoke(s.ctx, time.Now().Unix(), cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: thumbprint,
		Reason:     "cleanup",
	})
	s.Require().NoError(err)
	s.Assert().False(revoked)
}

func (s *AuthenticatorTestSuite) TestRevokeFailsWhenEvictionFails() {
	thumbprint := "0123456789abcdef0123456789abcdef01234567"
	verdictCache := mock_cache.NewMockValidationCache(s.ctrl)
	auth := cert_auth.NewAuthenticator(s.storage, cert_authority.NewRootProviderFromMaterial(s.root), verdictCache, nil)

	gomock.InOrder(
		s.storage.EXPECT().CreateTx(gomock.Any(), gomock.Len(2)).Return(s.tx, s.ctx, nil),
		s.storage.EXPECT().ListCerts(gomock.Any(), s.tx, gomock.Any()).Return(
			storage.ListCertsResult{Total: 1, Certs: []model.Cert{{Thumbprint: thumbprint, Status: model.CertStatusActive}}}, nil,
		),
		s.storage.EXPECT().StoreCert(gomock.Any(), s.tx, gomock.Any()).Return(nil),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	verdictCache.EXPECT().Delete(gomock.Any(), "certvalid:"+thumbprint).Return(errors.New("cache down")).Times(3)
	s.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	revoked, err := auth.Revoke(s.ctx, time.Now().Unix(), cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: thumbprint,
		Reason:     "cleanup",
	})
	s.Require().Error(err)
	s.Assert().False(revoked)
}

func (s *AuthenticatorTestSuite) TestRevokeInvalidRequest() {
	_, err := s.auth.Revoke(s.ctx, time.Now().Unix(), cert_auth.RevokeCertificateRequest{
		Requester: "admin",
		Reason:    "cleanup",
	})
	s.Require().ErrorIs(err, model.ErrInvalidParameter)

	_, err = s.auth.Revoke(s.ctx, time.Now().Unix(), cert_auth.RevokeCertificateRequest{
		Requester:  "admin",
		Thumbprint: "not-a-thumbprint",
		Reason:     "cleanup",
	})
	s.Require().ErrorIs(err, model.ErrInvalidParameter)
}
