package cert_authority

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/audit"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
	tgpkix "github.com/tenantguard/tenantguard/pkg/pkix"
	"github.com/tenantguard/tenantguard/pkg/util"
)

const (
	// DefaultClientCertLifetime is the validity of issued client certificates.
	DefaultClientCertLifetime = 5 * 365 * 24 * time.Hour

	// clockSkewBuffer backdates the start of validity so a certificate is
	// usable on machines whose clocks lag the issuing server.
	clockSkewBuffer = 10 * time.Minute
)

type CertAuthority interface {
	// GetRootCertificate returns the root signing certificate of the
	// deployment. Failure means the process cannot serve agent traffic.
	GetRootCertificate(ctx context.Context) (*x509.Certificate, error)

	// IssueClientCertificate issues a short-lived client certificate whose
	// subject encodes the tenant (organization) and user (organizational
	// unit). The returned bundle carries the private key; it is never
	// persisted.
	IssueClientCertificate(ctx context.Context, ts int64, req IssueClientCertificateRequest) (model.CertBundle, error)

	ListCertificates(ctx context.Context, req storage.ListCertsRequest) (storage.ListCertsResult, error)
}

type IssueClientCertificateRequest struct {
	Requester string `json:"requester"` // Who makes the request.
	TenantID  string `json:"tenant_id"` // Tenant the certificate is issued for.
	UserID    string `json:"user_id"`   // User the certificate is issued to.

	// Lifetime of the certificate. DefaultClientCertLifetime when zero.
	Lifetime time.Duration `json:"lifetime"`
}

type _CertAuthority struct {
	certStorage   storage.CertStorage
	tenantStorage storage.TenantStorage
	rootProvider  *RootProvider
	sink          audit.Sink
}

func NewCertAuthority(certStorage storage.CertStorage, tenantStorage storage.TenantStorage, rootProvider *RootProvider, sink audit.Sink) *_CertAuthority {
	return &_CertAuthority{
		certStorage:   certStorage,
		tenantStorage: tenantStorage,
		rootProvider:  rootProvider,
		sink:          sink,
	}
}

func (ca *_CertAuthority) GetRootCertificate(ctx context.Context) (*x509.Certificate, error) {
	root, err := ca.rootProvider.Get()
	if err != nil {
		return nil, err
	}
	return root.Cert, nil
}

func (ca *_CertAuthority) IssueClientCertificate(ctx context.Context, ts int64, req IssueClientCertificateRequest) (model.CertBundle, error) {
	if err := ValidateIssueClientCertificateRequest(req); err != nil {
		return model.CertBundle{}, err
	}

	root, err := ca.rootProvider.Get()
	if err != nil {
		return model.CertBundle{}, err
	}

	lifetime := req.Lifetime
	if lifetime == 0 {
		lifetime = DefaultClientCertLifetime
	}
	now := time.Unix(ts, 0)
	notBefore := now.Add(-clockSkewBuffer)
	if notBefore.Before(root.Cert.NotBefore) {
		logrus.Warnf("CertAuthority::IssueClientCertificate(): proposed not-before %s precedes root validity, clamping to %s", notBefore, root.Cert.NotBefore)
		notBefore = root.Cert.NotBefore
	}
	notAfter := now.Add(lifetime)

	privKey, err := tgpkix.CreateECDSAPrivateKey()
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("failed to generate key pair: %w", err)
	}
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	certTemplate := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:         fmt.Sprintf("%s@%s", req.UserID, req.TenantID),
			Organization:       []string{req.TenantID},
			OrganizationalUnit: []string{req.UserID},
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  false,
	}

	rawCert, err := x509.CreateCertificate(rand.Reader, &certTemplate, root.Cert, &privKey.PublicKey, root.PrivateKey)
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("fail to CreateCertificate: %w", err)
	}
	leafCert, err := x509.ParseCertificate(rawCert)
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("fail to ParseCertificate: %w", err)
	}

	certPEM, err := tgpkix.MarshalCertificates(leafCert)
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("fail to MarshalCertificates: %w", err)
	}
	privKeyPEM, err := tgpkix.MarshalPrivateKey(privKey)
	if err != nil {
		return model.CertBundle{}, fmt.Errorf("fail to MarshalPrivateKey: %w", err)
	}

	cert := model.Cert{
		Thumbprint:  tgpkix.GetFingerPrint(leafCert),
		Version:     1,
		Status:      model.CertStatusActive,
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		Subject:     leafCert.Subject.String(),
		IssuedAt:    ts,
		NotBefore:   leafCert.NotBefore.Unix(),
		NotAfter:    leafCert.NotAfter.Unix(),
		Certificate: certPEM,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	tx, ctx, err := ca.certStorage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return model.CertBundle{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := ca.getTenant(ctx, tx, req.TenantID); err != nil {
		return model.CertBundle{}, err
	}
	if err := ca.certStorage.StoreCert(ctx, tx, cert); err != nil {
		return model.CertBundle{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.CertBundle{}, err
	}

	ca.auditIssued(cert)
	return model.CertBundle{
		Cert:       cert,
		PrivateKey: privKeyPEM,
	}, nil
}

func (ca *_CertAuthority) ListCertificates(ctx context.Context, req storage.ListCertsRequest) (storage.ListCertsResult, error) {
	if err := ValidateListCertsRequest(req); err != nil {
		return storage.ListCertsResult{}, err
	}

	tx, ctx, err := ca.certStorage.CreateTx(ctx)
	if err != nil {
		return storage.ListCertsResult{}, err
	}
	defer tx.Rollback(ctx)

	return ca.certStorage.ListCerts(ctx, tx, req)
}

func (ca *_CertAuthority) getTenant(ctx context.Context, tx storage.Tx, tenantID string) (model.Tenant, error) {
	req := storage.ListTenantsRequest{
		IDs:   []string{tenantID},
		Limit: 1,
	}

	resp, err := ca.tenantStorage.ListTenants(ctx, tx, req)
	if err != nil {
		return model.Tenant{}, err
	}
	if len(resp.Tenants) == 0 {
		return model.Tenant{}, model.ErrTenantNotFound
	}
	return resp.Tenants[0], nil
}

func (ca *_CertAuthority) auditIssued(cert model.Cert) {
	if ca.sink == nil {
		return
	}
	event := util.NewUUID()
	ca.sink.Enqueue(func() {
		logrus.Infof("audit: event=%s certificate issued thumbprint=%s tenant=%s user=%s not_after=%d", event, cert.Thumbprint, cert.TenantID, cert.UserID, cert.NotAfter)
	})
}
