package cert_authority_test

import (
	"crypto/rand"
	"crypto/x509"
	gopkix "crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_authority"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	tgpkix "github.com/tenantguard/tenantguard/pkg/pkix"
)

func newContainerEntry(t *testing.T, cn string, isCA bool, withKey bool) tgpkix.KeyContainerEntry {
	t.Helper()

	privKey, err := tgpkix.CreateECDSAPrivateKey()
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               gopkix.Name{CommonName: cn},
		IsCA:                  isCA,
		BasicConstraintsValid: true,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(10, 0, 0),
	}
	if isCA {
		template.KeyUsage = x509.KeyUsageCertSign
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privKey.PublicKey, privKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(certBytes)
	require.NoError(t, err)

	entry := tgpkix.KeyContainerEntry{Cert: cert}
	if withKey {
		entry.PrivateKey = privKey
	}
	return entry
}

func TestSelectRootMaterial(t *testing.T) {
	leafWithKey := newContainerEntry(t, "leaf with key", false, true)
	caWithoutKey := newContainerEntry(t, "ca without key", true, false)
	caWithKey := newContainerEntry(t, "ca with key", true, true)

	// The CA certificate with a private key wins regardless of order.
	root, err := cert_authority.SelectRootMaterial([]tgpkix.KeyContainerEntry{leafWithKey, caWithoutKey, caWithKey})
	require.NoError(t, err)
	assert.Equal(t, caWithKey.Cert, root.Cert)
	assert.Equal(t, caWithKey.PrivateKey, root.PrivateKey)
	assert.Equal(t, tgpkix.GetFingerPrint(caWithKey.Cert), root.Thumbprint())
}

func TestSelectRootMaterialSelfSignedFallback(t *testing.T) {
	leafWithKey := newContainerEntry(t, "self signed with key", false, true)
	caWithoutKey := newContainerEntry(t, "ca without key", true, false)

	root, err := cert_authority.SelectRootMaterial([]tgpkix.KeyContainerEntry{caWithoutKey, leafWithKey})
	require.NoError(t, err)
	assert.Equal(t, leafWithKey.Cert, root.Cert)
	assert.Equal(t, leafWithKey.PrivateKey, root.PrivateKey)
}

func TestSelectRootMaterialNoUsableEntry(t *testing.T) {
	caWithoutKey := newContainerEntry(t, "orphan ca", true, false)
	leafWithoutKey := newContainerEntry(t, "orphan leaf", false, false)

	_, err := cert_authority.SelectRootMaterial([]tgpkix.KeyContainerEntry{caWithoutKey, leafWithoutKey})
	require.ErrorIs(t, err, model.ErrRootCertInvalid)

	// The error names every embedded certificate for diagnostics.
	assert.Contains(t, err.Error(), "orphan ca")
	assert.Contains(t, err.Error(), "orphan leaf")
}

func TestRootProviderRemembersLoadFailure(t *testing.T) {
	provider := cert_authority.NewRootProviderFromContainer([]byte("not a container"), "secret")

	_, err1 := provider.Get()
	require.Error(t, err1)
	_, err2 := provider.Get()
	assert.Equal(t, err1, err2)
}

func TestRootProviderFromMaterial(t *testing.T) {
	entry := newContainerEntry(t, "in memory root", true, true)
	material := cert_authority.RootMaterial{Cert: entry.Cert, PrivateKey: entry.PrivateKey}

	provider := cert_authority.NewRootProviderFromMaterial(material)
	got, err := provider.Get()
	require.NoError(t, err)
	assert.Equal(t, material, got)
}
