package pkix_test

import (
	"crypto/rand"
	"crypto/x509"
	gopkix "crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantguard/tenantguard/pkg/pkix"
)

func makeTestCert(t *testing.T, cn string, isCA bool) (*x509.Certificate, interface{}) {
	t.Helper()

	privKey, err := pkix.CreateECDSAPrivateKey()
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               gopkix.Name{CommonName: cn},
		IsCA:                  isCA,
		BasicConstraintsValid: true,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(1, 0, 0),
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privKey.PublicKey, privKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(certBytes)
	require.NoError(t, err)
	return cert, privKey
}

func TestKeyContainerEntry(t *testing.T) {
	caCert, caKey := makeTestCert(t, "container ca", true)
	leafCert, _ := makeTestCert(t, "container leaf", false)

	caEntry := pkix.KeyContainerEntry{Cert: caCert, PrivateKey: caKey}
	assert.True(t, caEntry.HasPrivateKey())
	assert.True(t, caEntry.IsCA())
	assert.Contains(t, caEntry.String(), "container ca")
	assert.Contains(t, caEntry.String(), "has_private_key=true")
	assert.Contains(t, caEntry.String(), "is_ca=true")

	leafEntry := pkix.KeyContainerEntry{Cert: leafCert}
	assert.False(t, leafEntry.HasPrivateKey())
	assert.False(t, leafEntry.IsCA())
	assert.Contains(t, leafEntry.String(), "has_private_key=false")
}

func TestDecodeKeyContainerInvalidData(t *testing.T) {
	_, err := pkix.DecodeKeyContainer([]byte("not a pkcs12 container"), "secret")
	assert.Error(t, err)
}
