package pkix

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"time"
)

// Verify builds the chain of trust of certs against rootCerts.
//
// The first certificate in certs is the end-entity certificate. The rest are
// intermediate certificates. Only rootCerts are trusted; the system
// preinstalled trust store is intentionally not consulted because the root of
// this deployment is self-hosted.
//
// The returned chains follow the x509 convention: each chain starts with the
// end-entity certificate and ends with a root certificate.
func Verify(certs []*x509.Certificate, rootCerts []*x509.Certificate, ts int64) ([][]*x509.Certificate, error) {
	if len(certs) == 0 {
		return nil, errors.New("no certificate provided")
	}
	if len(rootCerts) == 0 {
		return nil, errors.New("no root certificate provided")
	}

	rootPool := x509.NewCertPool()
	for _, rootCert := range rootCerts {
		rootPool.AddCert(rootCert)
	}
	intermediatePool := x509.NewCertPool()
	for _, intermediateCert := range certs[1:] {
		intermediatePool.AddCert(intermediateCert)
	}

	options := x509.VerifyOptions{
		Roots:         rootPool,
		Intermediates: intermediatePool,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		CurrentTime:   time.Unix(ts, 0),
	}

	chains, err := certs[0].Verify(options)
	if err != nil {
		return nil, err
	}
	return chains, nil
}

func CreateECDSAPrivateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

func ParsePrivateKey(key []byte) (interface{}, error) {
	pemBlock, _ := pem.Decode(key)
	if pemBlock == nil {
		return nil, errors.New("invalid private key")
	}

	ecPrivateKey, ecErr := x509.ParseECPrivateKey(pemBlock.Bytes)
	if ecErr == nil {
		return ecPrivateKey, nil
	}

	privKey, pkcs8Err := x509.ParsePKCS8PrivateKey(pemBlock.Bytes)
	if pkcs8Err == nil {
		return privKey, nil
	}

	// Fallback to PKCS1
	privKey, pkcs1Err := x509.ParsePKCS1PrivateKey(pemBlock.Bytes)
	if pkcs1Err == nil {
		return privKey, nil
	}

	return nil, pkcs8Err
}

func MarshalPrivateKey(key interface{}) (string, error) {
	raw, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", err
	}

	pemBlock := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: raw,
	}
	return string(pem.EncodeToMemory(pemBlock)), nil
}

func ParseCertificate(certRaw []byte) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0, 4)
	for {
		pemBlock, remains := pem.Decode(certRaw)
		if pemBlock == nil {
			return nil, errors.New("invalid certificate")
		}

		cert, err := x509.ParseCertificate(pemBlock.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)

		if len(remains) == 0 {
			break
		}
		certRaw = remains
	}

	return certs, nil
}

func MarshalCertificates(certs ...*x509.Certificate) (string, error) {
	if len(certs) == 0 {
		return "", errors.New("no certificate provided")
	}

	buf := make([]byte, 0, 4096)
	for _, cert := range certs {
		pemBlock := &pem.Block{
			Type:  "CERTIFICATE",
			Bytes: cert.Raw,
		}
		buf = append(buf, pem.EncodeToMemory(pemBlock)...)
	}
	return string(buf), nil
}

// GetFingerPrint returns the thumbprint of the certificate: the SHA-1 digest
// of its DER encoding in lowercase hex.
func GetFingerPrint(cert *x509.Certificate) string {
	hashValue := sha1.Sum(cert.Raw)
	return hex.EncodeToString(hashValue[:])
}

// IsPublicKeyOf reports whether pubKey is the public part of privKey.
func IsPublicKeyOf(privKey interface{}, pubKey interface{}) bool {
	switch privKey := privKey.(type) {
	case *rsa.PrivateKey:
		rsaPubKey, ok := pubKey.(*rsa.PublicKey)
		return ok && privKey.PublicKey.Equal(rsaPubKey)
	case *ecdsa.PrivateKey:
		ecdsaPubKey, ok := pubKey.(*ecdsa.PublicKey)
		return ok && privKey.PublicKey.Equal(ecdsaPubKey)
	}
	return false
}
