package pkix

import (
	"crypto/x509"
	"fmt"

	"golang.org/x/crypto/pkcs12"
)

// KeyContainerEntry is one certificate found inside a PKCS#12 key container,
// together with its private key when the container carries one for it.
type KeyContainerEntry struct {
	Cert       *x509.Certificate
	PrivateKey interface{} // nil when the container has no key for this certificate.
}

// HasPrivateKey reports whether the entry carries a usable private key.
func (e KeyContainerEntry) HasPrivateKey() bool {
	return e.PrivateKey != nil
}

// IsCA reports whether the certificate is marked as a CA by its
// Basic-Constraints extension.
func (e KeyContainerEntry) IsCA() bool {
	return e.Cert.BasicConstraintsValid && e.Cert.IsCA
}

// String renders the entry for diagnostics when no suitable signing
// certificate can be selected from a container.
func (e KeyContainerEntry) String() string {
	return fmt.Sprintf(
		"subject=%q issuer=%q has_private_key=%t is_ca=%t",
		e.Cert.Subject.String(), e.Cert.Issuer.String(), e.HasPrivateKey(), e.IsCA(),
	)
}

// DecodeKeyContainer decodes a password protected PKCS#12 container and pairs
// every embedded certificate with its private key. Keys are matched to
// certificates by public key comparison, so the order of the safe bags inside
// the container does not matter.
func DecodeKeyContainer(container []byte, password string) ([]KeyContainerEntry, error) {
	pemBlocks, err := pkcs12.ToPEM(container, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key container: %w", err)
	}

	certs := make([]*x509.Certificate, 0, len(pemBlocks))
	keys := make([]interface{}, 0, len(pemBlocks))
	for _, block := range pemBlocks {
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate in key container: %w", err)
			}
			certs = append(certs, cert)
			continue
		}

		key, err := parseKeyContainerKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key in key container: %w", err)
		}
		keys = append(keys, key)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("key container holds no certificate")
	}

	entries := make([]KeyContainerEntry, 0, len(certs))
	for _, cert := range certs {
		entry := KeyContainerEntry{Cert: cert}
		for _, key := range keys {
			if IsPublicKeyOf(key, cert.PublicKey) {
				entry.PrivateKey = key
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseKeyContainerKey(der []byte) (interface{}, error) {
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	return x509.ParsePKCS1PrivateKey(der)
}
