package cert_authority

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/pkix"
)

// RootMaterial is the root signing credential of the deployment. It is loaded
// once per process lifetime and read-only afterwards.
type RootMaterial struct {
	Cert       *x509.Certificate
	PrivateKey interface{}
}

// Thumbprint returns the thumbprint of the root certificate. Chain
// termination checks compare against this value.
func (r RootMaterial) Thumbprint() string {
	return pkix.GetFingerPrint(r.Cert)
}

type RootMaterialConfig struct {
	KeyContainerPath string `yaml:"key_container_path"` // Path to the PKCS#12 key container.
	Password         string `yaml:"password"`           // Password of the key container.
}

// RootProvider owns the root signing credential behind a lazily-initialized,
// thread-safe accessor. A load failure is remembered: the process cannot
// serve agent traffic and every Get returns the same error.
type RootProvider struct {
	loadFn func() (RootMaterial, error)

	once sync.Once
	root RootMaterial
	err  error
}

func NewRootProvider(cfg RootMaterialConfig) *RootProvider {
	return &RootProvider{
		loadFn: func() (RootMaterial, error) {
			container, err := os.ReadFile(cfg.KeyContainerPath)
			if err != nil {
				return RootMaterial{}, fmt.Errorf("failed to read key container %s: %w", cfg.KeyContainerPath, err)
			}
			return LoadRootMaterial(container, cfg.Password)
		},
	}
}

// NewRootProviderFromContainer builds a provider over an in-memory container.
func NewRootProviderFromContainer(container []byte, password string) *RootProvider {
	return &RootProvider{
		loadFn: func() (RootMaterial, error) {
			return LoadRootMaterial(container, password)
		},
	}
}

// NewRootProviderFromMaterial builds a provider over an already loaded
// credential.
func NewRootProviderFromMaterial(root RootMaterial) *RootProvider {
	return &RootProvider{
		loadFn: func() (RootMaterial, error) {
			return root, nil
		},
	}
}

func (p *RootProvider) Get() (RootMaterial, error) {
	p.once.Do(func() {
		p.root, p.err = p.loadFn()
		if p.err == nil {
			logrus.Infof("RootProvider::Get(): loaded root certificate %q thumbprint=%s", p.root.Cert.Subject.String(), p.root.Thumbprint())
		}
	})
	return p.root, p.err
}

// LoadRootMaterial selects the signing credential from a PKCS#12 key
// container.
func LoadRootMaterial(container []byte, password string) (RootMaterial, error) {
	entries, err := pkix.DecodeKeyContainer(container, password)
	if err != nil {
		return RootMaterial{}, err
	}
	return SelectRootMaterial(entries)
}

// SelectRootMaterial picks the signing credential among the entries of a key
// container.
//
// Selection order: a certificate whose Basic-Constraints extension marks it
// as a CA and which carries a usable private key; failing that, a
// self-signed certificate with a private key. When neither exists the error
// lists every embedded certificate so a malformed deployment can be
// diagnosed without opening the container by hand.
func SelectRootMaterial(entries []pkix.KeyContainerEntry) (RootMaterial, error) {
	if entry, ok := lo.Find(entries, func(e pkix.KeyContainerEntry) bool {
		return e.IsCA() && e.HasPrivateKey()
	}); ok {
		return RootMaterial{Cert: entry.Cert, PrivateKey: entry.PrivateKey}, nil
	}

	// Fallback for malformed containers that carry no CA-marked
	// certificate: accept a self-signed certificate with a private key.
	if entry, ok := lo.Find(entries, func(e pkix.KeyContainerEntry) bool {
		return e.HasPrivateKey() && e.Cert.Subject.String() == e.Cert.Issuer.String()
	}); ok {
		logrus.Warnf("SelectRootMaterial(): no CA certificate with private key in container, falling back to self-signed certificate %q", entry.Cert.Subject.String())
		return RootMaterial{Cert: entry.Cert, PrivateKey: entry.PrivateKey}, nil
	}

	descriptions := lo.Map(entries, func(e pkix.KeyContainerEntry, _ int) string {
		return e.String()
	})
	return RootMaterial{}, fmt.Errorf(
		"no usable signing certificate in key container; embedded certificates: [%s]%w",
		strings.Join(descriptions, "; "), model.ErrRootCertInvalid,
	)
}
