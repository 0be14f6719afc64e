package model

type CertStatus string

const (
	CertStatusActive  CertStatus = "active"
	CertStatusRevoked CertStatus = "revoked"
)

// Cert is the durable record of an issued client certificate.
// It is created at issuance time and mutated only to set the revocation
// fields. Records are kept after revocation for audit.
type Cert struct {
	Thumbprint string     `json:"thumbprint"` // SHA-1 hex digest of the DER encoding of the certificate. Immutable.
	Version    int64      `json:"version"`    // Version of the record.
	Status     CertStatus `json:"status"`     // Status of the certificate.

	TenantID string `json:"tenant_id"` // Tenant encoded in the certificate subject (organization field).
	UserID   string `json:"user_id"`   // User the certificate was issued to (organizational-unit field).
	Subject  string `json:"subject"`   // Full subject name of the certificate.

	IssuedAt  int64 `json:"issued_at"`  // Unix Time (in second) when the certificate was issued.
	NotBefore int64 `json:"not_before"` // Unix Time (in second) when the certificate becomes valid.
	NotAfter  int64 `json:"not_after"`  // Unix Time (in second) when the certificate expires.

	RevokedAt        int64  `json:"revoked_at"`        // Unix Time (in second) when the certificate was revoked.
	RevokedBy        string `json:"revoked_by"`        // User who revoked the certificate.
	RevocationReason string `json:"revocation_reason"` // Reason of the revocation.

	Certificate string `json:"certificate"` // PEM encoded certificate. The first certificate is the leaf. Others are intermediates.

	CreatedAt int64 `json:"created_at"` // Unix Time (in second) when the record was created.
	UpdatedAt int64 `json:"updated_at"` // Unix Time (in second) when the record was last updated.
}

// CertBundle is the result of issuing a client certificate. It is returned to
// the caller once and the private key is never persisted by the server.
type CertBundle struct {
	Cert       Cert   `json:"cert"`
	PrivateKey string `json:"private_key"` // PEM encoded private key of the issued certificate.
}
