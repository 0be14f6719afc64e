package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Patterns accepted for identity fields before they reach storage or
// comparison logic.
var (
	IdentifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.@-]*$`)
	ThumbprintPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// NormalizeTenantID canonicalizes a tenant identifier: trimmed and lowercase.
// Returns ErrInvalidParameter when the result is not a valid identifier.
func NormalizeTenantID(tenantID string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(tenantID))
	if !IdentifierPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid tenant id %q%w", tenantID, ErrInvalidParameter)
	}
	return normalized, nil
}

// NormalizeUserID canonicalizes a user identifier. User IDs keep their case
// because external identity providers treat subjects as case-sensitive.
func NormalizeUserID(userID string) (string, error) {
	normalized := strings.TrimSpace(userID)
	if !IdentifierPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid user id %q%w", userID, ErrInvalidParameter)
	}
	return normalized, nil
}

// NormalizeThumbprint canonicalizes a certificate thumbprint to lowercase
// hex. Returns ErrInvalidParameter when it is not a SHA-1 hex digest.
func NormalizeThumbprint(thumbprint string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(thumbprint))
	if !ThumbprintPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid thumbprint %q%w", thumbprint, ErrInvalidParameter)
	}
	return normalized, nil
}

// NormalizeRevocationReason trims a revocation reason and rejects empty or
// oversized values.
func NormalizeRevocationReason(reason string) (string, error) {
	normalized := strings.TrimSpace(reason)
	if normalized == "" {
		return "", fmt.Errorf("revocation reason is required%w", ErrInvalidParameter)
	}
	if len(normalized) > 512 {
		return "", fmt.Errorf("revocation reason too long%w", ErrInvalidParameter)
	}
	return normalized, nil
}
