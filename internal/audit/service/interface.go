// Package service provides cryptographic services for the decision audit log.
package service

import (
	auditDomain "github.com/allisson/busguard/internal/audit/domain"
)

// DecisionSigner signs and verifies decision audit logs. Implementations
// derive a dedicated signing key from the provided secret so the secret can
// be shared with other subsystems without reusing key material.
type DecisionSigner interface {
	// Sign generates a signature over the log's canonical representation.
	Sign(secret []byte, log *auditDomain.DecisionLog) ([]byte, error)

	// Verify checks the log's signature. Returns ErrSignatureInvalid when
	// the record was tampered with or signed with a different secret.
	Verify(secret []byte, log *auditDomain.DecisionLog) error
}
