// Package domain contains the decision audit log entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// signatureSize is the length of an HMAC-SHA256 signature in bytes.
const signatureSize = 32

// DecisionLog records one authorization decision for compliance and security
// monitoring. Captures the peer, the message coordinates that were checked
// and the outcome, plus an HMAC signature for tamper detection.
type DecisionLog struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	PeerID        uuid.UUID
	ObjectPath    string
	InterfaceName string
	MemberName    string
	MemberType    string
	Outgoing      bool
	Allowed       bool
	Reason        string
	Metadata      map[string]any
	Signature     []byte
	CreatedAt     time.Time
}

// HasValidSignature reports whether the log carries a signature of the
// expected size. It does not verify the signature itself.
func (l *DecisionLog) HasValidSignature() bool {
	return len(l.Signature) == signatureSize
}

// IsUnsigned reports whether the log was recorded without a signature,
// which happens when signing is disabled.
func (l *DecisionLog) IsUnsigned() bool {
	return len(l.Signature) == 0
}

// VerificationReport summarizes a batch signature verification run.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	ValidCount    int64
	InvalidCount  int64
	UnsignedCount int64
	InvalidLogs   []uuid.UUID
}
