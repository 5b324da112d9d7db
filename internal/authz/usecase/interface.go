// Package usecase implements business logic orchestration for authorization checks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	authzDomain "github.com/allisson/busguard/internal/authz/domain"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
)

// PeerProvider loads registered peers for authorization checks.
type PeerProvider interface {
	Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error)
}

// DecisionRecorder persists decision audit log entries.
type DecisionRecorder interface {
	Record(ctx context.Context, log *auditDomain.DecisionLog) error
}

// CheckInput contains the parameters for a message authorization check.
type CheckInput struct {
	RequestID     uuid.UUID
	PeerID        uuid.UUID
	Outgoing      bool
	Authenticated bool
	Message       authzDomain.Message
}

// CheckPropertyInput contains the parameters for a single-property read check,
// used when a bulk property read is broken down per property.
type CheckPropertyInput struct {
	RequestID     uuid.UUID
	PeerID        uuid.UUID
	ObjectPath    string
	InterfaceName string
	PropertyName  string
}

// CheckOutput is the outcome of an authorization check.
type CheckOutput struct {
	Allowed bool
	Reason  string
}

// AuthzUseCase defines the authorization check operations. Denials are
// reported in the output, not as errors; errors mean the check itself could
// not be performed.
type AuthzUseCase interface {
	// Check authorizes a bus message for the given peer.
	Check(ctx context.Context, input *CheckInput) (*CheckOutput, error)

	// CheckProperty authorizes a single property read for the given peer.
	CheckProperty(ctx context.Context, input *CheckPropertyInput) (*CheckOutput, error)
}
