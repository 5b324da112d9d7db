// Package usecase defines business logic interfaces for connected-peer
// management and trust resolution.
package usecase

import (
	"context"

	"github.com/google/uuid"

	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// PeerRepository defines persistence operations for registered peers.
// Implementations must support transaction-aware operations via context propagation.
type PeerRepository interface {
	// Create stores a new peer in the repository.
	Create(ctx context.Context, peer *peerDomain.Peer) error

	// Update modifies an existing peer in the repository.
	Update(ctx context.Context, peer *peerDomain.Peer) error

	// Get retrieves a peer by ID. Returns ErrPeerNotFound if not found.
	Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error)

	// List retrieves peers ordered by ID descending with pagination support.
	List(ctx context.Context, offset, limit int) ([]*peerDomain.Peer, error)

	// Delete removes a peer by ID. Returns ErrPeerNotFound if not found.
	Delete(ctx context.Context, peerID uuid.UUID) error
}

// PeerUseCase defines business logic operations for peer management and the
// trust lookups the authorization engine performs.
type PeerUseCase interface {
	// Register stores a connected peer together with what the session layer
	// established about it.
	Register(ctx context.Context, input *peerDomain.RegisterPeerInput) (*peerDomain.Peer, error)

	// Get retrieves a peer by ID.
	Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error)

	// List retrieves peers with pagination support.
	List(ctx context.Context, offset, limit int) ([]*peerDomain.Peer, error)

	// Delete removes a peer by ID.
	Delete(ctx context.Context, peerID uuid.UUID) error

	// InstallManifests replaces the peer's signed manifests.
	InstallManifests(ctx context.Context, peerID uuid.UUID, rules [][]policyDomain.Rule) error

	// InstallMemberships replaces the peer's membership certificate chains.
	InstallMemberships(ctx context.Context, peerID uuid.UUID, memberships []peerDomain.CertificateChain) error

	// PeerTrust resolves the trust facts for a peer. Returns an error
	// wrapping apperrors.ErrKeyUnavailable when the peer's session has
	// expired.
	PeerTrust(ctx context.Context, peerID uuid.UUID) (*peerDomain.TrustMetadata, error)
}
