// Package usecase implements business logic orchestration for peer management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// peerUseCase implements PeerUseCase.
type peerUseCase struct {
	txManager  database.TxManager
	peerRepo   PeerRepository
	sessionTTL time.Duration
	now        func() time.Time
}

// Register stores a connected peer. The session expiry is derived from the
// configured TTL; once it passes, trust lookups report the key as
// unavailable until the peer re-authenticates.
func (p *peerUseCase) Register(ctx context.Context, input *peerDomain.RegisterPeerInput) (*peerDomain.Peer, error) {
	now := p.now().UTC()
	peer := &peerDomain.Peer{
		ID:            uuid.Must(uuid.NewV7()),
		AuthMechanism: input.AuthMechanism,
		AuthSuite:     input.AuthSuite,
		PublicKey:     input.PublicKey,
		IssuerChain:   input.IssuerChain,
		Memberships:   input.Memberships,
		SessionExpiry: now.Add(p.sessionTTL),
		CreatedAt:     now,
	}
	if err := p.peerRepo.Create(ctx, peer); err != nil {
		return nil, err
	}
	return peer, nil
}

// Get retrieves a peer by ID.
func (p *peerUseCase) Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error) {
	return p.peerRepo.Get(ctx, peerID)
}

// List retrieves peers with pagination support.
func (p *peerUseCase) List(ctx context.Context, offset, limit int) ([]*peerDomain.Peer, error) {
	return p.peerRepo.List(ctx, offset, limit)
}

// Delete removes a peer by ID.
func (p *peerUseCase) Delete(ctx context.Context, peerID uuid.UUID) error {
	return p.peerRepo.Delete(ctx, peerID)
}

// InstallManifests replaces the peer's signed manifests.
func (p *peerUseCase) InstallManifests(ctx context.Context, peerID uuid.UUID, rules [][]policyDomain.Rule) error {
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		peer, err := p.peerRepo.Get(ctx, peerID)
		if err != nil {
			return err
		}
		now := p.now().UTC()
		peer.Manifests = nil
		for _, manifestRules := range rules {
			peer.Manifests = append(peer.Manifests, policyDomain.Manifest{
				ID:        uuid.Must(uuid.NewV7()),
				PeerID:    peer.ID,
				Rules:     manifestRules,
				CreatedAt: now,
			})
		}
		return p.peerRepo.Update(ctx, peer)
	})
}

// InstallMemberships replaces the peer's membership certificate chains.
func (p *peerUseCase) InstallMemberships(ctx context.Context, peerID uuid.UUID, memberships []peerDomain.CertificateChain) error {
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		peer, err := p.peerRepo.Get(ctx, peerID)
		if err != nil {
			return err
		}
		peer.Memberships = memberships
		return p.peerRepo.Update(ctx, peer)
	})
}

// PeerTrust resolves the trust facts for a peer. An expired session reports
// the key as unavailable; the engine then treats the peer as untrusted
// instead of failing the request.
func (p *peerUseCase) PeerTrust(ctx context.Context, peerID uuid.UUID) (*peerDomain.TrustMetadata, error) {
	peer, err := p.peerRepo.Get(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if peer.SessionExpired(p.now()) {
		return nil, apperrors.Wrapf(apperrors.ErrKeyUnavailable, "session for peer %s expired", peerID)
	}
	return &peerDomain.TrustMetadata{
		KeyFound:      peer.PublicKey != "",
		PublicKey:     peer.PublicKey,
		IssuerChain:   peer.IssuerChain,
		AuthMechanism: peer.AuthMechanism,
	}, nil
}

// NewPeerUseCase creates a new PeerUseCase with the provided dependencies.
func NewPeerUseCase(txManager database.TxManager, peerRepo PeerRepository, sessionTTL time.Duration) PeerUseCase {
	return &peerUseCase{
		txManager:  txManager,
		peerRepo:   peerRepo,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}
