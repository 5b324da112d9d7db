package domain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/allisson/busguard/internal/errors"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
)

// SecurityState exposes the application security configuration the engine
// consults on every decision.
type SecurityState interface {
	// HasTrustAnchors reports whether the application is claimed.
	HasTrustAnchors(ctx context.Context) (bool, error)

	// ClaimCapabilities returns the authentication suites accepted for
	// claiming.
	ClaimCapabilities(ctx context.Context) (securityDomain.ClaimCapability, error)

	// LocalPublicKey returns the application's own identity public key.
	LocalPublicKey(ctx context.Context) (string, error)

	// ActivePolicy returns the currently installed policy. It returns an
	// error wrapping apperrors.ErrNotFound when none is installed.
	ActivePolicy(ctx context.Context) (*policyDomain.Policy, error)
}

// TrustResolver resolves what the session layer knows about a peer's keys.
type TrustResolver interface {
	// PeerTrust returns the trust facts for the peer. It returns an error
	// wrapping apperrors.ErrKeyUnavailable when the peer's session secret
	// has expired.
	PeerTrust(ctx context.Context, peerID uuid.UUID) (*peerDomain.TrustMetadata, error)
}

// PermissionManager authorizes bus messages against the installed policy and
// the peers' manifests.
type PermissionManager struct {
	security             SecurityState
	trust                TrustResolver
	strictGetAllOutgoing bool
	logger               *slog.Logger
}

// NewPermissionManager builds the engine. strictGetAllOutgoing controls
// whether outgoing bulk property reads require a wildcard property grant;
// incoming ones never do.
func NewPermissionManager(security SecurityState, trust TrustResolver, strictGetAllOutgoing bool, logger *slog.Logger) *PermissionManager {
	return &PermissionManager{
		security:             security,
		trust:                trust,
		strictGetAllOutgoing: strictGetAllOutgoing,
		logger:               logger,
	}
}

// AuthorizeMessage decides whether the message may pass. Only method calls
// and signals are enforced. It returns nil when the message is allowed,
// ErrDenied when rejected, and ErrInvalidData when the message cannot be
// classified. authenticated reports whether the peer completed
// authentication; unauthenticated peers are evaluated as untrusted.
func (m *PermissionManager) AuthorizeMessage(ctx context.Context, outgoing bool, msg Message, peer *peerDomain.Peer, authenticated bool) error {
	if msg.Type != MessageTypeMethodCall && msg.Type != MessageTypeSignal {
		return nil
	}
	if StandardInterface(msg.Interface) {
		return nil
	}

	req, err := ClassifyMessage(outgoing, msg)
	if err != nil {
		return err
	}

	if m.security == nil {
		// Without a security module there is nothing to authorize against.
		return ErrDenied
	}

	if PermissionManagementInterface(req.InterfaceName) {
		handled, allowed, err := m.authorizePermissionMgmt(ctx, req, peer)
		if err != nil {
			return err
		}
		if handled {
			if allowed {
				return nil
			}
			m.logDenied(req, peer, "permission management rule")
			return ErrDenied
		}
	}

	claimed, err := m.security.HasTrustAnchors(ctx)
	if err != nil {
		return err
	}
	if !claimed {
		// Unclaimed applications only refuse method calls on the
		// permission-management surface; everything else passes.
		if PermissionManagementInterface(req.InterfaceName) && req.MemberType == policyDomain.MemberTypeMethodCall {
			m.logDenied(req, peer, "unclaimed")
			return ErrDenied
		}
		return nil
	}

	allowed, err := m.isAuthorized(ctx, req, peer, authenticated)
	if err != nil {
		return err
	}
	if !allowed {
		m.logDenied(req, peer, "policy")
		return ErrDenied
	}
	return nil
}

// AuthorizeGetProperty decides whether a property value may be disclosed to
// the peer before it is read. Unclaimed applications disclose freely.
func (m *PermissionManager) AuthorizeGetProperty(ctx context.Context, objectPath, interfaceName, propertyName string, peer *peerDomain.Peer) error {
	if m.security == nil {
		return ErrDenied
	}
	claimed, err := m.security.HasTrustAnchors(ctx)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	req := NewPropertyRequest(objectPath, interfaceName, propertyName)
	allowed, err := m.isAuthorized(ctx, req, peer, true)
	if err != nil {
		return err
	}
	if !allowed {
		m.logDenied(req, peer, "policy")
		return ErrDenied
	}
	return nil
}

// isAuthorized runs the two-phase check: the installed policy must grant the
// required action, and for peers that exchanged an identity the manifests
// must also cover it.
func (m *PermissionManager) isAuthorized(ctx context.Context, req *Request, peer *peerDomain.Peer, authenticated bool) (bool, error) {
	required := RequiredRight(req)
	if required == 0 {
		return true, nil
	}

	policy, err := m.security.ActivePolicy(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if policy == nil {
		return false, nil
	}

	posture, err := m.resolvePosture(ctx, peer, authenticated)
	if err != nil {
		return false, err
	}

	strictGetAll := req.Outgoing && m.strictGetAllOutgoing
	allowed, denied := policyAuthorized(policy, req, required, peer, posture, strictGetAll)
	if denied || !allowed {
		return false, nil
	}
	if posture.enforceManifest {
		return manifestAuthorized(peer.Manifests, req, required, strictGetAll), nil
	}
	return true, nil
}

// resolvePosture derives the trust posture for the call. The local peer is
// trusted with the application's own key and no manifest check. Remote peers
// are trusted when a key exchange completed, or when a legacy mechanism
// authenticated them without one. Only an authenticated session can lift the
// manifest ceiling: an unauthenticated peer stays untrusted and its (empty)
// manifest set still gates whatever an all-peers rule grants.
func (m *PermissionManager) resolvePosture(ctx context.Context, peer *peerDomain.Peer, authenticated bool) (*trustPosture, error) {
	posture := &trustPosture{enforceManifest: true}
	if !authenticated {
		return posture, nil
	}
	if peer.Local {
		key, err := m.security.LocalPublicKey(ctx)
		if err != nil {
			return nil, err
		}
		posture.trusted = true
		posture.publicKey = key
		posture.enforceManifest = false
		return posture, nil
	}

	meta, err := m.trust.PeerTrust(ctx, peer.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrKeyUnavailable) {
			// Session secret expired: treat the peer as untrusted and skip
			// manifest enforcement rather than fail the request.
			posture.enforceManifest = false
			return posture, nil
		}
		return nil, err
	}
	switch {
	case meta.KeyFound:
		posture.trusted = true
		posture.publicKey = meta.PublicKey
		posture.issuerChain = meta.IssuerChain
	case peerDomain.LegacyTrustMechanism(meta.AuthMechanism):
		posture.trusted = true
		posture.enforceManifest = false
	default:
		posture.enforceManifest = false
	}
	return posture, nil
}

// authorizePermissionMgmt applies the fixed rules for the security
// interfaces. handled reports whether the decision is final; when false the
// request falls through to policy evaluation.
func (m *PermissionManager) authorizePermissionMgmt(ctx context.Context, req *Request, peer *peerDomain.Peer) (handled, allowed bool, err error) {
	if req.Outgoing {
		// Responses and notifications we produce on these interfaces are
		// always permitted.
		return true, true, nil
	}
	if req.MemberName == "" {
		return false, false, nil
	}

	claimed, err := m.security.HasTrustAnchors(ctx)
	if err != nil {
		return false, false, err
	}

	// Member names dispatch by prefix on these interfaces.
	switch req.InterfaceName {
	case InterfaceSecurityClaimable:
		switch {
		case strings.HasPrefix(req.MemberName, "Version"):
			return true, true, nil
		case strings.HasPrefix(req.MemberName, "Claim"):
			if claimed {
				return true, false, nil
			}
			if peer.Local {
				return true, true, nil
			}
			caps, err := m.security.ClaimCapabilities(ctx)
			if err != nil {
				return false, false, err
			}
			return true, securityDomain.SuiteCapable(caps, peer.AuthSuite), nil
		}
	case InterfaceSecurityManaged:
		if !claimed {
			return true, false, nil
		}
		if strings.HasPrefix(req.MemberName, "Version") {
			return true, true, nil
		}
	case InterfaceSecurityApplication:
		if strings.HasPrefix(req.MemberName, "Version") ||
			strings.HasPrefix(req.MemberName, "ApplicationState") {
			return true, true, nil
		}
		if !claimed && unclaimedReadableProperty(req.MemberName) {
			return true, true, nil
		}
	}
	return false, false, nil
}

// unclaimedReadableProperty lists the application properties a prospective
// claimer may read before any trust anchor is installed. Matched by prefix,
// like the rest of the permission-management dispatch.
func unclaimedReadableProperty(name string) bool {
	prefixes := []string{
		"ManifestTemplateDigest",
		"EccPublicKey",
		"ManufacturerCertificate",
		"ManifestTemplate",
		"ClaimCapabilities",
		"ClaimCapabilityAdditionalInfo",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (m *PermissionManager) logDenied(req *Request, peer *peerDomain.Peer, reason string) {
	if m.logger == nil {
		return
	}
	m.logger.Debug("message denied",
		slog.String("object_path", req.ObjectPath),
		slog.String("interface", req.InterfaceName),
		slog.String("member", req.MemberName),
		slog.String("peer_id", peer.ID.String()),
		slog.String("reason", reason),
	)
}
