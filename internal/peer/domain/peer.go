// Package domain defines connected-peer state used by the authorization engine.
//
// A peer record captures what the authentication layer established about a
// remote endpoint: the mechanism and suite it authenticated with, the public
// key it proved possession of, the issuer chain of its identity certificate,
// and the membership certificate chains and manifests it presented. The
// engine only ever reads snapshots of this state.
package domain

import (
	"time"

	"github.com/google/uuid"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// Authentication mechanisms reported by the session layer. The pre-shared,
// password and logon mechanisms establish trust without exchanging an ECDSA
// identity, so manifests are not enforced for them.
const (
	AuthMechanismECDHENull  = "ECDHE_NULL"
	AuthMechanismECDHEPSK   = "ECDHE_PSK"
	AuthMechanismECDHESPEKE = "ECDHE_SPEKE"
	AuthMechanismECDHEECDSA = "ECDHE_ECDSA"
	AuthMechanismSRP        = "SRP_KEYX"
	AuthMechanismSRPLogon   = "SRP_LOGON"
)

// LegacyTrustMechanism reports whether the mechanism authenticates a peer
// without a public key exchange. Such peers are trusted but have no manifest
// to enforce.
func LegacyTrustMechanism(mechanism string) bool {
	switch mechanism {
	case AuthMechanismECDHEPSK, AuthMechanismSRP, AuthMechanismSRPLogon:
		return true
	}
	return false
}

// CertificateType distinguishes certificates in a peer-presented chain.
type CertificateType string

const (
	// CertificateTypeIdentity marks an identity certificate.
	CertificateTypeIdentity CertificateType = "identity"

	// CertificateTypeMembership marks a security-group membership certificate.
	CertificateTypeMembership CertificateType = "membership"
)

// Certificate is the already-validated digest of a certificate the transport
// layer verified. Only the fields the authorization engine consults are kept.
type Certificate struct {
	Type             CertificateType `json:"type"`
	GroupID          uuid.UUID       `json:"group_id,omitempty"`
	SubjectPublicKey string          `json:"subject_public_key"`
}

// CertificateChain is a verified chain, leaf first.
type CertificateChain []Certificate

// Leaf returns the chain's leaf certificate, or nil for an empty chain.
func (c CertificateChain) Leaf() *Certificate {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// Peer is a registered bus peer and the trust facts the session layer
// established for it. The record is read-only during authorization.
type Peer struct {
	ID            uuid.UUID
	Local         bool
	AuthMechanism string
	AuthSuite     string
	PublicKey     string
	IssuerChain   []string
	Memberships   []CertificateChain
	Manifests     []policyDomain.Manifest
	SessionExpiry time.Time
	CreatedAt     time.Time
}

// SessionExpired reports whether the peer's session secret has aged out.
// Trust lookups for expired sessions report the key as unavailable.
func (p *Peer) SessionExpired(now time.Time) bool {
	return !p.SessionExpiry.IsZero() && now.After(p.SessionExpiry)
}

// TrustMetadata is what a trust lookup established about a peer for one
// authorization call. The authorization engine derives the trusted and
// manifest-enforcement decisions from these raw facts.
type TrustMetadata struct {
	// KeyFound reports whether a session key exchange completed and the
	// peer's public key is known.
	KeyFound bool

	// PublicKey is the peer's exchanged public key, empty when none was
	// exchanged.
	PublicKey string

	// IssuerChain lists the public keys of the peer's identity certificate
	// issuers, leaf issuer first.
	IssuerChain []string

	// AuthMechanism is the mechanism the peer authenticated with.
	AuthMechanism string
}

// RegisterPeerInput contains the parameters for registering a connected peer.
type RegisterPeerInput struct {
	AuthMechanism string
	AuthSuite     string
	PublicKey     string
	IssuerChain   []string
	Memberships   []CertificateChain
}
