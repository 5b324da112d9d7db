// Package domain defines the application security state: trust anchors,
// claiming lifecycle, and the device identity key.
//
// An application starts unclaimed. Claiming installs one or more trust
// anchors (root-of-trust public keys) together with an initial policy, after
// which the authorization engine enforces policy on every request. Reset
// removes the anchors and returns the application to the unclaimed state.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationState is the claiming lifecycle state advertised to controllers.
type ApplicationState string

const (
	// StateNotClaimable indicates claiming is administratively disabled.
	StateNotClaimable ApplicationState = "not_claimable"

	// StateClaimable indicates the application accepts a Claim request.
	StateClaimable ApplicationState = "claimable"

	// StateClaimed indicates at least one trust anchor is installed.
	StateClaimed ApplicationState = "claimed"

	// StateNeedUpdate indicates the installed policy is stale and must be
	// replaced before normal operation resumes.
	StateNeedUpdate ApplicationState = "need_update"
)

// ClaimCapability is a bitmask of the authentication suites a device accepts
// for claiming.
type ClaimCapability uint16

const (
	// CapableECDHENull accepts unauthenticated key agreement for claiming.
	CapableECDHENull ClaimCapability = 0x01

	// CapableECDHEPSK accepts pre-shared-key authentication for claiming.
	CapableECDHEPSK ClaimCapability = 0x02

	// CapableECDHEECDSA accepts certificate authentication for claiming.
	CapableECDHEECDSA ClaimCapability = 0x04

	// CapableECDHESPEKE accepts password-authenticated key exchange for claiming.
	CapableECDHESPEKE ClaimCapability = 0x08
)

// SuiteCapable reports whether the capability mask declares the given
// authentication suite acceptable for claiming. Unknown suites are never
// acceptable.
func SuiteCapable(caps ClaimCapability, suite string) bool {
	switch suite {
	case "ECDHE_NULL":
		return caps&CapableECDHENull == CapableECDHENull
	case "ECDHE_PSK":
		return caps&CapableECDHEPSK == CapableECDHEPSK
	case "ECDHE_SPEKE":
		return caps&CapableECDHESPEKE == CapableECDHESPEKE
	case "ECDHE_ECDSA":
		return caps&CapableECDHEECDSA == CapableECDHEECDSA
	}
	return false
}

// TrustAnchor is an installed root-of-trust public key. Its presence marks
// the application as claimed.
type TrustAnchor struct {
	ID        uuid.UUID
	PublicKey string
	GroupID   uuid.UUID
	CreatedAt time.Time
}

// SecurityState is the persisted security configuration of the application.
type SecurityState struct {
	ApplicationState    ApplicationState
	ClaimCapabilities   ClaimCapability
	ClaimCapabilityInfo string
	ClaimPasscodeHash   string
	SealedIdentityKey   []byte
	PublicKey           string
	UpdatedAt           time.Time
}

// ClaimInput contains the parameters for claiming the application.
type ClaimInput struct {
	TrustAnchors   []TrustAnchor
	SecurityGroups []uuid.UUID
	AuthSuite      string
	Passcode       string
	SelfClaim      bool
}
