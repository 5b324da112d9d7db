// Package usecase defines business logic interfaces for the application
// security state: claiming, reset, and identity key management.
package usecase

import (
	"context"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
)

// SecurityStateRepository defines persistence operations for the application
// security state and its trust anchors.
// Implementations must support transaction-aware operations via context propagation.
type SecurityStateRepository interface {
	// GetState retrieves the security state. A state row always exists after
	// migrations run.
	GetState(ctx context.Context) (*securityDomain.SecurityState, error)

	// UpdateState persists the security state.
	UpdateState(ctx context.Context, state *securityDomain.SecurityState) error

	// CreateTrustAnchors stores the trust anchors installed by a claim.
	CreateTrustAnchors(ctx context.Context, anchors []securityDomain.TrustAnchor) error

	// ListTrustAnchors retrieves all installed trust anchors.
	ListTrustAnchors(ctx context.Context) ([]securityDomain.TrustAnchor, error)

	// DeleteTrustAnchors removes all trust anchors.
	DeleteTrustAnchors(ctx context.Context) error
}

// PolicyInstaller abstracts the policy operations claiming needs: installing
// the initial policy and wiping policies on reset.
type PolicyInstaller interface {
	// Install persists the policy as the active one.
	Install(ctx context.Context, policy *policyDomain.Policy) error

	// DeleteAll removes every installed policy.
	DeleteAll(ctx context.Context) error
}

// ApplicationOutput is the externally visible security posture.
type ApplicationOutput struct {
	State               securityDomain.ApplicationState
	ClaimCapabilities   securityDomain.ClaimCapability
	ClaimCapabilityInfo string
	PublicKey           string
	TrustAnchorCount    int
}

// SecurityUseCase defines the claiming lifecycle operations.
type SecurityUseCase interface {
	// Claim installs the trust anchors and the initial policy, moving the
	// application to the claimed state. Returns an error wrapping
	// apperrors.ErrConflict when already claimed and
	// apperrors.ErrPermissionDenied when the authentication suite or
	// passcode is not acceptable.
	Claim(ctx context.Context, input *securityDomain.ClaimInput) error

	// Reset removes the trust anchors and every installed policy, returning
	// the application to the claimable state.
	Reset(ctx context.Context) error

	// GetApplication returns the externally visible security posture.
	GetApplication(ctx context.Context) (*ApplicationOutput, error)

	// SetClaimPasscode stores the hash of the passcode required for
	// password-based claiming.
	SetClaimPasscode(ctx context.Context, plainPasscode string) error

	// EnsureIdentityKey generates and seals the device identity key when
	// none exists yet.
	EnsureIdentityKey(ctx context.Context) error

	// HasTrustAnchors reports whether the application is claimed.
	HasTrustAnchors(ctx context.Context) (bool, error)

	// ClaimCapabilities returns the accepted claiming suites.
	ClaimCapabilities(ctx context.Context) (securityDomain.ClaimCapability, error)

	// LocalPublicKey returns the device identity public key.
	LocalPublicKey(ctx context.Context) (string, error)
}
