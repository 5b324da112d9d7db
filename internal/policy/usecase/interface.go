// Package usecase defines business logic interfaces for policy management.
package usecase

import (
	"context"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// PolicyRepository defines persistence operations for installed policies.
// Implementations must support transaction-aware operations via context propagation.
type PolicyRepository interface {
	// Create stores a new policy version.
	Create(ctx context.Context, policy *policyDomain.Policy) error

	// GetActive retrieves the highest installed policy version. Returns
	// ErrPolicyNotFound when no policy is installed.
	GetActive(ctx context.Context) (*policyDomain.Policy, error)

	// List retrieves installed policy versions, newest first.
	List(ctx context.Context, offset, limit int) ([]*policyDomain.Policy, error)

	// DeleteAll removes every installed policy.
	DeleteAll(ctx context.Context) error
}

// PolicyUseCase defines business logic operations for policy management.
type PolicyUseCase interface {
	// Install persists the policy as a new version. The version must be
	// greater than the active one; otherwise an error wrapping
	// apperrors.ErrConflict is returned. Authorization decisions made
	// against an earlier version are unaffected by the install.
	Install(ctx context.Context, policy *policyDomain.Policy) error

	// GetActive retrieves the highest installed policy version.
	GetActive(ctx context.Context) (*policyDomain.Policy, error)

	// List retrieves installed policy versions, newest first.
	List(ctx context.Context, offset, limit int) ([]*policyDomain.Policy, error)

	// DeleteAll removes every installed policy, reverting the application to
	// deny-by-default for policy-checked requests.
	DeleteAll(ctx context.Context) error
}
