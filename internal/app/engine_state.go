package app

import (
	"context"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
)

// policyProvider is the slice of the policy use case the authorization engine
// reads from.
type policyProvider interface {
	GetActive(ctx context.Context) (*policyDomain.Policy, error)
}

// engineState adapts the security and policy use cases to the security state
// view the authorization engine consumes.
type engineState struct {
	security securityUseCase.SecurityUseCase
	policies policyProvider
}

func (e *engineState) HasTrustAnchors(ctx context.Context) (bool, error) {
	return e.security.HasTrustAnchors(ctx)
}

func (e *engineState) ClaimCapabilities(ctx context.Context) (securityDomain.ClaimCapability, error) {
	return e.security.ClaimCapabilities(ctx)
}

func (e *engineState) LocalPublicKey(ctx context.Context) (string, error) {
	return e.security.LocalPublicKey(ctx)
}

func (e *engineState) ActivePolicy(ctx context.Context) (*policyDomain.Policy, error) {
	return e.policies.GetActive(ctx)
}

func newEngineState(security securityUseCase.SecurityUseCase, policies policyProvider) *engineState {
	return &engineState{security: security, policies: policies}
}
