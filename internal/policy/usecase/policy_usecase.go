// Package usecase implements business logic orchestration for policy management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// policyUseCase implements PolicyUseCase.
type policyUseCase struct {
	txManager  database.TxManager
	policyRepo PolicyRepository
}

// Install persists the policy as a new version after checking it supersedes
// the active one. The read and the insert run in one transaction so two
// concurrent installs cannot both pass the version check.
func (p *policyUseCase) Install(ctx context.Context, policy *policyDomain.Policy) error {
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		active, err := p.policyRepo.GetActive(ctx)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if active != nil && policy.Version <= active.Version {
			return apperrors.Wrapf(
				policyDomain.ErrPolicyVersionTooOld,
				"version %d does not supersede active version %d",
				policy.Version, active.Version,
			)
		}

		if policy.ID == uuid.Nil {
			policy.ID = uuid.Must(uuid.NewV7())
		}
		if policy.CreatedAt.IsZero() {
			policy.CreatedAt = time.Now().UTC()
		}
		return p.policyRepo.Create(ctx, policy)
	})
}

// GetActive retrieves the highest installed policy version.
func (p *policyUseCase) GetActive(ctx context.Context) (*policyDomain.Policy, error) {
	return p.policyRepo.GetActive(ctx)
}

// List retrieves installed policy versions, newest first.
func (p *policyUseCase) List(ctx context.Context, offset, limit int) ([]*policyDomain.Policy, error) {
	return p.policyRepo.List(ctx, offset, limit)
}

// DeleteAll removes every installed policy.
func (p *policyUseCase) DeleteAll(ctx context.Context) error {
	return p.policyRepo.DeleteAll(ctx)
}

// NewPolicyUseCase creates a new PolicyUseCase with the provided dependencies.
func NewPolicyUseCase(txManager database.TxManager, policyRepo PolicyRepository) PolicyUseCase {
	return &policyUseCase{
		txManager:  txManager,
		policyRepo: policyRepo,
	}
}
