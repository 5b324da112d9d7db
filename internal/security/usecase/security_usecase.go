// Package usecase implements business logic orchestration for the claiming
// lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
	securityService "github.com/allisson/busguard/internal/security/service"
)

// securityUseCase implements SecurityUseCase.
type securityUseCase struct {
	txManager       database.TxManager
	stateRepo       SecurityStateRepository
	policyInstaller PolicyInstaller
	passcodeService securityService.PasscodeService
	identityService securityService.IdentityKeyService
}

// Claim installs the trust anchors and the initial policy. The claim is
// refused when the application is already claimed, when a remote claimer's
// authentication suite is not in the claim capabilities, or when a claim
// passcode is configured and the presented one does not match.
func (s *securityUseCase) Claim(ctx context.Context, input *securityDomain.ClaimInput) error {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return err
	}
	if state.ApplicationState == securityDomain.StateClaimed {
		return apperrors.Wrap(apperrors.ErrConflict, "application is already claimed")
	}
	if len(input.TrustAnchors) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "claim requires at least one trust anchor")
	}
	if !input.SelfClaim && !securityDomain.SuiteCapable(state.ClaimCapabilities, input.AuthSuite) {
		return apperrors.Wrapf(apperrors.ErrPermissionDenied, "auth suite %s not accepted for claiming", input.AuthSuite)
	}
	if state.ClaimPasscodeHash != "" {
		if !s.passcodeService.ComparePasscode(input.Passcode, state.ClaimPasscodeHash) {
			return apperrors.Wrap(apperrors.ErrPermissionDenied, "claim passcode mismatch")
		}
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.stateRepo.CreateTrustAnchors(ctx, input.TrustAnchors); err != nil {
			return err
		}
		if err := s.policyInstaller.Install(ctx, policyDomain.DefaultPolicy(input.SecurityGroups)); err != nil {
			return err
		}
		state.ApplicationState = securityDomain.StateClaimed
		state.UpdatedAt = time.Now().UTC()
		return s.stateRepo.UpdateState(ctx, state)
	})
}

// Reset removes the trust anchors and every installed policy, returning the
// application to the claimable state. The identity key survives a reset.
func (s *securityUseCase) Reset(ctx context.Context) error {
	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		state, err := s.stateRepo.GetState(ctx)
		if err != nil {
			return err
		}
		if err := s.stateRepo.DeleteTrustAnchors(ctx); err != nil {
			return err
		}
		if err := s.policyInstaller.DeleteAll(ctx); err != nil {
			return err
		}
		state.ApplicationState = securityDomain.StateClaimable
		state.UpdatedAt = time.Now().UTC()
		return s.stateRepo.UpdateState(ctx, state)
	})
}

// GetApplication returns the externally visible security posture.
func (s *securityUseCase) GetApplication(ctx context.Context) (*ApplicationOutput, error) {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return nil, err
	}
	anchors, err := s.stateRepo.ListTrustAnchors(ctx)
	if err != nil {
		return nil, err
	}
	return &ApplicationOutput{
		State:               state.ApplicationState,
		ClaimCapabilities:   state.ClaimCapabilities,
		ClaimCapabilityInfo: state.ClaimCapabilityInfo,
		PublicKey:           state.PublicKey,
		TrustAnchorCount:    len(anchors),
	}, nil
}

// SetClaimPasscode stores the hash of the claim passcode.
func (s *securityUseCase) SetClaimPasscode(ctx context.Context, plainPasscode string) error {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return err
	}
	hashed, err := s.passcodeService.HashPasscode(plainPasscode)
	if err != nil {
		return err
	}
	state.ClaimPasscodeHash = hashed
	state.UpdatedAt = time.Now().UTC()
	return s.stateRepo.UpdateState(ctx, state)
}

// EnsureIdentityKey generates and seals the device identity key when none
// exists yet.
func (s *securityUseCase) EnsureIdentityKey(ctx context.Context) error {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return err
	}
	if len(state.SealedIdentityKey) > 0 {
		return nil
	}
	sealed, publicPEM, err := s.identityService.GenerateIdentityKey(ctx)
	if err != nil {
		return err
	}
	state.SealedIdentityKey = sealed
	state.PublicKey = publicPEM
	state.UpdatedAt = time.Now().UTC()
	return s.stateRepo.UpdateState(ctx, state)
}

// HasTrustAnchors reports whether at least one trust anchor is installed.
func (s *securityUseCase) HasTrustAnchors(ctx context.Context) (bool, error) {
	anchors, err := s.stateRepo.ListTrustAnchors(ctx)
	if err != nil {
		return false, err
	}
	return len(anchors) > 0, nil
}

// ClaimCapabilities returns the accepted claiming suites.
func (s *securityUseCase) ClaimCapabilities(ctx context.Context) (securityDomain.ClaimCapability, error) {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return 0, err
	}
	return state.ClaimCapabilities, nil
}

// LocalPublicKey returns the device identity public key.
func (s *securityUseCase) LocalPublicKey(ctx context.Context) (string, error) {
	state, err := s.stateRepo.GetState(ctx)
	if err != nil {
		return "", err
	}
	return state.PublicKey, nil
}

// NewSecurityUseCase creates a new SecurityUseCase with the provided dependencies.
func NewSecurityUseCase(
	txManager database.TxManager,
	stateRepo SecurityStateRepository,
	policyInstaller PolicyInstaller,
	passcodeService securityService.PasscodeService,
	identityService securityService.IdentityKeyService,
) SecurityUseCase {
	return &securityUseCase{
		txManager:       txManager,
		stateRepo:       stateRepo,
		policyInstaller: policyInstaller,
		passcodeService: passcodeService,
		identityService: identityService,
	}
}
