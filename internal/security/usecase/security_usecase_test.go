package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/busguard/internal/errors"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
)

type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStateRepo struct {
	state   *securityDomain.SecurityState
	anchors []securityDomain.TrustAnchor
}

func (f *fakeStateRepo) GetState(_ context.Context) (*securityDomain.SecurityState, error) {
	return f.state, nil
}

func (f *fakeStateRepo) UpdateState(_ context.Context, state *securityDomain.SecurityState) error {
	f.state = state
	return nil
}

func (f *fakeStateRepo) CreateTrustAnchors(_ context.Context, anchors []securityDomain.TrustAnchor) error {
	f.anchors = append(f.anchors, anchors...)
	return nil
}

func (f *fakeStateRepo) ListTrustAnchors(_ context.Context) ([]securityDomain.TrustAnchor, error) {
	return f.anchors, nil
}

func (f *fakeStateRepo) DeleteTrustAnchors(_ context.Context) error {
	f.anchors = nil
	return nil
}

type fakePolicyInstaller struct {
	installed *policyDomain.Policy
}

func (f *fakePolicyInstaller) Install(_ context.Context, policy *policyDomain.Policy) error {
	f.installed = policy
	return nil
}

func (f *fakePolicyInstaller) DeleteAll(_ context.Context) error {
	f.installed = nil
	return nil
}

type fakePasscodeService struct{}

func (f *fakePasscodeService) HashPasscode(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (f *fakePasscodeService) ComparePasscode(plain string, hashed string) bool {
	return "hashed:"+plain == hashed
}

type fakeIdentityKeyService struct{}

func (f *fakeIdentityKeyService) GenerateIdentityKey(_ context.Context) ([]byte, string, error) {
	return []byte("sealed-key"), "public-pem", nil
}

func (f *fakeIdentityKeyService) PublicKey(_ context.Context, _ []byte) (string, error) {
	return "public-pem", nil
}

func newTestUseCase(state *securityDomain.SecurityState) (SecurityUseCase, *fakeStateRepo, *fakePolicyInstaller) {
	repo := &fakeStateRepo{state: state}
	installer := &fakePolicyInstaller{}
	uc := NewSecurityUseCase(&fakeTxManager{}, repo, installer, &fakePasscodeService{}, &fakeIdentityKeyService{})
	return uc, repo, installer
}

func claimableState() *securityDomain.SecurityState {
	return &securityDomain.SecurityState{
		ApplicationState:  securityDomain.StateClaimable,
		ClaimCapabilities: securityDomain.CapableECDHENull | securityDomain.CapableECDHEECDSA,
		UpdatedAt:         time.Now().UTC(),
	}
}

func claimInput() *securityDomain.ClaimInput {
	return &securityDomain.ClaimInput{
		TrustAnchors: []securityDomain.TrustAnchor{
			{ID: uuid.Must(uuid.NewV7()), PublicKey: "anchor-key", CreatedAt: time.Now().UTC()},
		},
		SecurityGroups: []uuid.UUID{uuid.Must(uuid.NewV7())},
		AuthSuite:      "ECDHE_ECDSA",
	}
}

func TestSecurityUseCase_Claim(t *testing.T) {
	t.Run("Success_ClaimInstallsAnchorsAndDefaultPolicy", func(t *testing.T) {
		uc, repo, installer := newTestUseCase(claimableState())

		err := uc.Claim(context.Background(), claimInput())
		require.NoError(t, err)

		assert.Len(t, repo.anchors, 1)
		assert.Equal(t, securityDomain.StateClaimed, repo.state.ApplicationState)
		require.NotNil(t, installer.installed)
		assert.NotEmpty(t, installer.installed.ACLs)
	})

	t.Run("Failure_AlreadyClaimed", func(t *testing.T) {
		state := claimableState()
		state.ApplicationState = securityDomain.StateClaimed
		uc, _, _ := newTestUseCase(state)

		err := uc.Claim(context.Background(), claimInput())
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("Failure_SuiteNotAccepted", func(t *testing.T) {
		state := claimableState()
		state.ClaimCapabilities = securityDomain.CapableECDHEECDSA
		uc, _, _ := newTestUseCase(state)

		input := claimInput()
		input.AuthSuite = "ECDHE_NULL"
		err := uc.Claim(context.Background(), input)
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("Success_SelfClaimSkipsSuiteCheck", func(t *testing.T) {
		state := claimableState()
		state.ClaimCapabilities = 0
		uc, _, _ := newTestUseCase(state)

		input := claimInput()
		input.SelfClaim = true
		assert.NoError(t, uc.Claim(context.Background(), input))
	})

	t.Run("Failure_NoTrustAnchors", func(t *testing.T) {
		uc, _, _ := newTestUseCase(claimableState())

		input := claimInput()
		input.TrustAnchors = nil
		err := uc.Claim(context.Background(), input)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Failure_PasscodeMismatch", func(t *testing.T) {
		state := claimableState()
		state.ClaimPasscodeHash = "hashed:letmein"
		uc, _, _ := newTestUseCase(state)

		input := claimInput()
		input.Passcode = "wrong"
		err := uc.Claim(context.Background(), input)
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("Success_PasscodeMatch", func(t *testing.T) {
		state := claimableState()
		state.ClaimPasscodeHash = "hashed:letmein"
		uc, _, _ := newTestUseCase(state)

		input := claimInput()
		input.Passcode = "letmein"
		assert.NoError(t, uc.Claim(context.Background(), input))
	})
}

func TestSecurityUseCase_Reset(t *testing.T) {
	uc, repo, installer := newTestUseCase(claimableState())
	require.NoError(t, uc.Claim(context.Background(), claimInput()))

	require.NoError(t, uc.Reset(context.Background()))

	assert.Empty(t, repo.anchors)
	assert.Nil(t, installer.installed)
	assert.Equal(t, securityDomain.StateClaimable, repo.state.ApplicationState)

	claimed, err := uc.HasTrustAnchors(context.Background())
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSecurityUseCase_EnsureIdentityKey(t *testing.T) {
	uc, repo, _ := newTestUseCase(claimableState())

	require.NoError(t, uc.EnsureIdentityKey(context.Background()))
	assert.Equal(t, []byte("sealed-key"), repo.state.SealedIdentityKey)
	assert.Equal(t, "public-pem", repo.state.PublicKey)

	// A second call keeps the existing key.
	repo.state.SealedIdentityKey = []byte("existing")
	require.NoError(t, uc.EnsureIdentityKey(context.Background()))
	assert.Equal(t, []byte("existing"), repo.state.SealedIdentityKey)

	key, err := uc.LocalPublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "public-pem", key)
}

func TestSecurityUseCase_SetClaimPasscode(t *testing.T) {
	uc, repo, _ := newTestUseCase(claimableState())

	require.NoError(t, uc.SetClaimPasscode(context.Background(), "letmein"))
	assert.Equal(t, "hashed:letmein", repo.state.ClaimPasscodeHash)
}

func TestSecurityUseCase_GetApplication(t *testing.T) {
	state := claimableState()
	state.PublicKey = "public-pem"
	state.ClaimCapabilityInfo = "psk available on request"
	uc, _, _ := newTestUseCase(state)

	out, err := uc.GetApplication(context.Background())
	require.NoError(t, err)
	assert.Equal(t, securityDomain.StateClaimable, out.State)
	assert.Equal(t, "public-pem", out.PublicKey)
	assert.Equal(t, "psk available on request", out.ClaimCapabilityInfo)
	assert.Equal(t, 0, out.TrustAnchorCount)
}
