package usecase

import (
	"context"
	"log/slog"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	authzDomain "github.com/allisson/busguard/internal/authz/domain"
	apperrors "github.com/allisson/busguard/internal/errors"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
)

// authzUseCase implements AuthzUseCase on top of the permission manager,
// loading the peer record and recording every decision in the audit log.
type authzUseCase struct {
	manager  *authzDomain.PermissionManager
	peers    PeerProvider
	recorder DecisionRecorder
	logger   *slog.Logger
}

// Check authorizes a bus message for the given peer. The decision is
// recorded in the audit log before it is returned. Returns an error when the
// peer is unknown or the message cannot be classified; a policy denial is a
// successful check with Allowed set to false.
func (u *authzUseCase) Check(ctx context.Context, input *CheckInput) (*CheckOutput, error) {
	peer, err := u.peers.Get(ctx, input.PeerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load peer for authorization check")
	}

	output := &CheckOutput{Allowed: true, Reason: "allowed"}

	err = u.manager.AuthorizeMessage(ctx, input.Outgoing, input.Message, peer, input.Authenticated)
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		output.Allowed = false
		output.Reason = err.Error()
	default:
		return nil, err
	}

	log := &auditDomain.DecisionLog{
		RequestID:     input.RequestID,
		PeerID:        input.PeerID,
		ObjectPath:    input.Message.ObjectPath,
		InterfaceName: input.Message.Interface,
		MemberName:    input.Message.Member,
		MemberType:    string(input.Message.Type),
		Outgoing:      input.Outgoing,
		Allowed:       output.Allowed,
		Reason:        output.Reason,
		Metadata:      peerMetadata(peer),
	}
	if err := u.recorder.Record(ctx, log); err != nil {
		return nil, apperrors.Wrap(err, "failed to record authorization decision")
	}

	return output, nil
}

// CheckProperty authorizes a single property read for the given peer. Used
// when the properties for a bulk read are checked one by one.
func (u *authzUseCase) CheckProperty(ctx context.Context, input *CheckPropertyInput) (*CheckOutput, error) {
	peer, err := u.peers.Get(ctx, input.PeerID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load peer for authorization check")
	}

	output := &CheckOutput{Allowed: true, Reason: "allowed"}

	err = u.manager.AuthorizeGetProperty(ctx, input.ObjectPath, input.InterfaceName, input.PropertyName, peer)
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		output.Allowed = false
		output.Reason = err.Error()
	default:
		return nil, err
	}

	log := &auditDomain.DecisionLog{
		RequestID:     input.RequestID,
		PeerID:        input.PeerID,
		ObjectPath:    input.ObjectPath,
		InterfaceName: input.InterfaceName,
		MemberName:    input.PropertyName,
		MemberType:    "property",
		Allowed:       output.Allowed,
		Reason:        output.Reason,
		Metadata:      peerMetadata(peer),
	}
	if err := u.recorder.Record(ctx, log); err != nil {
		return nil, apperrors.Wrap(err, "failed to record authorization decision")
	}

	return output, nil
}

// peerMetadata captures how the peer authenticated alongside the decision.
func peerMetadata(peer *peerDomain.Peer) map[string]any {
	return map[string]any{
		"auth_mechanism": peer.AuthMechanism,
		"auth_suite":     peer.AuthSuite,
	}
}

// NewAuthzUseCase creates a new AuthzUseCase with the provided dependencies.
func NewAuthzUseCase(
	manager *authzDomain.PermissionManager,
	peers PeerProvider,
	recorder DecisionRecorder,
	logger *slog.Logger,
) AuthzUseCase {
	return &authzUseCase{
		manager:  manager,
		peers:    peers,
		recorder: recorder,
		logger:   logger,
	}
}
