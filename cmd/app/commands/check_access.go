package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/busguard/internal/authz/domain"
	authzUseCase "github.com/allisson/busguard/internal/authz/usecase"
)

// RunCheckAccess evaluates a single message authorization check against the
// installed policy and the peer's manifests, printing the decision. Returns
// an error when the message is denied so the exit code reflects the outcome.
func RunCheckAccess(
	ctx context.Context,
	authzUC authzUseCase.AuthzUseCase,
	logger *slog.Logger,
	writer io.Writer,
	peerID, messageType, objectPath, interfaceName, member string,
	outgoing, authenticated bool,
	format string,
) error {
	parsedPeerID, err := uuid.Parse(peerID)
	if err != nil {
		return fmt.Errorf("invalid peer ID: must be a valid UUID")
	}

	input := &authzUseCase.CheckInput{
		RequestID:     uuid.Must(uuid.NewV7()),
		PeerID:        parsedPeerID,
		Outgoing:      outgoing,
		Authenticated: authenticated,
		Message: authzDomain.Message{
			Type:       authzDomain.MessageType(messageType),
			ObjectPath: objectPath,
			Interface:  interfaceName,
			Member:     member,
		},
	}

	logger.Info("checking access",
		slog.String("peer_id", peerID),
		slog.String("object_path", objectPath),
		slog.String("interface", interfaceName),
		slog.String("member", member),
	)

	output, err := authzUC.Check(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to check access: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		result := map[string]interface{}{
			"allowed": output.Allowed,
			"reason":  output.Reason,
		}
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else if output.Allowed {
		_, _ = fmt.Fprintln(writer, "Decision: ALLOWED")
	} else {
		_, _ = fmt.Fprintf(writer, "Decision: DENIED\nReason: %s\n", output.Reason)
	}

	if !output.Allowed {
		return fmt.Errorf("access denied")
	}
	return nil
}
