package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	securityDTO "github.com/allisson/busguard/internal/security/http/dto"
	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
)

// RunClaim claims the application by installing trust anchors and moving it
// to the claimed state. The claim request is given as a JSON document with
// the same shape the HTTP API accepts.
func RunClaim(
	ctx context.Context,
	securityUC securityUseCase.SecurityUseCase,
	logger *slog.Logger,
	writer io.Writer,
	claimJSON string,
	format string,
) error {
	var request securityDTO.ClaimRequest
	if err := json.Unmarshal([]byte(claimJSON), &request); err != nil {
		return fmt.Errorf("invalid claim document: %w", err)
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid claim document: %w", err)
	}

	input, err := request.ToInput()
	if err != nil {
		return fmt.Errorf("invalid claim document: %w", err)
	}

	logger.Info("claiming application",
		slog.String("auth_suite", input.AuthSuite),
		slog.Int("trust_anchors", len(input.TrustAnchors)),
	)

	if err := securityUC.Claim(ctx, input); err != nil {
		return fmt.Errorf("failed to claim application: %w", err)
	}

	return outputApplication(ctx, securityUC, writer, format, "Application claimed successfully")
}

// RunReset removes the trust anchors and every installed policy, returning
// the application to the claimable state.
func RunReset(
	ctx context.Context,
	securityUC securityUseCase.SecurityUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("resetting application")

	if err := securityUC.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset application: %w", err)
	}

	return outputApplication(ctx, securityUC, writer, format, "Application reset successfully")
}

// outputApplication prints the security posture after a lifecycle operation.
func outputApplication(
	ctx context.Context,
	securityUC securityUseCase.SecurityUseCase,
	writer io.Writer,
	format string,
	message string,
) error {
	output, err := securityUC.GetApplication(ctx)
	if err != nil {
		return fmt.Errorf("failed to get application state: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(securityDTO.MapApplicationToResponse(output))
	}

	_, _ = fmt.Fprintf(writer, "%s\n\n", message)
	_, _ = fmt.Fprintf(writer, "State:            %s\n", output.State)
	_, _ = fmt.Fprintf(writer, "Capability Info:  %s\n", output.ClaimCapabilityInfo)
	_, _ = fmt.Fprintf(writer, "Trust Anchors:    %d\n", output.TrustAnchorCount)
	if output.PublicKey != "" {
		_, _ = fmt.Fprintf(writer, "Public Key:       %s\n", output.PublicKey)
	}
	return nil
}
