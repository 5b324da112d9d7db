package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
)

// RunSetClaimPasscode stores the hash of the passcode required for
// password-based claiming. The plaintext passcode is never persisted.
func RunSetClaimPasscode(
	ctx context.Context,
	securityUC securityUseCase.SecurityUseCase,
	logger *slog.Logger,
	writer io.Writer,
	passcode string,
) error {
	if passcode == "" {
		return fmt.Errorf("passcode must not be empty")
	}

	logger.Info("setting claim passcode")

	if err := securityUC.SetClaimPasscode(ctx, passcode); err != nil {
		return fmt.Errorf("failed to set claim passcode: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "Claim passcode updated successfully")
	return nil
}

// RunShowApplication prints the externally visible security posture.
func RunShowApplication(
	ctx context.Context,
	securityUC securityUseCase.SecurityUseCase,
	writer io.Writer,
	format string,
) error {
	return outputApplication(ctx, securityUC, writer, format, "Application status")
}
