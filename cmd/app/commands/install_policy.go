package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "github.com/allisson/busguard/internal/errors"
	policyDTO "github.com/allisson/busguard/internal/policy/http/dto"
	policyUseCase "github.com/allisson/busguard/internal/policy/usecase"
)

// RunInstallPolicy installs a policy version from a JSON document, read from
// a file when path is set, otherwise from the raw argument. The document has
// the same shape the HTTP API accepts.
func RunInstallPolicy(
	ctx context.Context,
	policyUC policyUseCase.PolicyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	policyJSON, path string,
	format string,
) error {
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read policy file: %w", err)
		}
		policyJSON = string(content)
	}
	if policyJSON == "" {
		return fmt.Errorf("a policy document is required (--policy or --file)")
	}

	var request policyDTO.InstallPolicyRequest
	if err := json.Unmarshal([]byte(policyJSON), &request); err != nil {
		return fmt.Errorf("invalid policy document: %w", err)
	}

	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid policy document: %w", err)
	}

	policy, err := request.ToDomain()
	if err != nil {
		return fmt.Errorf("invalid policy document: %w", err)
	}

	logger.Info("installing policy",
		slog.Uint64("version", uint64(policy.Version)),
		slog.Int("acls", len(policy.ACLs)),
	)

	if err := policyUC.Install(ctx, policy); err != nil {
		return fmt.Errorf("failed to install policy: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(policyDTO.MapPolicyToResponse(policy))
	}

	_, _ = fmt.Fprintf(writer, "Policy version %d installed successfully (%d ACLs)\n", policy.Version, len(policy.ACLs))
	return nil
}

// RunShowPolicy prints the active policy version.
func RunShowPolicy(
	ctx context.Context,
	policyUC policyUseCase.PolicyUseCase,
	writer io.Writer,
	format string,
) error {
	policy, err := policyUC.GetActive(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			_, _ = fmt.Fprintln(writer, "No policy installed")
			return nil
		}
		return fmt.Errorf("failed to get active policy: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(policyDTO.MapPolicyToResponse(policy))
	}

	_, _ = fmt.Fprintf(writer, "Active Policy\n")
	_, _ = fmt.Fprintf(writer, "=============\n\n")
	_, _ = fmt.Fprintf(writer, "Version:  %d\n", policy.Version)
	_, _ = fmt.Fprintf(writer, "ACLs:     %d\n", len(policy.ACLs))
	for i, acl := range policy.ACLs {
		_, _ = fmt.Fprintf(writer, "\nACL %d: %d peer(s), %d rule(s)\n", i+1, len(acl.Peers), len(acl.Rules))
		for _, rule := range acl.Rules {
			_, _ = fmt.Fprintf(writer, "  - %s %s (%d member(s))\n", rule.ObjectPath, rule.InterfaceName, len(rule.Members))
		}
	}
	return nil
}
