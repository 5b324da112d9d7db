package usecase

import (
	"context"
	"time"

	"github.com/allisson/busguard/internal/metrics"
)

// authzUseCaseWithMetrics decorates AuthzUseCase with metrics instrumentation.
type authzUseCaseWithMetrics struct {
	next    AuthzUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthzUseCaseWithMetrics wraps an AuthzUseCase with metrics recording.
func NewAuthzUseCaseWithMetrics(useCase AuthzUseCase, m metrics.BusinessMetrics) AuthzUseCase {
	return &authzUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Check records metrics for message authorization checks. Denials count as
// successful operations; only failed checks are recorded as errors.
func (a *authzUseCaseWithMetrics) Check(ctx context.Context, input *CheckInput) (*CheckOutput, error) {
	start := time.Now()
	output, err := a.next.Check(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "authz", "check_message", status)
	a.metrics.RecordDuration(ctx, "authz", "check_message", time.Since(start), status)

	if err == nil {
		decision := "allowed"
		if !output.Allowed {
			decision = "denied"
		}
		a.metrics.RecordOperation(ctx, "authz", "decision", decision)
	}

	return output, err
}

// CheckProperty records metrics for property authorization checks.
func (a *authzUseCaseWithMetrics) CheckProperty(ctx context.Context, input *CheckPropertyInput) (*CheckOutput, error) {
	start := time.Now()
	output, err := a.next.CheckProperty(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "authz", "check_property", status)
	a.metrics.RecordDuration(ctx, "authz", "check_property", time.Since(start), status)

	if err == nil {
		decision := "allowed"
		if !output.Allowed {
			decision = "denied"
		}
		a.metrics.RecordOperation(ctx, "authz", "decision", decision)
	}

	return output, err
}
