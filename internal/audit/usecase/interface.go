// Package usecase implements business logic orchestration for the decision audit log.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
)

// AuditLogRepository defines persistence operations for decision logs.
type AuditLogRepository interface {
	// Create inserts a new decision log.
	Create(ctx context.Context, log *auditDomain.DecisionLog) error

	// List retrieves decision logs ordered by created_at descending with
	// pagination and optional inclusive time-based filtering (nil means no
	// filter).
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.DecisionLog, error)
}

// AuditUseCase defines business logic operations for the decision audit log.
type AuditUseCase interface {
	// Record signs and persists a decision log. Fills in the ID, timestamp
	// and signature.
	Record(ctx context.Context, log *auditDomain.DecisionLog) error

	// List retrieves decision logs ordered by created_at descending with
	// pagination and optional inclusive time-based filtering.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.DecisionLog, error)

	// VerifyBatch verifies the signatures of all decision logs in the given
	// time range and reports the counts.
	VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*auditDomain.VerificationReport, error)
}
