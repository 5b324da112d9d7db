package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	auditService "github.com/allisson/busguard/internal/audit/service"
	apperrors "github.com/allisson/busguard/internal/errors"
)

// verifyBatchSize is how many decision logs a batch verification loads per
// repository round trip.
const verifyBatchSize = 500

// auditUseCase implements AuditUseCase for recording and verifying decision logs.
type auditUseCase struct {
	auditLogRepo  AuditLogRepository
	signer        auditService.DecisionSigner
	signingSecret []byte
}

// Record signs and persists a decision log entry. Generates a UUIDv7
// identifier and timestamp. Records are stored unsigned when no signing
// secret is configured.
func (a *auditUseCase) Record(ctx context.Context, log *auditDomain.DecisionLog) error {
	log.ID = uuid.Must(uuid.NewV7())
	log.CreatedAt = time.Now().UTC()

	if len(a.signingSecret) > 0 {
		signature, err := a.signer.Sign(a.signingSecret, log)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign decision log")
		}
		log.Signature = signature
	}

	if err := a.auditLogRepo.Create(ctx, log); err != nil {
		return apperrors.Wrap(err, "failed to create decision log")
	}

	return nil
}

// List retrieves decision logs ordered by created_at descending (newest
// first) with pagination and optional time-based filtering. Both boundaries
// are inclusive. All timestamps are expected in UTC.
func (a *auditUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.DecisionLog, error) {
	logs, err := a.auditLogRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list decision logs")
	}

	return logs, nil
}

// VerifyBatch verifies the signatures of all decision logs in the inclusive
// [startTime, endTime] range, paging through the repository in batches.
// Unsigned records are counted separately and do not fail the run.
func (a *auditUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*auditDomain.VerificationReport, error) {
	report := &auditDomain.VerificationReport{}

	offset := 0
	for {
		logs, err := a.auditLogRepo.List(ctx, offset, verifyBatchSize, &startTime, &endTime)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load decision logs for verification")
		}
		if len(logs) == 0 {
			break
		}

		for _, log := range logs {
			report.TotalChecked++

			if log.IsUnsigned() {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++

			if err := a.signer.Verify(a.signingSecret, log); err != nil {
				if apperrors.Is(err, auditDomain.ErrSignatureInvalid) {
					report.InvalidCount++
					report.InvalidLogs = append(report.InvalidLogs, log.ID)
					continue
				}
				return nil, apperrors.Wrap(err, "failed to verify decision log")
			}

			report.ValidCount++
		}

		offset += len(logs)
	}

	return report, nil
}

// NewAuditUseCase creates a new AuditUseCase with the provided dependencies.
// An empty signing secret disables signing.
func NewAuditUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.DecisionSigner,
	signingSecret []byte,
) AuditUseCase {
	return &auditUseCase{
		auditLogRepo:  auditLogRepo,
		signer:        signer,
		signingSecret: signingSecret,
	}
}
