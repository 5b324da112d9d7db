package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	auditService "github.com/allisson/busguard/internal/audit/service"
)

// fakeAuditLogRepo stores decision logs in memory, newest first.
type fakeAuditLogRepo struct {
	logs []*auditDomain.DecisionLog
}

func (f *fakeAuditLogRepo) Create(_ context.Context, log *auditDomain.DecisionLog) error {
	stored := *log
	f.logs = append([]*auditDomain.DecisionLog{&stored}, f.logs...)
	return nil
}

func (f *fakeAuditLogRepo) List(
	_ context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.DecisionLog, error) {
	var filtered []*auditDomain.DecisionLog
	for _, log := range f.logs {
		if createdAtFrom != nil && log.CreatedAt.Before(*createdAtFrom) {
			continue
		}
		if createdAtTo != nil && log.CreatedAt.After(*createdAtTo) {
			continue
		}
		filtered = append(filtered, log)
	}
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func decisionLogInput() *auditDomain.DecisionLog {
	return &auditDomain.DecisionLog{
		RequestID:     uuid.Must(uuid.NewV7()),
		PeerID:        uuid.Must(uuid.NewV7()),
		ObjectPath:    "/control/door",
		InterfaceName: "net.example.Door",
		MemberName:    "Open",
		MemberType:    "method_call",
		Allowed:       true,
		Reason:        "policy grant",
	}
}

func TestAuditUseCase_Record(t *testing.T) {
	ctx := context.Background()
	secret := []byte("decision-audit-secret")
	repo := &fakeAuditLogRepo{}
	uc := NewAuditUseCase(repo, auditService.NewDecisionSigner(), secret)

	t.Run("Success_SignsAndPersists", func(t *testing.T) {
		log := decisionLogInput()
		err := uc.Record(ctx, log)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, log.ID)
		assert.False(t, log.CreatedAt.IsZero())
		assert.True(t, log.HasValidSignature())
		require.Len(t, repo.logs, 1)
	})

	t.Run("Success_UnsignedWhenNoSecret", func(t *testing.T) {
		unsignedRepo := &fakeAuditLogRepo{}
		unsignedUC := NewAuditUseCase(unsignedRepo, auditService.NewDecisionSigner(), nil)

		log := decisionLogInput()
		err := unsignedUC.Record(ctx, log)
		require.NoError(t, err)

		assert.True(t, log.IsUnsigned())
	})
}

func TestAuditUseCase_List(t *testing.T) {
	ctx := context.Background()
	secret := []byte("decision-audit-secret")
	repo := &fakeAuditLogRepo{}
	uc := NewAuditUseCase(repo, auditService.NewDecisionSigner(), secret)

	for i := 0; i < 3; i++ {
		require.NoError(t, uc.Record(ctx, decisionLogInput()))
	}

	t.Run("Success_Paginates", func(t *testing.T) {
		logs, err := uc.List(ctx, 0, 2, nil, nil)
		require.NoError(t, err)
		assert.Len(t, logs, 2)

		logs, err = uc.List(ctx, 2, 2, nil, nil)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("Success_TimeFilterExcludesOldRecords", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		logs, err := uc.List(ctx, 0, 10, &future, nil)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestAuditUseCase_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	secret := []byte("decision-audit-secret")

	setup := func(t *testing.T) (*fakeAuditLogRepo, AuditUseCase) {
		t.Helper()
		repo := &fakeAuditLogRepo{}
		return repo, NewAuditUseCase(repo, auditService.NewDecisionSigner(), secret)
	}

	timeRange := func() (time.Time, time.Time) {
		now := time.Now().UTC()
		return now.Add(-time.Hour), now.Add(time.Hour)
	}

	t.Run("Success_AllValid", func(t *testing.T) {
		_, uc := setup(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, uc.Record(ctx, decisionLogInput()))
		}

		start, end := timeRange()
		report, err := uc.VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(3), report.TotalChecked)
		assert.Equal(t, int64(3), report.SignedCount)
		assert.Equal(t, int64(3), report.ValidCount)
		assert.Equal(t, int64(0), report.InvalidCount)
		assert.Equal(t, int64(0), report.UnsignedCount)
	})

	t.Run("Success_DetectsTamperedRecord", func(t *testing.T) {
		repo, uc := setup(t)
		for i := 0; i < 2; i++ {
			require.NoError(t, uc.Record(ctx, decisionLogInput()))
		}
		repo.logs[0].Allowed = false

		start, end := timeRange()
		report, err := uc.VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(2), report.TotalChecked)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, []uuid.UUID{repo.logs[0].ID}, report.InvalidLogs)
	})

	t.Run("Success_CountsUnsignedRecords", func(t *testing.T) {
		repo, uc := setup(t)
		require.NoError(t, uc.Record(ctx, decisionLogInput()))
		repo.logs[0].Signature = nil

		start, end := timeRange()
		report, err := uc.VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(1), report.TotalChecked)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(0), report.InvalidCount)
	})

	t.Run("Success_EmptyRange", func(t *testing.T) {
		_, uc := setup(t)

		start, end := timeRange()
		report, err := uc.VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(0), report.TotalChecked)
	})
}
