package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
)

// fakeAuditUseCase returns a fixed verification report.
type fakeAuditUseCase struct {
	report *auditDomain.VerificationReport
	err    error
}

func (f *fakeAuditUseCase) Record(context.Context, *auditDomain.DecisionLog) error {
	return nil
}

func (f *fakeAuditUseCase) List(
	context.Context, int, int, *time.Time, *time.Time,
) ([]*auditDomain.DecisionLog, error) {
	return nil, nil
}

func (f *fakeAuditUseCase) VerifyBatch(
	context.Context, time.Time, time.Time,
) (*auditDomain.VerificationReport, error) {
	return f.report, f.err
}

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	startDate := "2026-01-01"
	endDate := "2026-01-02"

	report := &auditDomain.VerificationReport{
		TotalChecked: 10,
		SignedCount:  10,
		ValidCount:   10,
	}

	t.Run("Success_TextOutput", func(t *testing.T) {
		useCase := &fakeAuditUseCase{report: report}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Decision Log Integrity Verification")
		require.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("Success_JSONOutput", func(t *testing.T) {
		useCase := &fakeAuditUseCase{report: report}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(10), result["total_checked"])
		require.Equal(t, true, result["passed"])
	})

	t.Run("Failure_InvalidSignatures", func(t *testing.T) {
		tamperedID := uuid.Must(uuid.NewV7())
		useCase := &fakeAuditUseCase{
			report: &auditDomain.VerificationReport{
				TotalChecked: 2,
				SignedCount:  2,
				ValidCount:   1,
				InvalidCount: 1,
				InvalidLogs:  []uuid.UUID{tamperedID},
			},
		}

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, useCase, logger, &out, startDate, endDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), tamperedID.String())
	})

	t.Run("Failure_InvalidDates", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "invalid", endDate, "text")
		require.Error(t, err)

		err = RunVerifyAuditLogs(ctx, nil, logger, nil, endDate, startDate, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "end date must be after start date")
	})
}

func TestParseDate(t *testing.T) {
	t.Run("Success_DateOnly", func(t *testing.T) {
		parsed, err := parseDate("2026-01-15")
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("Success_DateTime", func(t *testing.T) {
		parsed, err := parseDate("2026-01-15 13:45:00")
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC), parsed)
	})

	t.Run("Failure_BadFormat", func(t *testing.T) {
		_, err := parseDate("15/01/2026")
		require.Error(t, err)
	})
}
