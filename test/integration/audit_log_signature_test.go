// Package integration provides integration tests for decision log cryptographic signatures.
package integration

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	auditUseCase "github.com/allisson/busguard/internal/audit/usecase"
	authzDTO "github.com/allisson/busguard/internal/authz/http/dto"
	"github.com/allisson/busguard/internal/testutil"
)

// recordTestDecision records one decision log for the given peer and returns it.
func recordTestDecision(
	t *testing.T,
	ctx context.Context,
	useCase auditUseCase.AuditUseCase,
	peerID uuid.UUID,
	member string,
	allowed bool,
) *auditDomain.DecisionLog {
	t.Helper()

	log := &auditDomain.DecisionLog{
		RequestID:     uuid.Must(uuid.NewV7()),
		PeerID:        peerID,
		ObjectPath:    "/control/door",
		InterfaceName: doorInterface,
		MemberName:    member,
		MemberType:    "method_call",
		Allowed:       allowed,
		Reason:        "allowed",
		Metadata:      map[string]any{"auth_mechanism": "ECDHE_ECDSA"},
	}
	if !allowed {
		log.Reason = "denied by policy"
	}

	err := useCase.Record(ctx, log)
	require.NoError(t, err, "failed to record decision log")
	return log
}

// tamperDecisionLog rewrites the reason of a stored decision log directly in
// the database, invalidating its signature.
func tamperDecisionLog(t *testing.T, testCtx *integrationTestContext, logID uuid.UUID) {
	t.Helper()

	var err error
	var result sql.Result
	if testCtx.dbDriver == "postgres" {
		result, err = testCtx.db.Exec(
			"UPDATE audit_logs SET reason = 'tampered' WHERE id = $1",
			logID,
		)
	} else {
		// MySQL stores UUID as BINARY(16), need binary representation
		idBinary, marshalErr := logID.MarshalBinary()
		require.NoError(t, marshalErr, "failed to marshal UUID")
		result, err = testCtx.db.Exec(
			"UPDATE audit_logs SET reason = 'tampered' WHERE id = ?",
			idBinary,
		)
	}
	require.NoError(t, err, "failed to tamper with decision log")

	rowsAffected, _ := result.RowsAffected()
	require.Equal(t, int64(1), rowsAffected, "UPDATE should affect exactly 1 row")
}

// TestAuditLogSignature_EndToEnd verifies complete decision log signing and
// verification, from recording through tamper detection.
func TestAuditLogSignature_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbConfigs := []struct {
		name   string
		driver string
	}{
		{name: "PostgreSQL", driver: "postgres"},
		{name: "MySQL", driver: "mysql"},
	}

	for _, dbConfig := range dbConfigs {
		t.Run(dbConfig.name, func(t *testing.T) {
			ctx := context.Background()

			testCtx := setupIntegrationTest(t, dbConfig.driver)
			defer teardownIntegrationTest(t, testCtx)

			useCase, err := testCtx.container.AuditUseCase()
			require.NoError(t, err, "failed to get audit use case")

			peerID := testutil.CreateTestPeer(t, testCtx.db, dbConfig.driver, "signature-test-peer-key")

			t.Run("RecordSignedDecisionLog", func(t *testing.T) {
				startTime := time.Now().UTC().Add(-1 * time.Second)
				recorded := recordTestDecision(t, ctx, useCase, peerID, "Open", true)

				// Retrieve the stored log
				logs, err := useCase.List(ctx, 0, 1, nil, nil)
				require.NoError(t, err, "failed to list decision logs")
				require.Len(t, logs, 1, "expected exactly one decision log")

				log := logs[0]
				assert.Equal(t, recorded.ID, log.ID)
				assert.False(t, log.IsUnsigned(), "decision log should be signed")
				assert.NotEmpty(t, log.Signature, "signature should not be empty")

				// The stored signature verifies
				endTime := time.Now().UTC().Add(1 * time.Second)
				report, err := useCase.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should succeed")
				assert.Equal(t, int64(1), report.TotalChecked)
				assert.Equal(t, int64(1), report.SignedCount)
				assert.Equal(t, int64(1), report.ValidCount)
				assert.Equal(t, int64(0), report.InvalidCount)
			})

			t.Run("TamperDetection", func(t *testing.T) {
				startTime := time.Now().UTC()

				var logIDs []uuid.UUID
				for i := 0; i < 3; i++ {
					log := recordTestDecision(t, ctx, useCase, peerID, "Close", true)
					logIDs = append(logIDs, log.ID)
					time.Sleep(10 * time.Millisecond) // Ensure distinct timestamps
				}
				endTime := time.Now().UTC().Add(1 * time.Second)

				// Tamper with the middle log
				tamperDecisionLog(t, testCtx, logIDs[1])

				report, err := useCase.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should not error")

				assert.Equal(t, int64(3), report.TotalChecked, "should check 3 logs")
				assert.Equal(t, int64(3), report.SignedCount, "all 3 should be signed")
				assert.Equal(t, int64(2), report.ValidCount, "2 should be valid")
				assert.Equal(t, int64(1), report.InvalidCount, "1 should be invalid")
				require.Len(t, report.InvalidLogs, 1, "should have 1 invalid log ID")
				assert.Equal(t, logIDs[1], report.InvalidLogs[0], "invalid log ID should match tampered log")
			})

			t.Run("UnsignedLogsAreCounted", func(t *testing.T) {
				// A use case without a signing secret records legacy
				// unsigned logs
				auditLogRepo, err := testCtx.container.AuditLogRepository()
				require.NoError(t, err, "failed to get audit log repository")
				unsignedUseCase := auditUseCase.NewAuditUseCase(
					auditLogRepo, testCtx.container.DecisionSigner(), nil,
				)

				startTime := time.Now().UTC()
				log := recordTestDecision(t, ctx, unsignedUseCase, peerID, "Lock", false)
				assert.True(t, log.IsUnsigned(), "log recorded without a secret is unsigned")
				endTime := time.Now().UTC().Add(1 * time.Second)

				report, err := useCase.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should succeed")
				assert.Equal(t, int64(1), report.TotalChecked)
				assert.Equal(t, int64(0), report.SignedCount)
				assert.Equal(t, int64(1), report.UnsignedCount)
				assert.Equal(t, int64(0), report.InvalidCount)
			})

			t.Run("AuthorizationDecisionsAreSigned", func(t *testing.T) {
				// Decisions made through the API carry signatures too
				claimApplication(t, testCtx)

				resp, body := testCtx.makeRequest(t, http.MethodPost, "/v1/policies", doorPolicyRequest(1), true)
				require.Equal(t, http.StatusCreated, resp.StatusCode, "policy install failed: %s", body)

				trustedPeerID := registerTrustedPeer(t, testCtx)

				startTime := time.Now().UTC()
				checkRequest := authzDTO.CheckRequest{
					PeerID:        trustedPeerID.String(),
					Authenticated: true,
					Message: authzDTO.MessageRequest{
						Type:       "method_call",
						ObjectPath: "/control/door",
						Interface:  doorInterface,
						Member:     "Open",
					},
				}
				for i := 0; i < 3; i++ {
					resp, _ := testCtx.makeRequest(t, http.MethodPost, "/v1/authz/check", checkRequest, false)
					require.Equal(t, http.StatusOK, resp.StatusCode)
				}
				endTime := time.Now().UTC().Add(1 * time.Second)

				report, err := useCase.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should succeed")
				assert.Equal(t, int64(3), report.TotalChecked)
				assert.Equal(t, int64(3), report.SignedCount)
				assert.Equal(t, int64(3), report.ValidCount)
				assert.Equal(t, int64(0), report.InvalidCount)
			})
		})
	}
}
