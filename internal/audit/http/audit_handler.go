// Package http provides HTTP handlers for decision audit log operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/busguard/internal/audit/http/dto"
	auditUseCase "github.com/allisson/busguard/internal/audit/usecase"
	"github.com/allisson/busguard/internal/httputil"
)

// AuditLogHandler handles HTTP requests for decision audit log operations.
type AuditLogHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(auditUseCase auditUseCase.AuditUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// ListHandler retrieves decision logs with pagination support and optional
// time-based filtering.
// GET /v1/audit-logs?offset=0&limit=50&created_at_from=2026-08-01T00:00:00Z&created_at_to=2026-08-28T23:59:59Z
// Returns 200 OK with decision logs ordered by created_at descending (newest
// first). Accepts optional created_at_from and created_at_to query parameters
// in RFC3339 format, converted to UTC. Both boundaries are inclusive.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, err := parseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtTo, err := parseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	logs, err := h.auditUseCase.List(c.Request.Context(), offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.DecisionLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, dto.MapDecisionLogToResponse(log))
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": responses})
}

// parseTimeQuery extracts an optional RFC3339 query parameter, converted to
// UTC. Returns nil when the parameter is absent.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-08-01T00:00:00Z)", name)
	}
	utcTime := parsed.UTC()
	return &utcTime, nil
}
