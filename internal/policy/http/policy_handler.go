// Package http provides HTTP handlers for policy management operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/busguard/internal/httputil"
	"github.com/allisson/busguard/internal/policy/http/dto"
	policyUseCase "github.com/allisson/busguard/internal/policy/usecase"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// PolicyHandler handles HTTP requests for policy management operations.
type PolicyHandler struct {
	policyUseCase policyUseCase.PolicyUseCase
	logger        *slog.Logger
}

// NewPolicyHandler creates a new policy handler with required dependencies.
func NewPolicyHandler(policyUseCase policyUseCase.PolicyUseCase, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyUseCase: policyUseCase,
		logger:        logger,
	}
}

// InstallHandler installs a new policy version.
// POST /v1/policies
// Returns 201 Created with the installed policy.
func (h *PolicyHandler) InstallHandler(c *gin.Context) {
	var req dto.InstallPolicyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := req.ToDomain()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.policyUseCase.Install(c.Request.Context(), policy); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPolicyToResponse(policy))
}

// GetActiveHandler returns the active (highest version) policy.
// GET /v1/policies/active
// Returns 200 OK.
func (h *PolicyHandler) GetActiveHandler(c *gin.Context) {
	policy, err := h.policyUseCase.GetActive(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// ListHandler returns installed policy versions, newest first.
// GET /v1/policies?offset=0&limit=50
// Returns 200 OK.
func (h *PolicyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	policies, err := h.policyUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		responses = append(responses, dto.MapPolicyToResponse(policy))
	}
	c.JSON(http.StatusOK, gin.H{"policies": responses})
}

// DeleteAllHandler removes every installed policy.
// DELETE /v1/policies
// Returns 204 No Content.
func (h *PolicyHandler) DeleteAllHandler(c *gin.Context) {
	if err := h.policyUseCase.DeleteAll(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
