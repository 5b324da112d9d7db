// Package http provides HTTP handlers for the claiming lifecycle.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/busguard/internal/httputil"
	"github.com/allisson/busguard/internal/security/http/dto"
	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// SecurityHandler handles HTTP requests for the claiming lifecycle.
type SecurityHandler struct {
	securityUseCase securityUseCase.SecurityUseCase
	logger          *slog.Logger
}

// NewSecurityHandler creates a new security handler with required dependencies.
func NewSecurityHandler(securityUseCase securityUseCase.SecurityUseCase, logger *slog.Logger) *SecurityHandler {
	return &SecurityHandler{
		securityUseCase: securityUseCase,
		logger:          logger,
	}
}

// ClaimHandler claims the application: installs trust anchors and the
// initial policy.
// POST /v1/security/claim
// Returns 204 No Content on success.
func (h *SecurityHandler) ClaimHandler(c *gin.Context) {
	var req dto.ClaimRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.securityUseCase.Claim(c.Request.Context(), input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetHandler removes the trust anchors and every installed policy.
// POST /v1/security/reset
// Returns 204 No Content on success.
func (h *SecurityHandler) ResetHandler(c *gin.Context) {
	if err := h.securityUseCase.Reset(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetApplicationHandler returns the security posture of the application.
// GET /v1/security/application
// Returns 200 OK.
func (h *SecurityHandler) GetApplicationHandler(c *gin.Context) {
	output, err := h.securityUseCase.GetApplication(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationToResponse(output))
}

// SetPasscodeHandler stores the claim passcode.
// PUT /v1/security/passcode
// Returns 204 No Content on success.
func (h *SecurityHandler) SetPasscodeHandler(c *gin.Context) {
	var req dto.SetPasscodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.securityUseCase.SetClaimPasscode(c.Request.Context(), req.Passcode); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
