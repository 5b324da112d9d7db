// Package http provides HTTP handlers for authorization checks.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/authz/http/dto"
	authzUseCase "github.com/allisson/busguard/internal/authz/usecase"
	"github.com/allisson/busguard/internal/httputil"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// AuthzHandler handles HTTP requests for authorization checks.
type AuthzHandler struct {
	authzUseCase authzUseCase.AuthzUseCase
	logger       *slog.Logger
}

// NewAuthzHandler creates a new authorization handler with required dependencies.
func NewAuthzHandler(authzUseCase authzUseCase.AuthzUseCase, logger *slog.Logger) *AuthzHandler {
	return &AuthzHandler{
		authzUseCase: authzUseCase,
		logger:       logger,
	}
}

// CheckHandler authorizes a bus message for a registered peer.
// POST /v1/authz/check
// Returns 200 OK with the decision; a denial is a 200 with allowed=false.
// Returns 422 when the message cannot be classified and 404 for unknown peers.
func (h *AuthzHandler) CheckHandler(c *gin.Context) {
	var req dto.CheckRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	peerID, err := uuid.Parse(req.PeerID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.authzUseCase.Check(c.Request.Context(), &authzUseCase.CheckInput{
		RequestID:     requestUUID(c),
		PeerID:        peerID,
		Outgoing:      req.Outgoing,
		Authenticated: req.Authenticated,
		Message:       req.ToMessage(),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CheckResponse{Allowed: output.Allowed, Reason: output.Reason})
}

// CheckPropertyHandler authorizes a single property read for a registered peer.
// POST /v1/authz/check-property
// Returns 200 OK with the decision; a denial is a 200 with allowed=false.
func (h *AuthzHandler) CheckPropertyHandler(c *gin.Context) {
	var req dto.CheckPropertyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	peerID, err := uuid.Parse(req.PeerID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.authzUseCase.CheckProperty(c.Request.Context(), &authzUseCase.CheckPropertyInput{
		RequestID:     requestUUID(c),
		PeerID:        peerID,
		ObjectPath:    req.ObjectPath,
		InterfaceName: req.InterfaceName,
		PropertyName:  req.PropertyName,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CheckResponse{Allowed: output.Allowed, Reason: output.Reason})
}

// requestUUID extracts the request ID set by the requestid middleware,
// falling back to a fresh UUID when it is absent or not a UUID.
func requestUUID(c *gin.Context) uuid.UUID {
	if id, err := uuid.Parse(requestid.Get(c)); err == nil {
		return id
	}
	return uuid.Must(uuid.NewV7())
}
