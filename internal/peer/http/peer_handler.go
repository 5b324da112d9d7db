// Package http provides HTTP handlers for peer registry operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/httputil"
	"github.com/allisson/busguard/internal/peer/http/dto"
	peerUseCase "github.com/allisson/busguard/internal/peer/usecase"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// PeerHandler handles HTTP requests for peer registry operations.
type PeerHandler struct {
	peerUseCase peerUseCase.PeerUseCase
	logger      *slog.Logger
}

// NewPeerHandler creates a new peer handler with required dependencies.
func NewPeerHandler(peerUseCase peerUseCase.PeerUseCase, logger *slog.Logger) *PeerHandler {
	return &PeerHandler{
		peerUseCase: peerUseCase,
		logger:      logger,
	}
}

// RegisterHandler registers a connected peer.
// POST /v1/peers
// Returns 201 Created with the registered peer.
func (h *PeerHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterPeerRequest

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

	peer, err := h.peerUseCase.Register(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPeerToResponse(peer))
}

// GetHandler retrieves a peer by ID.
// GET /v1/peers/:id
// Returns 200 OK with peer data.
func (h *PeerHandler) GetHandler(c *gin.Context) {
	peerID, err := parsePeerID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	peer, err := h.peerUseCase.Get(c.Request.Context(), peerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPeerToResponse(peer))
}

// ListHandler returns registered peers, newest first.
// GET /v1/peers?offset=0&limit=50
// Returns 200 OK.
func (h *PeerHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	peers, err := h.peerUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]dto.PeerResponse, 0, len(peers))
	for _, peer := range peers {
		responses = append(responses, dto.MapPeerToResponse(peer))
	}
	c.JSON(http.StatusOK, gin.H{"peers": responses})
}

// DeleteHandler removes a peer, typically on session teardown.
// DELETE /v1/peers/:id
// Returns 204 No Content.
func (h *PeerHandler) DeleteHandler(c *gin.Context) {
	peerID, err := parsePeerID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.peerUseCase.Delete(c.Request.Context(), peerID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// InstallManifestsHandler replaces the peer's signed manifests.
// POST /v1/peers/:id/manifests
// Returns 204 No Content.
func (h *PeerHandler) InstallManifestsHandler(c *gin.Context) {
	peerID, err := parsePeerID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.InstallManifestsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.peerUseCase.InstallManifests(c.Request.Context(), peerID, req.ToRules()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// InstallMembershipsHandler replaces the peer's membership certificate chains.
// POST /v1/peers/:id/memberships
// Returns 204 No Content.
func (h *PeerHandler) InstallMembershipsHandler(c *gin.Context) {
	peerID, err := parsePeerID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.InstallMembershipsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	chains, err := req.ToChains()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.peerUseCase.InstallMemberships(c.Request.Context(), peerID, chains); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// parsePeerID extracts and validates the :id path parameter.
func parsePeerID(c *gin.Context) (uuid.UUID, error) {
	peerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid peer ID format: must be a valid UUID")
	}
	return peerID, nil
}
