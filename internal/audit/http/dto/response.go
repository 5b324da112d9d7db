// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
)

// DecisionLogResponse represents a decision audit log entry in API responses.
type DecisionLogResponse struct {
	ID            uuid.UUID      `json:"id"`
	RequestID     uuid.UUID      `json:"request_id"`
	PeerID        uuid.UUID      `json:"peer_id"`
	ObjectPath    string         `json:"object_path"`
	InterfaceName string         `json:"interface_name"`
	MemberName    string         `json:"member_name"`
	MemberType    string         `json:"member_type"`
	Outgoing      bool           `json:"outgoing"`
	Allowed       bool           `json:"allowed"`
	Reason        string         `json:"reason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Signature     string         `json:"signature,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// MapDecisionLogToResponse converts a domain decision log to a response.
// The signature is base64-encoded for JSON transport.
func MapDecisionLogToResponse(log *auditDomain.DecisionLog) DecisionLogResponse {
	response := DecisionLogResponse{
		ID:            log.ID,
		RequestID:     log.RequestID,
		PeerID:        log.PeerID,
		ObjectPath:    log.ObjectPath,
		InterfaceName: log.InterfaceName,
		MemberName:    log.MemberName,
		MemberType:    log.MemberType,
		Outgoing:      log.Outgoing,
		Allowed:       log.Allowed,
		Reason:        log.Reason,
		Metadata:      log.Metadata,
		CreatedAt:     log.CreatedAt,
	}
	if len(log.Signature) > 0 {
		response.Signature = base64.StdEncoding.EncodeToString(log.Signature)
	}
	return response
}
