package dto

import (
	"time"

	"github.com/google/uuid"

	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDTO "github.com/allisson/busguard/internal/policy/http/dto"
)

// CertificateResponse represents one certificate digest in API responses.
type CertificateResponse struct {
	Type             string `json:"type"`
	GroupID          string `json:"group_id,omitempty"`
	SubjectPublicKey string `json:"subject_public_key"`
}

// ManifestResponse represents a peer manifest in API responses.
type ManifestResponse struct {
	ID        uuid.UUID                `json:"id"`
	Rules     []policyDTO.RuleResponse `json:"rules"`
	CreatedAt time.Time                `json:"created_at"`
}

// PeerResponse represents a registered peer in API responses.
type PeerResponse struct {
	ID            uuid.UUID               `json:"id"`
	Local         bool                    `json:"local"`
	AuthMechanism string                  `json:"auth_mechanism"`
	AuthSuite     string                  `json:"auth_suite"`
	PublicKey     string                  `json:"public_key,omitempty"`
	IssuerChain   []string                `json:"issuer_chain,omitempty"`
	Memberships   [][]CertificateResponse `json:"memberships,omitempty"`
	Manifests     []ManifestResponse      `json:"manifests,omitempty"`
	SessionExpiry time.Time               `json:"session_expiry"`
	CreatedAt     time.Time               `json:"created_at"`
}

// MapPeerToResponse converts a domain peer to a peer response.
func MapPeerToResponse(peer *peerDomain.Peer) PeerResponse {
	response := PeerResponse{
		ID:            peer.ID,
		Local:         peer.Local,
		AuthMechanism: peer.AuthMechanism,
		AuthSuite:     peer.AuthSuite,
		PublicKey:     peer.PublicKey,
		IssuerChain:   peer.IssuerChain,
		SessionExpiry: peer.SessionExpiry,
		CreatedAt:     peer.CreatedAt,
	}

	for _, chain := range peer.Memberships {
		var chainResponse []CertificateResponse
		for _, cert := range chain {
			certResponse := CertificateResponse{
				Type:             string(cert.Type),
				SubjectPublicKey: cert.SubjectPublicKey,
			}
			if cert.GroupID != uuid.Nil {
				certResponse.GroupID = cert.GroupID.String()
			}
			chainResponse = append(chainResponse, certResponse)
		}
		response.Memberships = append(response.Memberships, chainResponse)
	}

	for _, manifest := range peer.Manifests {
		manifestResponse := ManifestResponse{
			ID:        manifest.ID,
			CreatedAt: manifest.CreatedAt,
		}
		for _, rule := range manifest.Rules {
			manifestResponse.Rules = append(manifestResponse.Rules, policyDTO.MapRuleToResponse(rule))
		}
		response.Manifests = append(response.Manifests, manifestResponse)
	}

	return response
}
