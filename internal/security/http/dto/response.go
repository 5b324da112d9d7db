package dto

import (
	securityUseCase "github.com/allisson/busguard/internal/security/usecase"
)

// ApplicationResponse is the externally visible security posture.
type ApplicationResponse struct {
	State               string `json:"state"`
	ClaimCapabilities   uint16 `json:"claim_capabilities"`
	ClaimCapabilityInfo string `json:"claim_capability_info,omitempty"`
	PublicKey           string `json:"public_key,omitempty"`
	TrustAnchorCount    int    `json:"trust_anchor_count"`
}

// MapApplicationToResponse converts the use case output to its response DTO.
func MapApplicationToResponse(output *securityUseCase.ApplicationOutput) ApplicationResponse {
	return ApplicationResponse{
		State:               string(output.State),
		ClaimCapabilities:   uint16(output.ClaimCapabilities),
		ClaimCapabilityInfo: output.ClaimCapabilityInfo,
		PublicKey:           output.PublicKey,
		TrustAnchorCount:    output.TrustAnchorCount,
	}
}
