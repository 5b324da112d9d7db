// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	"github.com/google/uuid"

	securityDomain "github.com/allisson/busguard/internal/security/domain"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// TrustAnchorRequest is one root-of-trust entry in a claim request.
type TrustAnchorRequest struct {
	PublicKey string `json:"public_key"`
	GroupID   string `json:"group_id,omitempty"`
}

// ClaimRequest contains the parameters for claiming the application.
type ClaimRequest struct {
	TrustAnchors   []TrustAnchorRequest `json:"trust_anchors"`
	SecurityGroups []string             `json:"security_groups"`
	AuthSuite      string               `json:"auth_suite"`
	Passcode       string               `json:"passcode,omitempty"`
}

// Validate checks if the claim request is valid.
func (r *ClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TrustAnchors,
			validation.Required,
			validation.Each(validation.By(validateTrustAnchor)),
		),
		validation.Field(&r.SecurityGroups,
			validation.Each(is.UUID),
		),
		validation.Field(&r.AuthSuite,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ToInput converts the request into a domain claim input.
func (r *ClaimRequest) ToInput() (*securityDomain.ClaimInput, error) {
	now := time.Now().UTC()
	input := &securityDomain.ClaimInput{
		AuthSuite: r.AuthSuite,
		Passcode:  r.Passcode,
	}
	for _, anchor := range r.TrustAnchors {
		entry := securityDomain.TrustAnchor{
			ID:        uuid.Must(uuid.NewV7()),
			PublicKey: anchor.PublicKey,
			CreatedAt: now,
		}
		if anchor.GroupID != "" {
			groupID, err := uuid.Parse(anchor.GroupID)
			if err != nil {
				return nil, err
			}
			entry.GroupID = groupID
		}
		input.TrustAnchors = append(input.TrustAnchors, entry)
	}
	for _, group := range r.SecurityGroups {
		groupID, err := uuid.Parse(group)
		if err != nil {
			return nil, err
		}
		input.SecurityGroups = append(input.SecurityGroups, groupID)
	}
	return input, nil
}

// validateTrustAnchor validates a single trust anchor entry.
func validateTrustAnchor(value interface{}) error {
	anchor, ok := value.(TrustAnchorRequest)
	if !ok {
		return validation.NewError("validation_trust_anchor_type", "must be a trust anchor")
	}

	return validation.ValidateStruct(&anchor,
		validation.Field(&anchor.PublicKey,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&anchor.GroupID,
			is.UUID,
		),
	)
}

// SetPasscodeRequest contains the claim passcode to store.
type SetPasscodeRequest struct {
	Passcode string `json:"passcode"`
}

// Validate checks if the set passcode request is valid.
func (r *SetPasscodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Passcode,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(8, 255),
		),
	)
}
