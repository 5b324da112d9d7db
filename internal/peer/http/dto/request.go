// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	policyDTO "github.com/allisson/busguard/internal/policy/http/dto"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// CertificateRequest is one certificate digest in a membership chain.
type CertificateRequest struct {
	Type             string `json:"type"`
	GroupID          string `json:"group_id,omitempty"`
	SubjectPublicKey string `json:"subject_public_key"`
}

// RegisterPeerRequest contains the parameters for registering a connected peer.
type RegisterPeerRequest struct {
	AuthMechanism string                 `json:"auth_mechanism"`
	AuthSuite     string                 `json:"auth_suite,omitempty"`
	PublicKey     string                 `json:"public_key,omitempty"`
	IssuerChain   []string               `json:"issuer_chain,omitempty"`
	Memberships   [][]CertificateRequest `json:"memberships,omitempty"`
}

// Validate checks if the register peer request is valid.
func (r *RegisterPeerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AuthMechanism,
			validation.Required,
			validation.In(
				peerDomain.AuthMechanismECDHENull,
				peerDomain.AuthMechanismECDHEPSK,
				peerDomain.AuthMechanismECDHESPEKE,
				peerDomain.AuthMechanismECDHEECDSA,
				peerDomain.AuthMechanismSRP,
				peerDomain.AuthMechanismSRPLogon,
			),
		),
		validation.Field(&r.PublicKey,
			validation.When(r.PublicKey != "", customValidation.NotBlank),
		),
	)
}

// ToInput converts the request into a domain register input.
func (r *RegisterPeerRequest) ToInput() (*peerDomain.RegisterPeerInput, error) {
	input := &peerDomain.RegisterPeerInput{
		AuthMechanism: r.AuthMechanism,
		AuthSuite:     r.AuthSuite,
		PublicKey:     r.PublicKey,
		IssuerChain:   r.IssuerChain,
	}
	if r.AuthSuite == "" {
		input.AuthSuite = r.AuthMechanism
	}
	memberships, err := mapMemberships(r.Memberships)
	if err != nil {
		return nil, err
	}
	input.Memberships = memberships
	return input, nil
}

// InstallManifestsRequest replaces a peer's signed manifests. Each entry is
// the rule set of one manifest.
type InstallManifestsRequest struct {
	Manifests [][]policyDTO.RuleRequest `json:"manifests"`
}

// Validate checks if the install manifests request is valid.
func (r *InstallManifestsRequest) Validate() error {
	for _, manifest := range r.Manifests {
		for _, rule := range manifest {
			if err := policyDTO.ValidateRule(rule); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToRules converts the request into per-manifest domain rule sets.
func (r *InstallManifestsRequest) ToRules() [][]policyDomain.Rule {
	var rules [][]policyDomain.Rule
	for _, manifest := range r.Manifests {
		var manifestRules []policyDomain.Rule
		for _, rule := range manifest {
			manifestRules = append(manifestRules, rule.ToDomain())
		}
		rules = append(rules, manifestRules)
	}
	return rules
}

// InstallMembershipsRequest replaces a peer's membership certificate chains.
type InstallMembershipsRequest struct {
	Memberships [][]CertificateRequest `json:"memberships"`
}

// Validate checks if the install memberships request is valid.
func (r *InstallMembershipsRequest) Validate() error {
	for _, chain := range r.Memberships {
		for _, cert := range chain {
			if err := validateCertificate(cert); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToChains converts the request into domain certificate chains.
func (r *InstallMembershipsRequest) ToChains() ([]peerDomain.CertificateChain, error) {
	return mapMemberships(r.Memberships)
}

func mapMemberships(memberships [][]CertificateRequest) ([]peerDomain.CertificateChain, error) {
	var chains []peerDomain.CertificateChain
	for _, chain := range memberships {
		var domainChain peerDomain.CertificateChain
		for _, cert := range chain {
			domainCert := peerDomain.Certificate{
				Type:             peerDomain.CertificateType(cert.Type),
				SubjectPublicKey: cert.SubjectPublicKey,
			}
			if cert.GroupID != "" {
				groupID, err := uuid.Parse(cert.GroupID)
				if err != nil {
					return nil, err
				}
				domainCert.GroupID = groupID
			}
			domainChain = append(domainChain, domainCert)
		}
		chains = append(chains, domainChain)
	}
	return chains, nil
}

// validateCertificate validates a single certificate entry.
func validateCertificate(cert CertificateRequest) error {
	return validation.ValidateStruct(&cert,
		validation.Field(&cert.Type,
			validation.Required,
			validation.In(
				string(peerDomain.CertificateTypeIdentity),
				string(peerDomain.CertificateTypeMembership),
			),
		),
		validation.Field(&cert.GroupID,
			is.UUID,
		),
		validation.Field(&cert.SubjectPublicKey,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
