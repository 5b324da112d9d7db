// Package dto provides data transfer objects for HTTP request and response handling.
//
// Rules travel with action-name lists ("provide", "observe", "modify"). An
// empty actions list maps to a zero action mask, which is how explicit deny
// rules are expressed.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	"github.com/google/uuid"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// MemberRequest is one rule member entry.
type MemberRequest struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

// RuleRequest is one policy or manifest rule.
type RuleRequest struct {
	ObjectPath    string          `json:"object_path"`
	InterfaceName string          `json:"interface_name"`
	Members       []MemberRequest `json:"members"`
}

// PeerQualifierRequest is one entry in an ACL's peer set.
type PeerQualifierRequest struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
}

// ACLRequest pairs peer qualifiers with the rules they unlock.
type ACLRequest struct {
	Peers []PeerQualifierRequest `json:"peers"`
	Rules []RuleRequest          `json:"rules"`
}

// InstallPolicyRequest contains the parameters for installing a policy version.
type InstallPolicyRequest struct {
	Version uint32       `json:"version"`
	ACLs    []ACLRequest `json:"acls"`
}

// Validate checks if the install policy request is valid.
func (r *InstallPolicyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Version,
			validation.Required,
		),
		validation.Field(&r.ACLs,
			validation.Required,
			validation.Each(validation.By(validateACL)),
		),
	)
}

// ToDomain converts the request into a domain policy.
func (r *InstallPolicyRequest) ToDomain() (*policyDomain.Policy, error) {
	policy := &policyDomain.Policy{Version: r.Version}
	for _, acl := range r.ACLs {
		domainACL := policyDomain.ACL{}
		for _, peer := range acl.Peers {
			qualifier := policyDomain.PeerQualifier{
				Type:      policyDomain.PeerQualifierType(peer.Type),
				PublicKey: peer.PublicKey,
			}
			if peer.GroupID != "" {
				groupID, err := uuid.Parse(peer.GroupID)
				if err != nil {
					return nil, err
				}
				qualifier.GroupID = groupID
			}
			domainACL.Peers = append(domainACL.Peers, qualifier)
		}
		for _, rule := range acl.Rules {
			domainACL.Rules = append(domainACL.Rules, rule.ToDomain())
		}
		policy.ACLs = append(policy.ACLs, domainACL)
	}
	return policy, nil
}

// ToDomain converts the rule request into a domain rule.
func (r *RuleRequest) ToDomain() policyDomain.Rule {
	rule := policyDomain.Rule{
		ObjectPath:    r.ObjectPath,
		InterfaceName: r.InterfaceName,
	}
	for _, member := range r.Members {
		memberType := policyDomain.MemberType(member.Type)
		if member.Type == "" {
			memberType = policyDomain.MemberTypeNotSpecified
		}
		rule.Members = append(rule.Members, policyDomain.Member{
			Name:    member.Name,
			Type:    memberType,
			Actions: policyDomain.ActionFromNames(member.Actions),
		})
	}
	return rule
}

// ValidateRule validates a single rule entry. Shared with the manifest
// endpoints, which carry the same rule shape.
func ValidateRule(value interface{}) error {
	rule, ok := value.(RuleRequest)
	if !ok {
		return validation.NewError("validation_rule_type", "must be a rule")
	}

	return validation.ValidateStruct(&rule,
		validation.Field(&rule.ObjectPath,
			validation.Required,
			customValidation.ObjectPath,
		),
		validation.Field(&rule.InterfaceName,
			validation.Required,
			customValidation.InterfaceName,
		),
		validation.Field(&rule.Members,
			validation.Required,
			validation.Each(validation.By(validateMember)),
		),
	)
}

// validateMember validates a single rule member entry.
func validateMember(value interface{}) error {
	member, ok := value.(MemberRequest)
	if !ok {
		return validation.NewError("validation_member_type", "must be a rule member")
	}

	return validation.ValidateStruct(&member,
		validation.Field(&member.Name,
			validation.Required,
			customValidation.MemberName,
		),
		validation.Field(&member.Type,
			validation.In(
				string(policyDomain.MemberTypeNotSpecified),
				string(policyDomain.MemberTypeMethodCall),
				string(policyDomain.MemberTypeSignal),
				string(policyDomain.MemberTypeProperty),
			),
		),
		validation.Field(&member.Actions,
			validation.Each(validation.In("provide", "observe", "modify")),
		),
	)
}

// validateACL validates a single ACL entry.
func validateACL(value interface{}) error {
	acl, ok := value.(ACLRequest)
	if !ok {
		return validation.NewError("validation_acl_type", "must be an acl")
	}

	return validation.ValidateStruct(&acl,
		validation.Field(&acl.Peers,
			validation.Required,
			validation.Each(validation.By(validatePeerQualifier)),
		),
		validation.Field(&acl.Rules,
			validation.Required,
			validation.Each(validation.By(ValidateRule)),
		),
	)
}

// validatePeerQualifier validates a single peer qualifier entry.
func validatePeerQualifier(value interface{}) error {
	peer, ok := value.(PeerQualifierRequest)
	if !ok {
		return validation.NewError("validation_peer_qualifier_type", "must be a peer qualifier")
	}

	rules := []*validation.FieldRules{
		validation.Field(&peer.Type,
			validation.Required,
			validation.In(
				string(policyDomain.PeerAll),
				string(policyDomain.PeerAnyTrusted),
				string(policyDomain.PeerWithPublicKey),
				string(policyDomain.PeerFromCertificateAuthority),
				string(policyDomain.PeerWithMembership),
			),
		),
		validation.Field(&peer.GroupID,
			is.UUID,
		),
	}
	switch policyDomain.PeerQualifierType(peer.Type) {
	case policyDomain.PeerWithPublicKey, policyDomain.PeerFromCertificateAuthority:
		rules = append(rules, validation.Field(&peer.PublicKey,
			validation.Required,
			customValidation.NotBlank,
		))
	case policyDomain.PeerWithMembership:
		rules = append(rules, validation.Field(&peer.GroupID,
			validation.Required,
		))
	}
	return validation.ValidateStruct(&peer, rules...)
}
