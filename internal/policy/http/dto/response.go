package dto

import (
	"time"

	"github.com/google/uuid"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// MemberResponse is one rule member entry.
type MemberResponse struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

// RuleResponse is one policy or manifest rule.
type RuleResponse struct {
	ObjectPath    string           `json:"object_path"`
	InterfaceName string           `json:"interface_name"`
	Members       []MemberResponse `json:"members"`
}

// PeerQualifierResponse is one entry in an ACL's peer set.
type PeerQualifierResponse struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
}

// ACLResponse pairs peer qualifiers with the rules they unlock.
type ACLResponse struct {
	Peers []PeerQualifierResponse `json:"peers"`
	Rules []RuleResponse          `json:"rules"`
}

// PolicyResponse is an installed policy version.
type PolicyResponse struct {
	ID        string        `json:"id"`
	Version   uint32        `json:"version"`
	ACLs      []ACLResponse `json:"acls"`
	CreatedAt time.Time     `json:"created_at"`
}

// MapPolicyToResponse converts a domain policy to its response DTO.
func MapPolicyToResponse(policy *policyDomain.Policy) PolicyResponse {
	response := PolicyResponse{
		ID:        policy.ID.String(),
		Version:   policy.Version,
		CreatedAt: policy.CreatedAt,
	}
	for _, acl := range policy.ACLs {
		aclResponse := ACLResponse{}
		for _, peer := range acl.Peers {
			qualifier := PeerQualifierResponse{
				Type:      string(peer.Type),
				PublicKey: peer.PublicKey,
			}
			if peer.GroupID != uuid.Nil {
				qualifier.GroupID = peer.GroupID.String()
			}
			aclResponse.Peers = append(aclResponse.Peers, qualifier)
		}
		for _, rule := range acl.Rules {
			aclResponse.Rules = append(aclResponse.Rules, MapRuleToResponse(rule))
		}
		response.ACLs = append(response.ACLs, aclResponse)
	}
	return response
}

// MapRuleToResponse converts a domain rule to its response DTO.
func MapRuleToResponse(rule policyDomain.Rule) RuleResponse {
	response := RuleResponse{
		ObjectPath:    rule.ObjectPath,
		InterfaceName: rule.InterfaceName,
	}
	for _, member := range rule.Members {
		response.Members = append(response.Members, MemberResponse{
			Name:    member.Name,
			Type:    string(member.Type),
			Actions: member.Actions.Names(),
		})
	}
	return response
}
