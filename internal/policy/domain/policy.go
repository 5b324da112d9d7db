// Package domain defines the authorization policy data model.
//
// A policy is an ordered list of access-control entries (ACLs). Each ACL pairs
// a set of peer qualifiers (who the entry applies to) with a list of rules
// (what those peers may do). Policies are installed as immutable, versioned
// snapshots: evaluation never mutates a policy, and readers always observe a
// complete document.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is a bitmask of the rights a rule member grants.
// A member with an empty mask is an explicit deny marker.
type Action uint8

const (
	// ActionProvide allows providing the member: exposing a method or
	// property, or emitting a signal.
	ActionProvide Action = 0x01

	// ActionObserve allows observing the member: reading a property or
	// receiving a signal.
	ActionObserve Action = 0x02

	// ActionModify allows modifying: calling a method or setting a property.
	ActionModify Action = 0x04

	// ActionAll grants every right.
	ActionAll = ActionProvide | ActionObserve | ActionModify
)

// Covers reports whether the mask grants every bit of the required action.
// Partial overlap is not enough: a mask must fully contain the requirement.
func (a Action) Covers(required Action) bool {
	return a&required == required
}

// Denied reports whether the mask is an explicit deny marker (no bits set).
func (a Action) Denied() bool {
	return a == 0
}

// Names returns the list of action names encoded in the mask.
func (a Action) Names() []string {
	names := []string{}
	if a&ActionProvide != 0 {
		names = append(names, "provide")
	}
	if a&ActionObserve != 0 {
		names = append(names, "observe")
	}
	if a&ActionModify != 0 {
		names = append(names, "modify")
	}
	return names
}

// ActionFromNames builds an action mask from a list of action names.
// Unknown names are ignored; an empty list yields the explicit deny mask.
func ActionFromNames(names []string) Action {
	var mask Action
	for _, name := range names {
		switch name {
		case "provide":
			mask |= ActionProvide
		case "observe":
			mask |= ActionObserve
		case "modify":
			mask |= ActionModify
		}
	}
	return mask
}

// MemberType narrows a rule member to a kind of bus traffic.
type MemberType string

const (
	// MemberTypeNotSpecified matches any member kind.
	MemberTypeNotSpecified MemberType = "not_specified"

	// MemberTypeMethodCall matches method call members.
	MemberTypeMethodCall MemberType = "method_call"

	// MemberTypeSignal matches signal members.
	MemberTypeSignal MemberType = "signal"

	// MemberTypeProperty matches property members.
	MemberTypeProperty MemberType = "property"
)

// Member is a single entry in a rule: a member name pattern, the kind of
// traffic it applies to, and the actions it grants.
//
// Name semantics: "" means unspecified (the member never matches), "*" matches
// every member, and a name ending in "*" is a prefix pattern. A wildcard
// member with an empty action mask is an explicit deny.
type Member struct {
	Name    string     `json:"name"`
	Type    MemberType `json:"type"`
	Actions Action     `json:"actions"`
}

// Rule grants (or denies) actions on members of an interface at an object
// path. ObjectPath and InterfaceName match on equality or, when the pattern
// ends in "*", on string prefix. A rule with no members, an empty object
// path, or an empty interface name never matches anything.
type Rule struct {
	ObjectPath    string   `json:"object_path"`
	InterfaceName string   `json:"interface_name"`
	Members       []Member `json:"members"`
}

// PeerQualifierType selects the criterion a peer is matched on.
type PeerQualifierType string

const (
	// PeerAll qualifies every peer, trusted or not.
	PeerAll PeerQualifierType = "all"

	// PeerAnyTrusted qualifies any peer that completed authentication.
	PeerAnyTrusted PeerQualifierType = "any_trusted"

	// PeerWithPublicKey qualifies the single peer holding a specific key.
	PeerWithPublicKey PeerQualifierType = "with_public_key"

	// PeerFromCertificateAuthority qualifies peers whose identity certificate
	// chain includes a specific issuer key.
	PeerFromCertificateAuthority PeerQualifierType = "from_certificate_authority"

	// PeerWithMembership qualifies peers holding a membership certificate for
	// a specific security group.
	PeerWithMembership PeerQualifierType = "with_membership"
)

// PeerQualifier is one criterion in an ACL's peer set. PublicKey holds the
// base64-encoded key for the key-based qualifier types; GroupID identifies
// the security group for membership qualifiers.
type PeerQualifier struct {
	Type      PeerQualifierType `json:"type"`
	PublicKey string            `json:"public_key,omitempty"`
	GroupID   uuid.UUID         `json:"group_id,omitempty"`
}

// ACL pairs peer qualifiers with the rules that apply to qualifying peers.
// A peer qualifies for the ACL when it matches at least one qualifier.
type ACL struct {
	Peers []PeerQualifier `json:"peers"`
	Rules []Rule          `json:"rules"`
}

// Policy is a complete, versioned authorization document. ACLs are evaluated
// in order; an explicit deny in any qualifying ACL stops further evaluation.
type Policy struct {
	ID        uuid.UUID
	Version   uint32
	ACLs      []ACL
	CreatedAt time.Time
}

// DefaultPolicy builds the policy installed at claim time: one ACL per
// security group granting members of that group full access, plus an ACL
// allowing any trusted peer to observe and provide.
func DefaultPolicy(groupIDs []uuid.UUID) *Policy {
	acls := make([]ACL, 0, len(groupIDs)+1)
	for _, groupID := range groupIDs {
		acls = append(acls, ACL{
			Peers: []PeerQualifier{
				{Type: PeerWithMembership, GroupID: groupID},
			},
			Rules: []Rule{
				{
					ObjectPath:    "*",
					InterfaceName: "*",
					Members: []Member{
						{Name: "*", Type: MemberTypeNotSpecified, Actions: ActionAll},
					},
				},
			},
		})
	}
	acls = append(acls, ACL{
		Peers: []PeerQualifier{
			{Type: PeerAnyTrusted},
		},
		Rules: []Rule{
			{
				ObjectPath:    "*",
				InterfaceName: "*",
				Members: []Member{
					{Name: "*", Type: MemberTypeNotSpecified, Actions: ActionProvide | ActionObserve},
				},
			},
		},
	})
	return &Policy{
		ID:        uuid.Must(uuid.NewV7()),
		Version:   1,
		ACLs:      acls,
		CreatedAt: time.Now().UTC(),
	}
}
