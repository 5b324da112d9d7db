package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

func allowAllRules() []policyDomain.Rule {
	return []policyDomain.Rule{
		{
			ObjectPath:    "*",
			InterfaceName: "*",
			Members: []policyDomain.Member{
				{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionAll},
			},
		},
	}
}

func denyAllRules() []policyDomain.Rule {
	return []policyDomain.Rule{
		{
			ObjectPath:    "*",
			InterfaceName: "*",
			Members: []policyDomain.Member{
				{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
			},
		},
	}
}

func TestPeerQualifiedForACL(t *testing.T) {
	groupID := uuid.Must(uuid.NewV7())
	otherGroup := uuid.Must(uuid.NewV7())
	memberPeer := &peerDomain.Peer{
		ID: uuid.Must(uuid.NewV7()),
		Memberships: []peerDomain.CertificateChain{
			{
				{Type: peerDomain.CertificateTypeMembership, GroupID: groupID, SubjectPublicKey: "peer-key"},
				{Type: peerDomain.CertificateTypeMembership, GroupID: otherGroup, SubjectPublicKey: "sga-key"},
			},
		},
	}

	tests := []struct {
		name              string
		acl               policyDomain.ACL
		peer              *peerDomain.Peer
		posture           *trustPosture
		expectedQualified bool
		expectedExactKey  bool
	}{
		{
			name: "Success_AllMatchesUntrustedPeer",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAll}},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{},
			expectedQualified: true,
		},
		{
			name: "Success_AnyTrustedMatchesTrustedPeer",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{trusted: true},
			expectedQualified: true,
		},
		{
			name: "Failure_AnyTrustedRejectsUntrustedPeer",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{},
			expectedQualified: false,
		},
		{
			name: "Success_ExactPublicKeyMatch",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithPublicKey, PublicKey: "peer-key"},
				},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{trusted: true, publicKey: "peer-key"},
			expectedQualified: true,
			expectedExactKey:  true,
		},
		{
			name: "Failure_PublicKeyMismatch",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithPublicKey, PublicKey: "other-key"},
				},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{trusted: true, publicKey: "peer-key"},
			expectedQualified: false,
		},
		{
			name: "Failure_PublicKeyQualifierNeedsExchangedKey",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithPublicKey, PublicKey: "peer-key"},
				},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{trusted: true},
			expectedQualified: false,
		},
		{
			name: "Success_CertificateAuthorityInIssuerChain",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerFromCertificateAuthority, PublicKey: "ca-key"},
				},
			},
			peer: &peerDomain.Peer{},
			posture: &trustPosture{
				trusted:     true,
				publicKey:   "peer-key",
				issuerChain: []string{"intermediate-key", "ca-key"},
			},
			expectedQualified: true,
		},
		{
			name: "Failure_CertificateAuthorityNotInChain",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerFromCertificateAuthority, PublicKey: "ca-key"},
				},
			},
			peer: &peerDomain.Peer{},
			posture: &trustPosture{
				trusted:     true,
				publicKey:   "peer-key",
				issuerChain: []string{"another-ca"},
			},
			expectedQualified: false,
		},
		{
			name: "Success_MembershipLeafGroupMatch",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithMembership, GroupID: groupID},
				},
			},
			peer:              memberPeer,
			posture:           &trustPosture{trusted: true, publicKey: "peer-key"},
			expectedQualified: true,
		},
		{
			name: "Failure_MembershipOnlyLeafCounts",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithMembership, GroupID: otherGroup},
				},
			},
			peer:              memberPeer,
			posture:           &trustPosture{trusted: true, publicKey: "peer-key"},
			expectedQualified: false,
		},
		{
			name: "Success_SecondQualifierMatches",
			acl: policyDomain.ACL{
				Peers: []policyDomain.PeerQualifier{
					{Type: policyDomain.PeerWithPublicKey, PublicKey: "other-key"},
					{Type: policyDomain.PeerAnyTrusted},
				},
			},
			peer:              &peerDomain.Peer{},
			posture:           &trustPosture{trusted: true, publicKey: "peer-key"},
			expectedQualified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qualified, byExactKey := peerQualifiedForACL(tt.acl, tt.peer, tt.posture)
			assert.Equal(t, tt.expectedQualified, qualified)
			assert.Equal(t, tt.expectedExactKey, byExactKey)
		})
	}
}

func TestPolicyAuthorized_GrantsAccumulateAcrossACLs(t *testing.T) {
	// Neither ACL alone covers observe|modify, together they do not need to:
	// each required action is checked as a single mask per request, so a
	// request needing modify passes via the second ACL alone.
	policy := &policyDomain.Policy{
		ACLs: []policyDomain.ACL{
			{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAll}},
				Rules: []policyDomain.Rule{
					{
						ObjectPath:    "*",
						InterfaceName: "*",
						Members: []policyDomain.Member{
							{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionObserve},
						},
					},
				},
			},
			{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
				Rules: allowAllRules(),
			},
		},
	}
	req := methodRequest("/app/door", "com.example.Door", "Open")

	allowed, denied := policyAuthorized(policy, req, policyDomain.ActionModify, &peerDomain.Peer{}, &trustPosture{trusted: true}, false)
	assert.True(t, allowed)
	assert.False(t, denied)

	// The untrusted peer only qualifies for the first ACL, which does not
	// grant modify.
	allowed, denied = policyAuthorized(policy, req, policyDomain.ActionModify, &peerDomain.Peer{}, &trustPosture{}, false)
	assert.False(t, allowed)
	assert.False(t, denied)
}

func TestPolicyAuthorized_DenyRequiresExactKeyQualification(t *testing.T) {
	denyACL := policyDomain.ACL{
		Peers: []policyDomain.PeerQualifier{
			{Type: policyDomain.PeerWithPublicKey, PublicKey: "blocked-key"},
		},
		Rules: denyAllRules(),
	}
	allowACL := policyDomain.ACL{
		Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
		Rules: allowAllRules(),
	}
	policy := &policyDomain.Policy{ACLs: []policyDomain.ACL{denyACL, allowACL}}
	req := methodRequest("/app/door", "com.example.Door", "Open")

	// The blocked peer qualifies for the deny ACL by exact key: the deny
	// overrides the grant it would get from the trusted ACL.
	allowed, denied := policyAuthorized(policy, req, policyDomain.ActionModify, &peerDomain.Peer{}, &trustPosture{trusted: true, publicKey: "blocked-key"}, false)
	assert.False(t, allowed)
	assert.True(t, denied)

	// Another trusted peer matches the deny ACL's rules too, but not by
	// exact key, so the zero mask is inert and the allow ACL decides.
	allowed, denied = policyAuthorized(policy, req, policyDomain.ActionModify, &peerDomain.Peer{}, &trustPosture{trusted: true, publicKey: "other-key"}, false)
	assert.True(t, allowed)
	assert.False(t, denied)
}

func TestPolicyAuthorized_DenyInAnyTrustedACLIsInert(t *testing.T) {
	// Zero action masks only deny inside ACLs matched on the exact public
	// key; anywhere else they simply grant nothing.
	policy := &policyDomain.Policy{
		ACLs: []policyDomain.ACL{
			{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
				Rules: denyAllRules(),
			},
			{
				Peers: []policyDomain.PeerQualifier{{Type: policyDomain.PeerAnyTrusted}},
				Rules: allowAllRules(),
			},
		},
	}
	req := methodRequest("/app/door", "com.example.Door", "Open")

	allowed, denied := policyAuthorized(policy, req, policyDomain.ActionModify, &peerDomain.Peer{}, &trustPosture{trusted: true}, false)
	assert.True(t, allowed)
	assert.False(t, denied)
}

func TestACLAuthorized_DenyStopsRuleScan(t *testing.T) {
	acl := policyDomain.ACL{
		Peers: []policyDomain.PeerQualifier{
			{Type: policyDomain.PeerWithPublicKey, PublicKey: "peer-key"},
		},
		Rules: append(denyAllRules(), allowAllRules()...),
	}
	req := methodRequest("/app/door", "com.example.Door", "Open")

	allowed, denied := aclAuthorized(acl, req, policyDomain.ActionModify, true, false)
	assert.False(t, allowed)
	assert.True(t, denied)
}

func TestManifestAuthorized(t *testing.T) {
	doorManifest := policyDomain.Manifest{
		Rules: []policyDomain.Rule{
			{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionModify},
				},
			},
		},
	}

	tests := []struct {
		name      string
		manifests []policyDomain.Manifest
		req       *Request
		required  policyDomain.Action
		expected  bool
	}{
		{
			name:      "Success_ManifestCoversRequest",
			manifests: []policyDomain.Manifest{doorManifest},
			req:       methodRequest("/app/door", "com.example.Door", "Open"),
			required:  policyDomain.ActionModify,
			expected:  true,
		},
		{
			name:      "Failure_ManifestDoesNotCoverInterface",
			manifests: []policyDomain.Manifest{doorManifest},
			req:       methodRequest("/app/window", "com.example.Window", "Open"),
			required:  policyDomain.ActionModify,
			expected:  false,
		},
		{
			name:      "Failure_ManifestDoesNotCoverAction",
			manifests: []policyDomain.Manifest{doorManifest},
			req:       methodRequest("/app/door", "com.example.Door", "Open"),
			required:  policyDomain.ActionProvide,
			expected:  false,
		},
		{
			name:      "Failure_NoManifestsInstalled",
			manifests: nil,
			req:       methodRequest("/app/door", "com.example.Door", "Open"),
			required:  policyDomain.ActionModify,
			expected:  false,
		},
		{
			name: "Success_AnyManifestSuffices",
			manifests: []policyDomain.Manifest{
				{Rules: denyAllRules()},
				doorManifest,
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, manifestAuthorized(tt.manifests, tt.req, tt.required, false))
		})
	}
}
