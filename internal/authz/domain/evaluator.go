package domain

import (
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// trustPosture is the engine's view of the peer for one authorization call,
// derived from the trust lookup and the authentication mechanism.
type trustPosture struct {
	trusted         bool
	publicKey       string
	issuerChain     []string
	enforceManifest bool
}

// peerQualifiedForACL reports whether the peer satisfies any of the ACL's
// peer qualifiers. byExactKey reports that the match was on the peer's exact
// public key, which is what entitles the ACL's rules to express explicit
// denies.
func peerQualifiedForACL(acl policyDomain.ACL, peer *peerDomain.Peer, posture *trustPosture) (qualified, byExactKey bool) {
	for _, q := range acl.Peers {
		if q.Type == policyDomain.PeerAll {
			return true, false
		}
		if !posture.trusted {
			continue
		}
		if q.Type == policyDomain.PeerAnyTrusted {
			return true, false
		}
		if posture.publicKey == "" {
			continue
		}
		switch q.Type {
		case policyDomain.PeerWithPublicKey:
			if q.PublicKey == posture.publicKey {
				return true, true
			}
		case policyDomain.PeerFromCertificateAuthority:
			for _, issuer := range posture.issuerChain {
				if issuer == q.PublicKey {
					return true, false
				}
			}
		case policyDomain.PeerWithMembership:
			for _, chain := range peer.Memberships {
				leaf := chain.Leaf()
				if leaf == nil || leaf.Type != peerDomain.CertificateTypeMembership {
					continue
				}
				if leaf.GroupID == q.GroupID {
					return true, false
				}
			}
		}
	}
	return false, false
}

// aclAuthorized evaluates the ACL's rules against the request. A detected
// deny stops the scan and reports the grants accumulated so far; the caller
// treats the deny as final regardless of them.
func aclAuthorized(acl policyDomain.ACL, req *Request, required policyDomain.Action, scanForDenied, strictGetAll bool) (allowed, denied bool) {
	for _, rule := range acl.Rules {
		ruleAllowed, ruleDenied := ruleMatched(rule, req, required, scanForDenied, strictGetAll)
		if ruleAllowed {
			allowed = true
		} else if ruleDenied {
			return allowed, true
		}
	}
	return allowed, false
}

// policyAuthorized evaluates every ACL the peer qualifies for. Grants from
// different ACLs accumulate, but a single explicit deny in an ACL matched on
// the peer's exact public key rejects the request outright.
func policyAuthorized(policy *policyDomain.Policy, req *Request, required policyDomain.Action, peer *peerDomain.Peer, posture *trustPosture, strictGetAll bool) (allowed, denied bool) {
	for _, acl := range policy.ACLs {
		qualified, byExactKey := peerQualifiedForACL(acl, peer, posture)
		if !qualified {
			continue
		}
		aclAllowed, aclDenied := aclAuthorized(acl, req, required, byExactKey, strictGetAll)
		if aclDenied {
			return allowed, true
		}
		if aclAllowed {
			allowed = true
		}
	}
	return allowed, false
}

// manifestAuthorized checks the peer's manifests. The manifests act as a
// ceiling on top of an already granted policy decision: at least one manifest
// rule must also cover the request. Deny scanning does not apply here.
func manifestAuthorized(manifests []policyDomain.Manifest, req *Request, required policyDomain.Action, strictGetAll bool) bool {
	for _, manifest := range manifests {
		for _, rule := range manifest.Rules {
			ruleAllowed, ruleDenied := ruleMatched(rule, req, required, false, strictGetAll)
			if ruleDenied {
				return false
			}
			if ruleAllowed {
				return true
			}
		}
	}
	return false
}
