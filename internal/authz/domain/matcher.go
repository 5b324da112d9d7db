package domain

import (
	"strings"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// matchPattern reports whether value matches pattern. A trailing "*" makes
// the pattern a prefix match; otherwise the match is exact. The bare "*"
// pattern matches everything.
func matchPattern(value, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(value, pattern[:len(pattern)-1])
	}
	return value == pattern
}

// ruleMatched evaluates a single policy rule against the request. It reports
// whether the rule grants the required action, and whether the rule
// explicitly denies the request.
//
// An explicit deny must be all-inclusive: object path "*", interface "*",
// member "*", and a zero action mask. When the rule is narrower than that,
// deny scanning is switched off for it and only grants are collected.
func ruleMatched(rule policyDomain.Rule, req *Request, required policyDomain.Action, scanForDenied, strictGetAll bool) (allowed, denied bool) {
	if len(rule.Members) == 0 {
		return false, false
	}
	if rule.ObjectPath == "" || rule.InterfaceName == "" {
		return false, false
	}
	if scanForDenied && (rule.ObjectPath != "*" || rule.InterfaceName != "*") {
		scanForDenied = false
	}
	if !matchPattern(req.ObjectPath, rule.ObjectPath) {
		return false, false
	}
	if !matchPattern(req.InterfaceName, rule.InterfaceName) {
		return false, false
	}

	for _, mbr := range rule.Members {
		if req.MemberName == "" {
			// A request with no member name is a bulk property read. It is
			// granted by a wildcard property member covering the action, or
			// in relaxed mode by the mere presence of any named member.
			if !req.PropertyRequest {
				return false, false
			}
			if mbr.Name == "" {
				continue
			}
			if mbr.Name == "*" {
				if scanForDenied && mbr.Actions.Denied() {
					return false, true
				}
				if mbr.Type != policyDomain.MemberTypeNotSpecified && mbr.Type != policyDomain.MemberTypeProperty {
					continue
				}
				if !allowed {
					allowed = mbr.Actions.Covers(required)
				}
			} else if !strictGetAll {
				allowed = true
			}
		} else {
			if mbr.Name == "" {
				continue
			}
			if !matchPattern(req.MemberName, mbr.Name) {
				continue
			}
			if mbr.Type != policyDomain.MemberTypeNotSpecified && mbr.Type != req.MemberType {
				continue
			}
			if scanForDenied && mbr.Name == "*" && mbr.Actions.Denied() {
				return false, true
			}
			if !allowed {
				allowed = mbr.Actions.Covers(required)
			}
		}
		if allowed && !scanForDenied {
			return allowed, false
		}
	}
	return allowed, false
}
