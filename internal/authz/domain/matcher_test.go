package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

func methodRequest(objPath, iface, member string) *Request {
	return &Request{
		Type:          MessageTypeMethodCall,
		ObjectPath:    objPath,
		InterfaceName: iface,
		MemberName:    member,
		MemberType:    policyDomain.MemberTypeMethodCall,
	}
}

func getAllRequest(objPath, iface string) *Request {
	return &Request{
		Type:            MessageTypeMethodCall,
		ObjectPath:      objPath,
		InterfaceName:   iface,
		MemberType:      policyDomain.MemberTypeProperty,
		PropertyRequest: true,
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		pattern  string
		expected bool
	}{
		{name: "Success_BareWildcard", value: "/anything/at/all", pattern: "*", expected: true},
		{name: "Success_ExactMatch", value: "/app/door", pattern: "/app/door", expected: true},
		{name: "Success_PrefixMatch", value: "/app/door/front", pattern: "/app/door*", expected: true},
		{name: "Success_PrefixMatchesItself", value: "/app/door", pattern: "/app/door*", expected: true},
		{name: "Failure_ExactDoesNotMatchLonger", value: "/app/door/front", pattern: "/app/door", expected: false},
		{name: "Failure_PrefixMismatch", value: "/app/window", pattern: "/app/door*", expected: false},
		{name: "Failure_CaseMismatch", value: "/App/Door", pattern: "/app/door", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchPattern(tt.value, tt.pattern))
		})
	}
}

func TestRuleMatched_Grants(t *testing.T) {
	tests := []struct {
		name     string
		rule     policyDomain.Rule
		req      *Request
		required policyDomain.Action
		expected bool
	}{
		{
			name: "Success_WildcardMemberCoversAction",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionModify},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: true,
		},
		{
			name: "Success_NamedMemberExactMatch",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "Open", Type: policyDomain.MemberTypeMethodCall, Actions: policyDomain.ActionModify},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: true,
		},
		{
			name: "Success_MemberNamePrefixMatch",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "Op*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionModify},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: true,
		},
		{
			name: "Success_InterfacePrefixMatch",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "com.example.*",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionAll},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: true,
		},
		{
			name: "Failure_ActionMaskMustCoverFully",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "*",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionObserve},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: false,
		},
		{
			name: "Failure_MemberTypeMismatch",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "Open", Type: policyDomain.MemberTypeSignal, Actions: policyDomain.ActionAll},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: false,
		},
		{
			name: "Failure_ObjectPathMismatch",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/window",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionAll},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: false,
		},
		{
			name: "Failure_EmptyMembersNeverMatch",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "*",
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: false,
		},
		{
			name: "Failure_EmptyObjectPathNeverMatches",
			rule: policyDomain.Rule{
				InterfaceName: "*",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionAll},
				},
			},
			req:      methodRequest("/app/door", "com.example.Door", "Open"),
			required: policyDomain.ActionModify,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, denied := ruleMatched(tt.rule, tt.req, tt.required, false, false)
			assert.Equal(t, tt.expected, allowed)
			assert.False(t, denied)
		})
	}
}

func TestRuleMatched_ExplicitDeny(t *testing.T) {
	denyAllRule := policyDomain.Rule{
		ObjectPath:    "*",
		InterfaceName: "*",
		Members: []policyDomain.Member{
			{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
		},
	}

	tests := []struct {
		name           string
		rule           policyDomain.Rule
		scanForDenied  bool
		expectedDenied bool
	}{
		{
			name:           "Success_AllInclusiveZeroMaskDenies",
			rule:           denyAllRule,
			scanForDenied:  true,
			expectedDenied: true,
		},
		{
			name:           "Failure_DenyIgnoredWithoutScan",
			rule:           denyAllRule,
			scanForDenied:  false,
			expectedDenied: false,
		},
		{
			name: "Failure_NarrowObjectPathCannotDeny",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "*",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
				},
			},
			scanForDenied:  true,
			expectedDenied: false,
		},
		{
			name: "Failure_NarrowInterfaceCannotDeny",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
				},
			},
			scanForDenied:  true,
			expectedDenied: false,
		},
		{
			name: "Failure_NamedMemberCannotDeny",
			rule: policyDomain.Rule{
				ObjectPath:    "*",
				InterfaceName: "*",
				Members: []policyDomain.Member{
					{Name: "Open", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
				},
			},
			scanForDenied:  true,
			expectedDenied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := methodRequest("/app/door", "com.example.Door", "Open")
			allowed, denied := ruleMatched(tt.rule, req, policyDomain.ActionModify, tt.scanForDenied, false)
			assert.False(t, allowed)
			assert.Equal(t, tt.expectedDenied, denied)
		})
	}
}

func TestRuleMatched_DenyScanDoesNotLeakBetweenRules(t *testing.T) {
	// A narrow rule disables deny scanning for itself only; a later
	// all-inclusive rule in the same ACL must still be able to deny.
	req := methodRequest("/app/door", "com.example.Door", "Open")
	narrow := policyDomain.Rule{
		ObjectPath:    "/app/door",
		InterfaceName: "com.example.Door",
		Members: []policyDomain.Member{
			{Name: "Open", Type: policyDomain.MemberTypeMethodCall, Actions: policyDomain.ActionAll},
		},
	}
	denyAll := policyDomain.Rule{
		ObjectPath:    "*",
		InterfaceName: "*",
		Members: []policyDomain.Member{
			{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: 0},
		},
	}

	allowed, denied := ruleMatched(narrow, req, policyDomain.ActionModify, true, false)
	assert.True(t, allowed)
	assert.False(t, denied)

	allowed, denied = ruleMatched(denyAll, req, policyDomain.ActionModify, true, false)
	assert.False(t, allowed)
	assert.True(t, denied)
}

func TestRuleMatched_BulkPropertyRead(t *testing.T) {
	tests := []struct {
		name         string
		rule         policyDomain.Rule
		strictGetAll bool
		expected     bool
	}{
		{
			name: "Success_WildcardPropertyMemberAllows",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeProperty, Actions: policyDomain.ActionObserve},
				},
			},
			strictGetAll: true,
			expected:     true,
		},
		{
			name: "Success_NotSpecifiedWildcardAllows",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionObserve},
				},
			},
			strictGetAll: true,
			expected:     true,
		},
		{
			name: "Failure_StrictModeIgnoresNamedProperty",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "State", Type: policyDomain.MemberTypeProperty, Actions: policyDomain.ActionObserve},
				},
			},
			strictGetAll: true,
			expected:     false,
		},
		{
			name: "Success_RelaxedModeAllowsViaNamedProperty",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "State", Type: policyDomain.MemberTypeProperty, Actions: policyDomain.ActionObserve},
				},
			},
			strictGetAll: false,
			expected:     true,
		},
		{
			name: "Success_RelaxedModeAllowsViaNamedMemberWithOtherAction",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "State", Type: policyDomain.MemberTypeProperty, Actions: policyDomain.ActionModify},
				},
			},
			strictGetAll: false,
			expected:     true,
		},
		{
			name: "Success_RelaxedModeAllowsViaNamedMethodMember",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "Open", Type: policyDomain.MemberTypeMethodCall, Actions: policyDomain.ActionModify},
				},
			},
			strictGetAll: false,
			expected:     true,
		},
		{
			name: "Failure_MethodMembersAreIgnored",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeMethodCall, Actions: policyDomain.ActionAll},
				},
			},
			strictGetAll: false,
			expected:     false,
		},
		{
			name: "Failure_WildcardWithWrongAction",
			rule: policyDomain.Rule{
				ObjectPath:    "/app/door",
				InterfaceName: "com.example.Door",
				Members: []policyDomain.Member{
					{Name: "*", Type: policyDomain.MemberTypeProperty, Actions: policyDomain.ActionModify},
				},
			},
			strictGetAll: true,
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := getAllRequest("/app/door", "com.example.Door")
			allowed, denied := ruleMatched(tt.rule, req, policyDomain.ActionObserve, false, tt.strictGetAll)
			assert.Equal(t, tt.expected, allowed)
			assert.False(t, denied)
		})
	}
}

func TestRuleMatched_BulkReadDenyScanPrecedesTypeFilter(t *testing.T) {
	// A wildcard member with an empty action mask denies the bulk read even
	// when its member type would otherwise be skipped.
	req := getAllRequest("/app/door", "com.example.Door")
	rule := policyDomain.Rule{
		ObjectPath:    "*",
		InterfaceName: "*",
		Members: []policyDomain.Member{
			{Name: "*", Type: policyDomain.MemberTypeMethodCall, Actions: 0},
		},
	}
	allowed, denied := ruleMatched(rule, req, policyDomain.ActionObserve, true, false)
	assert.False(t, allowed)
	assert.True(t, denied)
}

func TestRuleMatched_NonPropertyRequestWithoutMemberName(t *testing.T) {
	// Only property requests may omit the member name.
	req := &Request{
		Type:          MessageTypeMethodCall,
		ObjectPath:    "/app/door",
		InterfaceName: "com.example.Door",
		MemberType:    policyDomain.MemberTypeMethodCall,
	}
	rule := policyDomain.Rule{
		ObjectPath:    "*",
		InterfaceName: "*",
		Members: []policyDomain.Member{
			{Name: "*", Type: policyDomain.MemberTypeNotSpecified, Actions: policyDomain.ActionAll},
		},
	}
	allowed, denied := ruleMatched(rule, req, policyDomain.ActionModify, false, false)
	assert.False(t, allowed)
	assert.False(t, denied)
}
