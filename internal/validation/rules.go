// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/busguard/internal/errors"
)

var (
	// interfaceNameRegex matches dotted bus interface names such as
	// "org.example.Door". A trailing ".*" or a bare "*" is permitted for
	// prefix rules in policy documents.
	interfaceNameRegex = regexp.MustCompile(`^[A-Za-z_][\w]*(\.[A-Za-z_*][\w]*)*\*?$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// ObjectPath validates a bus object path or object path pattern.
// Accepts "*" (full wildcard), "/" (root), and slash-separated paths that may
// end in "*" to form a prefix pattern (e.g. "/org/app/doors*").
var ObjectPath = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "*" || s == "/" {
			return true
		}
		if !strings.HasPrefix(s, "/") {
			return false
		}
		trimmed := strings.TrimSuffix(s, "*")
		// A wildcard is only valid at the end of the pattern.
		if strings.Contains(trimmed, "*") {
			return false
		}
		return !strings.Contains(trimmed, "//")
	},
	validation.NewError("validation_object_path", "must be a valid object path or path prefix pattern"),
)

// InterfaceName validates a bus interface name or interface name pattern.
var InterfaceName = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "*" {
			return true
		}
		return interfaceNameRegex.MatchString(s)
	},
	validation.NewError("validation_interface_name", "must be a valid interface name or pattern"),
)

// Base64 validates that a string is valid base64-encoded data. Public keys
// travel through the API as base64-encoded DER.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// MemberName validates a rule member name: empty (unspecified), "*"
// (wildcard), or a name optionally ending in "*" for prefix matching.
var MemberName = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" || s == "*" {
			return true
		}
		trimmed := strings.TrimSuffix(s, "*")
		if strings.Contains(trimmed, "*") {
			return false
		}
		for _, r := range trimmed {
			isWord := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !isWord {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_member_name", "must be a valid member name or pattern"),
)
