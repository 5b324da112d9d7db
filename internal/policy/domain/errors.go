package domain

import (
	"github.com/allisson/busguard/internal/errors"
)

// Policy errors.
var (
	// ErrPolicyNotFound indicates no policy document is installed.
	ErrPolicyNotFound = errors.Wrap(errors.ErrNotFound, "policy not found")

	// ErrPolicyVersionTooOld indicates an install attempt with a version not
	// newer than the active policy.
	ErrPolicyVersionTooOld = errors.Wrap(errors.ErrConflict, "policy version must be newer than the active policy")
)
