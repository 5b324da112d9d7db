package domain

import (
	apperrors "github.com/allisson/busguard/internal/errors"
)

var (
	// ErrInvalidData indicates a bus message could not be classified, usually
	// a malformed properties call.
	ErrInvalidData = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed message")

	// ErrDenied indicates the request was rejected by policy, manifest, or a
	// fixed permission-management rule.
	ErrDenied = apperrors.Wrap(apperrors.ErrPermissionDenied, "request denied")
)
