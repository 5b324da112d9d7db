package domain

import (
	apperrors "github.com/allisson/busguard/internal/errors"
)

// Decision audit log errors.
var (
	// ErrDecisionLogNotFound indicates a decision log with the specified ID was not found.
	ErrDecisionLogNotFound = apperrors.Wrap(apperrors.ErrNotFound, "decision log not found")

	// ErrSignatureInvalid indicates a decision log signature did not verify,
	// meaning the record was tampered with or signed with a different secret.
	ErrSignatureInvalid = apperrors.Wrap(apperrors.ErrInvalidInput, "decision log signature invalid")
)
