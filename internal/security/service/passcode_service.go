package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/busguard/internal/errors"
)

// passcodeService implements PasscodeService using Argon2id hashing.
type passcodeService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPasscode hashes a plain text passcode using Argon2id.
func (s *passcodeService) HashPasscode(plainPasscode string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainPasscode))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash passcode")
	}
	return hashed, nil
}

// ComparePasscode performs a constant-time comparison between a plain
// passcode and its hash.
func (s *passcodeService) ComparePasscode(plainPasscode string, hashedPasscode string) bool {
	ok, err := s.hasher.Verify([]byte(plainPasscode), hashedPasscode)
	if err != nil {
		return false
	}
	return ok
}

// NewPasscodeService creates a new PasscodeService using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewPasscodeService() PasscodeService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passcodeService{
		hasher: hasher,
	}
}
