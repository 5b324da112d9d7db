// Package service provides security-related services: claim passcode hashing
// and sealing of the device identity key.
package service

import (
	"context"
)

// PasscodeService hashes and verifies the claim passcode presented during
// password-based claiming.
type PasscodeService interface {
	// HashPasscode hashes a plain text passcode for storage.
	HashPasscode(plainPasscode string) (string, error)

	// ComparePasscode performs a constant-time comparison between a plain
	// passcode and its stored hash.
	ComparePasscode(plainPasscode string, hashedPasscode string) bool
}

// IdentityKeyService generates the device identity key pair and seals the
// private half with an external key-management provider.
type IdentityKeyService interface {
	// GenerateIdentityKey creates a new P-256 identity key pair. It returns
	// the sealed private key and the PEM-encoded public key.
	GenerateIdentityKey(ctx context.Context) (sealedPrivateKey []byte, publicKeyPEM string, err error)

	// PublicKey unseals the private key and re-derives the PEM-encoded
	// public key.
	PublicKey(ctx context.Context, sealedPrivateKey []byte) (string, error)
}
