package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/busguard/internal/errors"

	// Register all key-management provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// identityKeyService implements IdentityKeyService using gocloud.dev/secrets
// to seal the private key at rest.
type identityKeyService struct {
	keeper *secrets.Keeper
}

// NewIdentityKeyService opens a secrets.Keeper for the configured provider
// and returns the service. Supports: gcpkms://, awskms://, azurekeyvault://,
// hashivault://, base64key://
func NewIdentityKeyService(ctx context.Context, keyURI string) (IdentityKeyService, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open secrets keeper")
	}
	return &identityKeyService{keeper: keeper}, nil
}

// GenerateIdentityKey creates a new P-256 key pair, seals the private key
// with the keeper, and returns the sealed bytes with the public key PEM.
func (s *identityKeyService) GenerateIdentityKey(ctx context.Context) ([]byte, string, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to generate identity key")
	}

	privateDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to marshal identity key")
	}

	sealed, err := s.keeper.Encrypt(ctx, privateDER)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to seal identity key")
	}

	publicPEM, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, "", err
	}

	return sealed, publicPEM, nil
}

// PublicKey unseals the private key and re-derives its public key PEM.
func (s *identityKeyService) PublicKey(ctx context.Context, sealedPrivateKey []byte) (string, error) {
	privateDER, err := s.keeper.Decrypt(ctx, sealedPrivateKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to unseal identity key")
	}

	privateKey, err := x509.ParseECPrivateKey(privateDER)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to parse identity key")
	}

	return encodePublicKey(&privateKey.PublicKey)
}

func encodePublicKey(publicKey *ecdsa.PublicKey) (string, error) {
	publicDER, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal public key")
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: publicDER}
	return string(pem.EncodeToMemory(block)), nil
}
