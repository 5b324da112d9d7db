package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
)

type decisionSigner struct{}

// NewDecisionSigner creates a new HMAC-based decision log signer using
// HKDF-SHA256 for key derivation and HMAC-SHA256 for signature generation.
func NewDecisionSigner() DecisionSigner {
	return &decisionSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// configured audit secret. Info parameter: "decision-log-signing-v1"
// (versioned for future algorithm changes).
func (d *decisionSigner) deriveSigningKey(secret []byte) ([]byte, error) {
	info := []byte("decision-log-signing-v1")
	hash := sha256.New
	hkdf := hkdf.New(hash, secret, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeLog converts a decision log to its canonical byte
// representation for signing. Variable-length fields are length-prefixed to
// prevent ambiguity between adjacent fields.
func (d *decisionSigner) canonicalizeLog(log *auditDomain.DecisionLog) ([]byte, error) {
	buf := make([]byte, 0, 512)

	// UUIDs are fixed 16 bytes each
	buf = append(buf, log.RequestID[:]...)
	buf = append(buf, log.PeerID[:]...)

	buf = appendLengthPrefixed(buf, []byte(log.ObjectPath))
	buf = appendLengthPrefixed(buf, []byte(log.InterfaceName))
	buf = appendLengthPrefixed(buf, []byte(log.MemberName))
	buf = appendLengthPrefixed(buf, []byte(log.MemberType))

	buf = append(buf, boolByte(log.Outgoing), boolByte(log.Allowed))

	buf = appendLengthPrefixed(buf, []byte(log.Reason))

	if log.Metadata != nil {
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(log.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Sign generates the HMAC-SHA256 signature for the decision log.
func (d *decisionSigner) Sign(secret []byte, log *auditDomain.DecisionLog) ([]byte, error) {
	signingKey, err := d.deriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := d.canonicalizeLog(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	signature := mac.Sum(nil)

	return signature, nil
}

// Verify checks if the decision log signature is valid.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (d *decisionSigner) Verify(secret []byte, log *auditDomain.DecisionLog) error {
	expectedSig, err := d.Sign(secret, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
