package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLegacyTrustMechanism(t *testing.T) {
	tests := []struct {
		mechanism string
		expected  bool
	}{
		{AuthMechanismECDHEPSK, true},
		{AuthMechanismSRP, true},
		{AuthMechanismSRPLogon, true},
		{AuthMechanismECDHEECDSA, false},
		{AuthMechanismECDHENull, false},
		{AuthMechanismECDHESPEKE, false},
		{"", false},
		{"CUSTOM", false},
	}

	for _, tt := range tests {
		t.Run(tt.mechanism, func(t *testing.T) {
			assert.Equal(t, tt.expected, LegacyTrustMechanism(tt.mechanism))
		})
	}
}

func TestCertificateChain_Leaf(t *testing.T) {
	t.Run("empty chain has no leaf", func(t *testing.T) {
		assert.Nil(t, CertificateChain{}.Leaf())
	})

	t.Run("leaf is the first certificate", func(t *testing.T) {
		groupID := uuid.Must(uuid.NewV7())
		chain := CertificateChain{
			{Type: CertificateTypeMembership, GroupID: groupID, SubjectPublicKey: "leaf-key"},
			{Type: CertificateTypeIdentity, SubjectPublicKey: "issuer-key"},
		}

		leaf := chain.Leaf()
		assert.Equal(t, CertificateTypeMembership, leaf.Type)
		assert.Equal(t, groupID, leaf.GroupID)
	})
}

func TestPeer_SessionExpired(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		expiry   time.Time
		expected bool
	}{
		{name: "zero expiry never expires", expiry: time.Time{}, expected: false},
		{name: "future expiry", expiry: now.Add(time.Hour), expected: false},
		{name: "past expiry", expiry: now.Add(-time.Minute), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := &Peer{SessionExpiry: tt.expiry}
			assert.Equal(t, tt.expected, peer.SessionExpired(now))
		})
	}
}
