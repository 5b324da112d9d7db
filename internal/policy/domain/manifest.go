package domain

import (
	"time"

	"github.com/google/uuid"
)

// Manifest is a peer's self-declared capability list: the maximum rights the
// peer claims it will exercise. Manifests share the rule shape of policies
// but act as a ceiling, never a grant — a manifest can only narrow what the
// installed policy already allows.
type Manifest struct {
	ID        uuid.UUID
	PeerID    uuid.UUID
	Rules     []Rule
	CreatedAt time.Time
}
