package domain

import (
	"github.com/allisson/busguard/internal/errors"
)

// Peer registry errors.
var (
	// ErrPeerNotFound indicates a peer with the specified ID was not found.
	ErrPeerNotFound = errors.Wrap(errors.ErrNotFound, "peer not found")
)
