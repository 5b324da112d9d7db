package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
)

// MySQLSecurityRepository implements security state persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLSecurityRepository struct {
	db *sql.DB
}

// GetState retrieves the security state row.
func (r *MySQLSecurityRepository) GetState(ctx context.Context) (*securityDomain.SecurityState, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT application_state, claim_capabilities, claim_capability_info,
			  claim_passcode_hash, sealed_identity_key, public_key, updated_at
			  FROM security_state WHERE id = 1`

	var state securityDomain.SecurityState
	err := querier.QueryRowContext(ctx, query).Scan(
		&state.ApplicationState,
		&state.ClaimCapabilities,
		&state.ClaimCapabilityInfo,
		&state.ClaimPasscodeHash,
		&state.SealedIdentityKey,
		&state.PublicKey,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "security state not initialized")
		}
		return nil, apperrors.Wrap(err, "failed to get security state")
	}
	return &state, nil
}

// UpdateState persists the security state row.
func (r *MySQLSecurityRepository) UpdateState(ctx context.Context, state *securityDomain.SecurityState) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE security_state
			  SET application_state = ?,
				  claim_capabilities = ?,
				  claim_capability_info = ?,
				  claim_passcode_hash = ?,
				  sealed_identity_key = ?,
				  public_key = ?,
				  updated_at = ?
			  WHERE id = 1`

	_, err := querier.ExecContext(
		ctx,
		query,
		state.ApplicationState,
		state.ClaimCapabilities,
		state.ClaimCapabilityInfo,
		state.ClaimPasscodeHash,
		state.SealedIdentityKey,
		state.PublicKey,
		state.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update security state")
	}
	return nil
}

// CreateTrustAnchors stores the trust anchors installed by a claim.
func (r *MySQLSecurityRepository) CreateTrustAnchors(ctx context.Context, anchors []securityDomain.TrustAnchor) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO trust_anchors (id, public_key, group_id, created_at)
			  VALUES (?, ?, ?, ?)`

	for _, anchor := range anchors {
		id, err := anchor.ID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal trust anchor id")
		}
		groupID, err := anchor.GroupID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal trust anchor group id")
		}
		_, err = querier.ExecContext(ctx, query, id, anchor.PublicKey, groupID, anchor.CreatedAt)
		if err != nil {
			return apperrors.Wrap(err, "failed to create trust anchor")
		}
	}
	return nil
}

// ListTrustAnchors retrieves all installed trust anchors.
func (r *MySQLSecurityRepository) ListTrustAnchors(ctx context.Context) ([]securityDomain.TrustAnchor, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, public_key, group_id, created_at FROM trust_anchors ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list trust anchors")
	}
	defer rows.Close()

	var anchors []securityDomain.TrustAnchor
	for rows.Next() {
		var anchor securityDomain.TrustAnchor
		var id, groupID []byte
		if err := rows.Scan(&id, &anchor.PublicKey, &groupID, &anchor.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan trust anchor")
		}
		if err := anchor.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal trust anchor id")
		}
		if err := anchor.GroupID.UnmarshalBinary(groupID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal trust anchor group id")
		}
		anchors = append(anchors, anchor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate trust anchors")
	}
	return anchors, nil
}

// DeleteTrustAnchors removes all trust anchors.
func (r *MySQLSecurityRepository) DeleteTrustAnchors(ctx context.Context) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM trust_anchors`); err != nil {
		return apperrors.Wrap(err, "failed to delete trust anchors")
	}
	return nil
}

// NewMySQLSecurityRepository creates a new MySQL security repository.
func NewMySQLSecurityRepository(db *sql.DB) *MySQLSecurityRepository {
	return &MySQLSecurityRepository{db: db}
}
