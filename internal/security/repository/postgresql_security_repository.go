// Package repository provides persistence for the application security state.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	securityDomain "github.com/allisson/busguard/internal/security/domain"
)

// PostgreSQLSecurityRepository implements security state persistence for
// PostgreSQL. The security_state table holds a single row seeded by the
// migrations. Uses transaction support via database.GetTx().
type PostgreSQLSecurityRepository struct {
	db *sql.DB
}

// GetState retrieves the security state row.
func (r *PostgreSQLSecurityRepository) GetState(ctx context.Context) (*securityDomain.SecurityState, error) {
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
func (r *PostgreSQLSecurityRepository) UpdateState(ctx context.Context, state *securityDomain.SecurityState) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE security_state
			  SET application_state = $1,
				  claim_capabilities = $2,
				  claim_capability_info = $3,
				  claim_passcode_hash = $4,
				  sealed_identity_key = $5,
				  public_key = $6,
				  updated_at = $7
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
func (r *PostgreSQLSecurityRepository) CreateTrustAnchors(ctx context.Context, anchors []securityDomain.TrustAnchor) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO trust_anchors (id, public_key, group_id, created_at)
			  VALUES ($1, $2, $3, $4)`

	for _, anchor := range anchors {
		_, err := querier.ExecContext(ctx, query, anchor.ID, anchor.PublicKey, anchor.GroupID, anchor.CreatedAt)
		if err != nil {
			return apperrors.Wrap(err, "failed to create trust anchor")
		}
	}
	return nil
}

// ListTrustAnchors retrieves all installed trust anchors.
func (r *PostgreSQLSecurityRepository) ListTrustAnchors(ctx context.Context) ([]securityDomain.TrustAnchor, error) {
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
		if err := rows.Scan(&anchor.ID, &anchor.PublicKey, &anchor.GroupID, &anchor.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan trust anchor")
		}
		anchors = append(anchors, anchor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate trust anchors")
	}
	return anchors, nil
}

// DeleteTrustAnchors removes all trust anchors.
func (r *PostgreSQLSecurityRepository) DeleteTrustAnchors(ctx context.Context) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM trust_anchors`); err != nil {
		return apperrors.Wrap(err, "failed to delete trust anchors")
	}
	return nil
}

// NewPostgreSQLSecurityRepository creates a new PostgreSQL security repository.
func NewPostgreSQLSecurityRepository(db *sql.DB) *PostgreSQLSecurityRepository {
	return &PostgreSQLSecurityRepository{db: db}
}
