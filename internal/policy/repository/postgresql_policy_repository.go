// Package repository provides persistence for installed policies.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// PostgreSQLPolicyRepository implements Policy persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLPolicyRepository struct {
	db *sql.DB
}

// Create inserts a new policy version into the PostgreSQL database.
func (p *PostgreSQLPolicyRepository) Create(ctx context.Context, policy *policyDomain.Policy) error {
	querier := database.GetTx(ctx, p.db)

	aclsJSON, err := json.Marshal(policy.ACLs)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy acls")
	}

	query := `INSERT INTO policies (id, version, acls, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err = querier.ExecContext(
		ctx,
		query,
		policy.ID,
		policy.Version,
		aclsJSON,
		policy.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create policy")
	}
	return nil
}

// GetActive retrieves the highest installed policy version.
func (p *PostgreSQLPolicyRepository) GetActive(ctx context.Context) (*policyDomain.Policy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, acls, created_at FROM policies ORDER BY version DESC LIMIT 1`

	var policy policyDomain.Policy
	var aclsJSON []byte

	err := querier.QueryRowContext(ctx, query).Scan(
		&policy.ID,
		&policy.Version,
		&aclsJSON,
		&policy.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, policyDomain.ErrPolicyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active policy")
	}

	if err := json.Unmarshal(aclsJSON, &policy.ACLs); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy acls")
	}

	return &policy, nil
}

// List retrieves installed policy versions, newest first.
func (p *PostgreSQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*policyDomain.Policy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, acls, created_at FROM policies
			  ORDER BY version DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	var policies []*policyDomain.Policy
	for rows.Next() {
		var policy policyDomain.Policy
		var aclsJSON []byte
		if err := rows.Scan(&policy.ID, &policy.Version, &aclsJSON, &policy.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan policy")
		}
		if err := json.Unmarshal(aclsJSON, &policy.ACLs); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal policy acls")
		}
		policies = append(policies, &policy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate policies")
	}
	return policies, nil
}

// DeleteAll removes every installed policy.
func (p *PostgreSQLPolicyRepository) DeleteAll(ctx context.Context) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM policies`); err != nil {
		return apperrors.Wrap(err, "failed to delete policies")
	}
	return nil
}

// NewPostgreSQLPolicyRepository creates a new PostgreSQL policy repository.
func NewPostgreSQLPolicyRepository(db *sql.DB) *PostgreSQLPolicyRepository {
	return &PostgreSQLPolicyRepository{db: db}
}
