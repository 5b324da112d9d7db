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

// MySQLPolicyRepository implements Policy persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLPolicyRepository struct {
	db *sql.DB
}

// Create inserts a new policy version into the MySQL database.
func (m *MySQLPolicyRepository) Create(ctx context.Context, policy *policyDomain.Policy) error {
	querier := database.GetTx(ctx, m.db)

	aclsJSON, err := json.Marshal(policy.ACLs)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy acls")
	}

	id, err := policy.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal policy id")
	}

	query := `INSERT INTO policies (id, version, acls, created_at)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLPolicyRepository) GetActive(ctx context.Context) (*policyDomain.Policy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, acls, created_at FROM policies ORDER BY version DESC LIMIT 1`

	var policy policyDomain.Policy
	var id, aclsJSON []byte

	err := querier.QueryRowContext(ctx, query).Scan(
		&id,
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

	if err := policy.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy id")
	}
	if err := json.Unmarshal(aclsJSON, &policy.ACLs); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal policy acls")
	}

	return &policy, nil
}

// List retrieves installed policy versions, newest first.
func (m *MySQLPolicyRepository) List(ctx context.Context, offset, limit int) ([]*policyDomain.Policy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, acls, created_at FROM policies
			  ORDER BY version DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	var policies []*policyDomain.Policy
	for rows.Next() {
		var policy policyDomain.Policy
		var id, aclsJSON []byte
		if err := rows.Scan(&id, &policy.Version, &aclsJSON, &policy.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan policy")
		}
		if err := policy.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal policy id")
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
func (m *MySQLPolicyRepository) DeleteAll(ctx context.Context) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM policies`); err != nil {
		return apperrors.Wrap(err, "failed to delete policies")
	}
	return nil
}

// NewMySQLPolicyRepository creates a new MySQL policy repository.
func NewMySQLPolicyRepository(db *sql.DB) *MySQLPolicyRepository {
	return &MySQLPolicyRepository{db: db}
}
