// Package repository provides database persistence for decision audit logs.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
)

// PostgreSQLAuditLogRepository implements DecisionLog persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new DecisionLog into the PostgreSQL database. Handles nil
// metadata as database NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, log *auditDomain.DecisionLog) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(log.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (id, request_id, peer_id, object_path, interface_name, member_name,
			  member_type, outgoing, allowed, reason, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(
		ctx,
		query,
		log.ID,
		log.RequestID,
		log.PeerID,
		log.ObjectPath,
		log.InterfaceName,
		log.MemberName,
		log.MemberType,
		log.Outgoing,
		log.Allowed,
		log.Reason,
		metadataJSON,
		log.Signature,
		log.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create decision log")
	}

	return nil
}

// List retrieves decision logs ordered by created_at descending (newest
// first) with pagination and optional time-based filtering. Both boundaries
// are inclusive. Returns empty slice if no logs match.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.DecisionLog, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []interface{}

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}

	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, request_id, peer_id, object_path, interface_name, member_name,
			  member_type, outgoing, allowed, reason, metadata, signature, created_at
			  FROM audit_logs`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list decision logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	logs := make([]*auditDomain.DecisionLog, 0)
	for rows.Next() {
		var log auditDomain.DecisionLog
		var metadataJSON []byte

		err := rows.Scan(
			&log.ID,
			&log.RequestID,
			&log.PeerID,
			&log.ObjectPath,
			&log.InterfaceName,
			&log.MemberName,
			&log.MemberType,
			&log.Outgoing,
			&log.Allowed,
			&log.Reason,
			&metadataJSON,
			&log.Signature,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan decision log")
		}

		if err := unmarshalMetadata(metadataJSON, &log); err != nil {
			return nil, err
		}

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate decision logs")
	}

	return logs, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL DecisionLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

// marshalMetadata serializes optional metadata, mapping nil to database NULL.
func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal decision log metadata")
	}
	return metadataJSON, nil
}

// unmarshalMetadata deserializes optional metadata, leaving a nil map for NULL.
func unmarshalMetadata(metadataJSON []byte, log *auditDomain.DecisionLog) error {
	if metadataJSON == nil {
		return nil
	}
	if err := json.Unmarshal(metadataJSON, &log.Metadata); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal decision log metadata")
	}
	return nil
}
