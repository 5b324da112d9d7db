package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auditDomain "github.com/allisson/busguard/internal/audit/domain"
	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
)

// MySQLAuditLogRepository implements DecisionLog persistence for MySQL.
// UUIDs are stored as BINARY(16) and converted via MarshalBinary/UnmarshalBinary.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new DecisionLog into the MySQL database. Handles nil
// metadata as database NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, log *auditDomain.DecisionLog) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(log.Metadata)
	if err != nil {
		return err
	}

	idBinary, err := log.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal decision log id")
	}

	requestIDBinary, err := log.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal decision log request_id")
	}

	peerIDBinary, err := log.PeerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal decision log peer_id")
	}

	query := `INSERT INTO audit_logs (id, request_id, peer_id, object_path, interface_name, member_name,
			  member_type, outgoing, allowed, reason, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBinary,
		requestIDBinary,
		peerIDBinary,
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
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.DecisionLog, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []interface{}

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}

	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, request_id, peer_id, object_path, interface_name, member_name,
			  member_type, outgoing, allowed, reason, metadata, signature, created_at
			  FROM audit_logs`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

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
		var idBinary, requestIDBinary, peerIDBinary []byte
		var metadataJSON []byte

		err := rows.Scan(
			&idBinary,
			&requestIDBinary,
			&peerIDBinary,
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

		if err := log.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal decision log id")
		}

		if err := log.RequestID.UnmarshalBinary(requestIDBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal decision log request_id")
		}

		if err := log.PeerID.UnmarshalBinary(peerIDBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal decision log peer_id")
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

// NewMySQLAuditLogRepository creates a new MySQL DecisionLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
