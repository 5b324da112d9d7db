package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
)

// MySQLPeerRepository implements Peer persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLPeerRepository struct {
	db *sql.DB
}

// Create inserts a new Peer into the MySQL database.
func (m *MySQLPeerRepository) Create(ctx context.Context, peer *peerDomain.Peer) error {
	querier := database.GetTx(ctx, m.db)

	docs, err := marshalPeerDocuments(peer)
	if err != nil {
		return err
	}

	id, err := peer.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal peer id")
	}

	query := `INSERT INTO peers (id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		peer.Local,
		peer.AuthMechanism,
		peer.AuthSuite,
		peer.PublicKey,
		docs.issuerChain,
		docs.memberships,
		docs.manifests,
		peer.SessionExpiry,
		peer.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create peer")
	}
	return nil
}

// Update modifies an existing Peer in the MySQL database.
func (m *MySQLPeerRepository) Update(ctx context.Context, peer *peerDomain.Peer) error {
	querier := database.GetTx(ctx, m.db)

	docs, err := marshalPeerDocuments(peer)
	if err != nil {
		return err
	}

	id, err := peer.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal peer id")
	}

	query := `UPDATE peers
			  SET auth_mechanism = ?,
				  auth_suite = ?,
				  public_key = ?,
				  issuer_chain = ?,
				  memberships = ?,
				  manifests = ?,
				  session_expiry = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		peer.AuthMechanism,
		peer.AuthSuite,
		peer.PublicKey,
		docs.issuerChain,
		docs.memberships,
		docs.manifests,
		peer.SessionExpiry,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update peer")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return peerDomain.ErrPeerNotFound
	}
	return nil
}

// Get retrieves a Peer by ID from the MySQL database.
func (m *MySQLPeerRepository) Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := peerID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal peer id")
	}

	query := `SELECT id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at
			  FROM peers WHERE id = ?`

	var peer peerDomain.Peer
	var rawID []byte
	var docs peerDocuments

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&rawID,
		&peer.Local,
		&peer.AuthMechanism,
		&peer.AuthSuite,
		&peer.PublicKey,
		&docs.issuerChain,
		&docs.memberships,
		&docs.manifests,
		&peer.SessionExpiry,
		&peer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, peerDomain.ErrPeerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get peer")
	}

	if err := peer.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal peer id")
	}
	if err := unmarshalPeerDocuments(&peer, &docs); err != nil {
		return nil, err
	}
	return &peer, nil
}

// List retrieves peers ordered by ID descending with pagination support.
func (m *MySQLPeerRepository) List(ctx context.Context, offset, limit int) ([]*peerDomain.Peer, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at
			  FROM peers ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list peers")
	}
	defer rows.Close()

	var peers []*peerDomain.Peer
	for rows.Next() {
		var peer peerDomain.Peer
		var rawID []byte
		var docs peerDocuments
		if err := rows.Scan(
			&rawID,
			&peer.Local,
			&peer.AuthMechanism,
			&peer.AuthSuite,
			&peer.PublicKey,
			&docs.issuerChain,
			&docs.memberships,
			&docs.manifests,
			&peer.SessionExpiry,
			&peer.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan peer")
		}
		if err := peer.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal peer id")
		}
		if err := unmarshalPeerDocuments(&peer, &docs); err != nil {
			return nil, err
		}
		peers = append(peers, &peer)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate peers")
	}
	return peers, nil
}

// Delete removes a Peer by ID from the MySQL database.
func (m *MySQLPeerRepository) Delete(ctx context.Context, peerID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := peerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal peer id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM peers WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete peer")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return peerDomain.ErrPeerNotFound
	}
	return nil
}

// NewMySQLPeerRepository creates a new MySQL peer repository.
func NewMySQLPeerRepository(db *sql.DB) *MySQLPeerRepository {
	return &MySQLPeerRepository{db: db}
}
