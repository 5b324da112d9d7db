// Package repository provides persistence for registered peers.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/busguard/internal/database"
	apperrors "github.com/allisson/busguard/internal/errors"
	peerDomain "github.com/allisson/busguard/internal/peer/domain"
)

// PostgreSQLPeerRepository implements Peer persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLPeerRepository struct {
	db *sql.DB
}

// peerDocuments bundles the JSON columns of a peer row.
type peerDocuments struct {
	issuerChain []byte
	memberships []byte
	manifests   []byte
}

func marshalPeerDocuments(peer *peerDomain.Peer) (*peerDocuments, error) {
	issuerChain, err := json.Marshal(peer.IssuerChain)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal peer issuer chain")
	}
	memberships, err := json.Marshal(peer.Memberships)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal peer memberships")
	}
	manifests, err := json.Marshal(peer.Manifests)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal peer manifests")
	}
	return &peerDocuments{issuerChain: issuerChain, memberships: memberships, manifests: manifests}, nil
}

func unmarshalPeerDocuments(peer *peerDomain.Peer, docs *peerDocuments) error {
	if err := json.Unmarshal(docs.issuerChain, &peer.IssuerChain); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal peer issuer chain")
	}
	if err := json.Unmarshal(docs.memberships, &peer.Memberships); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal peer memberships")
	}
	if err := json.Unmarshal(docs.manifests, &peer.Manifests); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal peer manifests")
	}
	return nil
}

// Create inserts a new Peer into the PostgreSQL database.
func (p *PostgreSQLPeerRepository) Create(ctx context.Context, peer *peerDomain.Peer) error {
	querier := database.GetTx(ctx, p.db)

	docs, err := marshalPeerDocuments(peer)
	if err != nil {
		return err
	}

	query := `INSERT INTO peers (id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		peer.ID,
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

// Update modifies an existing Peer in the PostgreSQL database.
func (p *PostgreSQLPeerRepository) Update(ctx context.Context, peer *peerDomain.Peer) error {
	querier := database.GetTx(ctx, p.db)

	docs, err := marshalPeerDocuments(peer)
	if err != nil {
		return err
	}

	query := `UPDATE peers
			  SET auth_mechanism = $1,
				  auth_suite = $2,
				  public_key = $3,
				  issuer_chain = $4,
				  memberships = $5,
				  manifests = $6,
				  session_expiry = $7
			  WHERE id = $8`

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
		peer.ID,
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

// Get retrieves a Peer by ID from the PostgreSQL database.
func (p *PostgreSQLPeerRepository) Get(ctx context.Context, peerID uuid.UUID) (*peerDomain.Peer, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at
			  FROM peers WHERE id = $1`

	var peer peerDomain.Peer
	var docs peerDocuments

	err := querier.QueryRowContext(ctx, query, peerID).Scan(
		&peer.ID,
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

	if err := unmarshalPeerDocuments(&peer, &docs); err != nil {
		return nil, err
	}
	return &peer, nil
}

// List retrieves peers ordered by ID descending with pagination support.
func (p *PostgreSQLPeerRepository) List(ctx context.Context, offset, limit int) ([]*peerDomain.Peer, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, is_local, auth_mechanism, auth_suite, public_key,
			  issuer_chain, memberships, manifests, session_expiry, created_at
			  FROM peers ORDER BY id DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list peers")
	}
	defer rows.Close()

	var peers []*peerDomain.Peer
	for rows.Next() {
		var peer peerDomain.Peer
		var docs peerDocuments
		if err := rows.Scan(
			&peer.ID,
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

// Delete removes a Peer by ID from the PostgreSQL database.
func (p *PostgreSQLPeerRepository) Delete(ctx context.Context, peerID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM peers WHERE id = $1`, peerID)
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

// NewPostgreSQLPeerRepository creates a new PostgreSQL peer repository.
func NewPostgreSQLPeerRepository(db *sql.DB) *PostgreSQLPeerRepository {
	return &PostgreSQLPeerRepository{db: db}
}
