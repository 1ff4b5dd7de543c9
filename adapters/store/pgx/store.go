// Package storepgx reads proposals from the production Postgres schema,
// where each row keeps the document as jsonb in proposals.data.
package storepgx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-proposal/proposal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectProposal = `SELECT data, updated_at FROM proposals WHERE id = $1`
	listProposals  = `SELECT id FROM proposals ORDER BY updated_at DESC, id ASC`
	upsertProposal = `INSERT INTO proposals (id, data, created_at, updated_at)
VALUES ($1, $2::jsonb, $3, $3)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	createProposals = `CREATE TABLE IF NOT EXISTS proposals (
	id varchar(255) PRIMARY KEY,
	data jsonb NOT NULL,
	created_at timestamp NOT NULL DEFAULT now(),
	updated_at timestamp NOT NULL DEFAULT now()
)`
)

// Store implements proposal.DocumentStore over a pgx pool.
type Store struct {
	Pool *pgxpool.Pool
	Now  func() time.Time
}

// Open connects a pool using dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Store{Pool: pool, Now: time.Now}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

// CreateSchema creates the proposals table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	if s == nil || s.Pool == nil {
		return proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	_, err := s.Pool.Exec(ctx, createProposals)
	return err
}

// Get returns the proposal stored under id.
func (s *Store) Get(ctx context.Context, id string) (proposal.Document, error) {
	if s == nil || s.Pool == nil {
		return proposal.Document{}, proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return proposal.Document{}, proposal.NewError(proposal.KindValidation, "proposal id is required", nil)
	}

	var (
		data      []byte
		updatedAt time.Time
	)
	if err := s.Pool.QueryRow(ctx, selectProposal, id).Scan(&data, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return proposal.Document{}, proposal.NewError(proposal.KindNotFound, fmt.Sprintf("proposal %q not found", id), nil)
		}
		return proposal.Document{}, err
	}

	doc, err := proposal.DecodeStoredDocument(data)
	if err != nil {
		return proposal.Document{}, err
	}
	doc.ID = id
	doc.UpdatedAt = updatedAt
	return doc, nil
}

// Put inserts or replaces a proposal.
func (s *Store) Put(ctx context.Context, doc proposal.Document) error {
	if s == nil || s.Pool == nil {
		return proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return proposal.NewError(proposal.KindValidation, "proposal id is required", nil)
	}
	data, err := proposal.EncodeDocument(doc)
	if err != nil {
		return err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	_, err = s.Pool.Exec(ctx, upsertProposal, doc.ID, string(data), now().UTC())
	return err
}

// List returns stored proposal ids, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s == nil || s.Pool == nil {
		return nil, proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	rows, err := s.Pool.Query(ctx, listProposals)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var (
	_ proposal.DocumentStore  = (*Store)(nil)
	_ proposal.DocumentWriter = (*Store)(nil)
)
