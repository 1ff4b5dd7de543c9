package storebun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-proposal/proposal"
	"github.com/uptrace/bun"
)

// Store keeps proposals in a Bun-backed `proposals` table.
type Store struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewStore creates a Bun-backed proposal store.
func NewStore(db *bun.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// CreateSchema creates the proposals table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*proposalModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Get returns the proposal stored under id.
func (s *Store) Get(ctx context.Context, id string) (proposal.Document, error) {
	if s == nil || s.DB == nil {
		return proposal.Document{}, proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return proposal.Document{}, proposal.NewError(proposal.KindValidation, "proposal id is required", nil)
	}

	model := new(proposalModel)
	err := s.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return proposal.Document{}, proposal.NewError(proposal.KindNotFound, fmt.Sprintf("proposal %q not found", id), nil)
		}
		return proposal.Document{}, err
	}
	return model.toDocument()
}

// Put inserts or replaces a proposal.
func (s *Store) Put(ctx context.Context, doc proposal.Document) error {
	if s == nil || s.DB == nil {
		return proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return proposal.NewError(proposal.KindValidation, "proposal id is required", nil)
	}
	data, err := proposal.EncodeDocument(doc)
	if err != nil {
		return err
	}

	now := s.now()
	model := proposalModel{ID: doc.ID, Data: string(data), CreatedAt: now, UpdatedAt: now}
	_, err = s.DB.NewInsert().Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// List returns stored proposal ids, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, proposal.NewError(proposal.KindNotImpl, "proposal database not configured", nil)
	}
	ids := make([]string, 0)
	err := s.DB.NewSelect().Model((*proposalModel)(nil)).
		Column("id").
		Order("updated_at DESC", "id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type proposalModel struct {
	bun.BaseModel `bun:"table:proposals,alias:p"`

	ID        string    `bun:",pk"`
	Data      string    `bun:"data,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m proposalModel) toDocument() (proposal.Document, error) {
	doc, err := proposal.DecodeStoredDocument([]byte(m.Data))
	if err != nil {
		return proposal.Document{}, err
	}
	doc.ID = m.ID
	doc.UpdatedAt = m.UpdatedAt
	return doc, nil
}

var (
	_ proposal.DocumentStore  = (*Store)(nil)
	_ proposal.DocumentWriter = (*Store)(nil)
)
