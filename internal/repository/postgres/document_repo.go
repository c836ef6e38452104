package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/pokedex/internal/domain"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *documentRepository {
	return &documentRepository{db: db}
}

// List returns every document in key order, which is insertion order
// because keys are ULIDs.
func (r *documentRepository) List(ctx context.Context) ([]*domain.StoredPokemon, error) {
	var docs []*domain.StoredPokemon
	err := r.db.WithContext(ctx).Order("id ASC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.StoredPokemon, error) {
	var doc domain.StoredPokemon
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &doc, nil
}

// Create assigns a fresh ULID key when doc has none
func (r *documentRepository) Create(ctx context.Context, doc *domain.StoredPokemon) error {
	if doc.ID == "" {
		doc.ID = ulid.Make().String()
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

// Upsert writes the document under its key, creating the row if needed
func (r *documentRepository) Upsert(ctx context.Context, doc *domain.StoredPokemon) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(doc).Error
}

// Delete is a no-op for an absent key
func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.StoredPokemon{}, "id = ?", id).Error
}
