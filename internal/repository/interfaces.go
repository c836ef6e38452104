package repository

import (
	"context"

	"github.com/dom/pokedex/internal/domain"
)

// CatalogSource is the read-only paginated catalog (PokeAPI)
type CatalogSource interface {
	ListNames(ctx context.Context, limit, offset int) ([]string, error)
	GetDetail(ctx context.Context, nameOrID string) (domain.RawEntry, error)
}

// KeyedEntry is a store document together with its backend-assigned key
type KeyedEntry struct {
	ID  string
	Raw domain.RawEntry
}

// MutableStore holds user-created entries (realtime-database REST protocol)
type MutableStore interface {
	List(ctx context.Context) ([]KeyedEntry, error)
	Get(ctx context.Context, id string) (domain.RawEntry, error)
	Create(ctx context.Context, raw domain.RawEntry) (string, error)
	Replace(ctx context.Context, id string, raw domain.RawEntry) (domain.RawEntry, error)
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists store documents for the self-hosted store server
type DocumentRepository interface {
	List(ctx context.Context) ([]*domain.StoredPokemon, error)
	GetByID(ctx context.Context, id string) (*domain.StoredPokemon, error)
	Create(ctx context.Context, doc *domain.StoredPokemon) error
	Upsert(ctx context.Context, doc *domain.StoredPokemon) error
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	Catalog CatalogSource
	Store   MutableStore
}
