package testutil

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dom/pokedex/internal/domain"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EntryBuilder creates test entries with a builder pattern
type EntryBuilder struct {
	entry domain.Entry
}

// NewEntryBuilder creates a new EntryBuilder with default values
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		entry: domain.Entry{
			Name:             fmt.Sprintf("testmon_%s", uuid.New().String()[:8]),
			HeightDecimeters: 7,
			WeightHectograms: 69,
			ImageURL:         "https://img.example/custom.png",
			Stats:            domain.NewStats(45, 49, 49, 65, 65, 45),
			Types:            []domain.Type{domain.TypeGrass},
			Origin:           domain.OriginUserCreated,
		},
	}
}

func (b *EntryBuilder) WithID(id string) *EntryBuilder {
	b.entry.ID = id
	return b
}

func (b *EntryBuilder) WithName(name string) *EntryBuilder {
	b.entry.Name = name
	return b
}

func (b *EntryBuilder) WithStats(values ...int) *EntryBuilder {
	b.entry.Stats = domain.NewStats(values...)
	return b
}

func (b *EntryBuilder) WithTypes(types ...domain.Type) *EntryBuilder {
	b.entry.Types = types
	return b
}

func (b *EntryBuilder) WithMeasures(heightDm, weightHg int) *EntryBuilder {
	b.entry.HeightDecimeters = heightDm
	b.entry.WeightHectograms = weightHg
	return b
}

// Entry returns the normalized entry without storing it
func (b *EntryBuilder) Entry() domain.Entry {
	return domain.NormalizeEntry(b.entry)
}

// Raw returns the entry in the nested store layout, without its id
func (b *EntryBuilder) Raw() domain.RawEntry {
	raw := domain.Serialize(b.entry)
	raw.ID = ""
	return raw
}

// BuildStored inserts the entry as a store document and returns the row
func (b *EntryBuilder) BuildStored(t *testing.T, db *gorm.DB) *domain.StoredPokemon {
	t.Helper()

	data, err := json.Marshal(b.Raw())
	if err != nil {
		t.Fatalf("failed to marshal entry: %v", err)
	}

	id := b.entry.ID
	if id == "" {
		id = ulid.Make().String()
	}

	doc := &domain.StoredPokemon{
		ID:       id,
		Document: datatypes.JSON(data),
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("failed to create stored pokemon: %v", err)
	}
	return doc
}

// SeedStored inserts count generated entries and returns their rows in
// insertion order
func SeedStored(t *testing.T, db *gorm.DB, count int) []*domain.StoredPokemon {
	t.Helper()

	docs := make([]*domain.StoredPokemon, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, NewEntryBuilder().WithName(fmt.Sprintf("Seed%d", i)).BuildStored(t, db))
	}
	return docs
}
