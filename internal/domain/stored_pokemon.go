package domain

import (
	"time"

	"gorm.io/datatypes"
)

// StoredPokemon is a row of the self-hosted mutable store. Document holds the
// client's JSON body verbatim, the way the realtime database keeps it.
type StoredPokemon struct {
	ID        string         `json:"id" gorm:"primaryKey"` // ULID, sorts in insertion order
	Document  datatypes.JSON `json:"document" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (StoredPokemon) TableName() string {
	return "pokemons"
}
