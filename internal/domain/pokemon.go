package domain

import "strings"

// Origin tells which backend owns an entry
type Origin string

const (
	OriginCanonical   Origin = "canonical"
	OriginUserCreated Origin = "user-created"
)

// IsValid checks if an origin is valid
func (o Origin) IsValid() bool {
	switch o {
	case OriginCanonical, OriginUserCreated:
		return true
	}
	return false
}

// Mutable reports whether entries of this origin may be edited or deleted
func (o Origin) Mutable() bool {
	return o == OriginUserCreated
}

// OriginForID derives the owning backend from an identifier. Catalog ids are
// numeric; store keys never are.
func OriginForID(id string) Origin {
	if id == "" {
		return OriginUserCreated
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return OriginUserCreated
		}
	}
	return OriginCanonical
}

// StatName is one of the six fixed base stats
type StatName string

const (
	StatHP             StatName = "hp"
	StatAttack         StatName = "attack"
	StatDefense        StatName = "defense"
	StatSpecialAttack  StatName = "special-attack"
	StatSpecialDefense StatName = "special-defense"
	StatSpeed          StatName = "speed"
)

// StatOrder contains all stats in display order
var StatOrder = [6]StatName{StatHP, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense, StatSpeed}

func statIndex(name string) int {
	for i, s := range StatOrder {
		if string(s) == strings.ToLower(strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

type Stat struct {
	Name  StatName `json:"name"`
	Value int      `json:"value"`
}

// Stats always holds exactly one value per StatOrder position
type Stats [6]Stat

// NewStats builds a Stats block from values given in StatOrder
func NewStats(values ...int) Stats {
	var s Stats
	for i, name := range StatOrder {
		s[i].Name = name
		if i < len(values) && values[i] > 0 {
			s[i].Value = values[i]
		}
	}
	return s
}

// Get returns the value of the named stat, 0 when unknown
func (s Stats) Get(name StatName) int {
	if i := statIndex(string(name)); i >= 0 {
		return s[i].Value
	}
	return 0
}

// Type is an elemental type name
type Type string

const (
	TypeNormal   Type = "normal"
	TypeFire     Type = "fire"
	TypeWater    Type = "water"
	TypeGrass    Type = "grass"
	TypeElectric Type = "electric"
	TypeIce      Type = "ice"
	TypeFighting Type = "fighting"
	TypePoison   Type = "poison"
	TypeGround   Type = "ground"
	TypeFlying   Type = "flying"
	TypePsychic  Type = "psychic"
	TypeBug      Type = "bug"
	TypeRock     Type = "rock"
	TypeGhost    Type = "ghost"
	TypeDragon   Type = "dragon"
	TypeDark     Type = "dark"
	TypeSteel    Type = "steel"
	TypeFairy    Type = "fairy"
)

// AllTypes contains the known type vocabulary
var AllTypes = []Type{
	TypeNormal, TypeFire, TypeWater, TypeGrass, TypeElectric, TypeIce,
	TypeFighting, TypePoison, TypeGround, TypeFlying, TypePsychic, TypeBug,
	TypeRock, TypeGhost, TypeDragon, TypeDark, TypeSteel, TypeFairy,
}

// IsKnown checks the type against the vocabulary. Unknown types are kept on
// entries; callers only use this for presentation.
func (t Type) IsKnown() bool {
	for _, k := range AllTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Entry is the canonical creature record shared by both backends
type Entry struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	HeightDecimeters int    `json:"heightDecimeters"`
	WeightHectograms int    `json:"weightHectograms"`
	ImageURL         string `json:"imageUrl"`
	Stats            Stats  `json:"stats"`
	Types            []Type `json:"types"`
	Origin           Origin `json:"origin"`
}

// Mutable reports whether the entry may be edited or deleted
func (e Entry) Mutable() bool {
	return e.Origin.Mutable()
}

// Validate checks the fields required before an entry is written to the store
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEntryNameRequired
	}
	if e.HeightDecimeters < 0 || e.WeightHectograms < 0 {
		return ErrNegativeMeasure
	}
	return nil
}
