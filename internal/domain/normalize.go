package domain

// Normalize maps a raw catalog or store payload onto an Entry. It never fails:
// missing fields become "", 0 or an empty type list.
func Normalize(raw RawEntry, origin Origin) Entry {
	e := Entry{
		ID:               string(raw.ID),
		Name:             raw.Name,
		HeightDecimeters: int(raw.Height),
		WeightHectograms: int(raw.Weight),
		ImageURL:         raw.imageURL(),
		Origin:           origin,
	}

	seen := [6]bool{}
	for _, s := range raw.Stats {
		i := statIndex(s.Name)
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		e.Stats[i].Value = int(s.BaseStat)
	}

	e.Types = make([]Type, 0, len(raw.Types))
	for _, t := range raw.Types {
		if t.Name != "" {
			e.Types = append(e.Types, Type(t.Name))
		}
	}

	return NormalizeEntry(e)
}

// NormalizeEntry enforces the Entry invariants on a value that may have been
// built by hand: stats in fixed order, no negative measures, no duplicate
// types. Applying it twice gives the same result as applying it once.
func NormalizeEntry(e Entry) Entry {
	var stats Stats
	seen := [6]bool{}
	for pos, s := range e.Stats {
		i := pos
		if s.Name != "" {
			i = statIndex(string(s.Name))
		}
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		stats[i].Value = nonNegative(s.Value)
	}
	for i, name := range StatOrder {
		stats[i].Name = name
	}
	e.Stats = stats

	e.HeightDecimeters = nonNegative(e.HeightDecimeters)
	e.WeightHectograms = nonNegative(e.WeightHectograms)

	types := make([]Type, 0, len(e.Types))
	for _, t := range e.Types {
		if t == "" || containsType(types, t) {
			continue
		}
		types = append(types, t)
	}
	e.Types = types

	if !e.Origin.IsValid() {
		e.Origin = OriginForID(e.ID)
	}
	return e
}

// Serialize is the inverse of Normalize, producing the nested layout written
// to the store on create and update.
func Serialize(e Entry) RawEntry {
	e = NormalizeEntry(e)

	raw := RawEntry{
		ID:     FlexString(e.ID),
		Name:   e.Name,
		Height: Number(e.HeightDecimeters),
		Weight: Number(e.WeightHectograms),
		Stats:  make(RawStats, 0, len(e.Stats)),
		Types:  make(RawTypes, 0, len(e.Types)),
	}
	raw.Sprites.Other.Home.FrontDefault = e.ImageURL

	for _, s := range e.Stats {
		raw.Stats = append(raw.Stats, RawStat{BaseStat: Number(s.Value), Name: string(s.Name)})
	}
	for _, t := range e.Types {
		raw.Types = append(raw.Types, RawType{Name: string(t)})
	}
	return raw
}

func (r RawEntry) imageURL() string {
	switch {
	case r.Sprites.Other.Home.FrontDefault != "":
		return r.Sprites.Other.Home.FrontDefault
	case r.Sprites.Other.OfficialArtwork != nil && r.Sprites.Other.OfficialArtwork.FrontDefault != "":
		return r.Sprites.Other.OfficialArtwork.FrontDefault
	case r.Sprites.FrontDefault != "":
		return r.Sprites.FrontDefault
	}
	return r.ImageURL
}

func containsType(types []Type, t Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
