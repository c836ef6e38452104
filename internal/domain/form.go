package domain

// EntryForm is the create/edit input. Measures are in centimetres and
// kilograms and are converted to catalog units by ToEntry.
type EntryForm struct {
	Name     string         `json:"name"`
	HeightCm float64        `json:"heightCm"`
	WeightKg float64        `json:"weightKg"`
	ImageURL string         `json:"imageUrl"`
	Stats    map[string]int `json:"stats"`
	Types    []string       `json:"types"`
}

func (f EntryForm) ToEntry() (Entry, error) {
	if f.HeightCm < 0 || f.WeightKg < 0 {
		return Entry{}, ErrNegativeMeasure
	}

	e := Entry{
		Name:             f.Name,
		HeightDecimeters: CentimetersToDecimeters(f.HeightCm),
		WeightHectograms: KilogramsToHectograms(f.WeightKg),
		ImageURL:         f.ImageURL,
		Types:            make([]Type, 0, len(f.Types)),
	}
	for i, name := range StatOrder {
		e.Stats[i] = Stat{Name: name, Value: f.Stats[string(name)]}
	}
	for _, t := range f.Types {
		e.Types = append(e.Types, Type(t))
	}
	return e, nil
}

// FormFromEntry fills a form from an existing entry, for editing
func FormFromEntry(e Entry) EntryForm {
	f := EntryForm{
		Name:     e.Name,
		HeightCm: DecimetersToCentimeters(e.HeightDecimeters),
		WeightKg: HectogramsToKilograms(e.WeightHectograms),
		ImageURL: e.ImageURL,
		Stats:    make(map[string]int, len(StatOrder)),
		Types:    make([]string, 0, len(e.Types)),
	}
	for _, s := range e.Stats {
		f.Stats[string(s.Name)] = s.Value
	}
	for _, t := range e.Types {
		f.Types = append(f.Types, string(t))
	}
	return f
}
