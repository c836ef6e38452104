package domain_test

import (
	"testing"

	"github.com/dom/pokedex/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryForm_ToEntry(t *testing.T) {
	form := domain.EntryForm{
		Name:     "Sprout",
		HeightCm: 74,
		WeightKg: 6.94,
		Stats:    map[string]int{"speed": 60, "hp": 45, "unknown": 3},
		Types:    []string{"grass", "grass", ""},
	}

	e, err := form.ToEntry()
	require.NoError(t, err)
	e = domain.NormalizeEntry(e)

	assert.Equal(t, 7, e.HeightDecimeters)
	assert.Equal(t, 69, e.WeightHectograms)
	assert.Equal(t, 45, e.Stats.Get(domain.StatHP))
	assert.Equal(t, 60, e.Stats.Get(domain.StatSpeed))
	assert.Equal(t, 0, e.Stats.Get(domain.StatAttack))
	assert.Equal(t, []domain.Type{domain.TypeGrass}, e.Types)
}

func TestEntryForm_ToEntry_Negative(t *testing.T) {
	tests := []struct {
		name string
		form domain.EntryForm
	}{
		{name: "negative height", form: domain.EntryForm{Name: "x", HeightCm: -1}},
		{name: "negative weight", form: domain.EntryForm{Name: "x", WeightKg: -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.form.ToEntry()
			assert.ErrorIs(t, err, domain.ErrInvalidEntry)
		})
	}
}

func TestFormFromEntry_RoundTrip(t *testing.T) {
	e := domain.NormalizeEntry(domain.Entry{
		ID:               "abc",
		Name:             "Custom",
		HeightDecimeters: 12,
		WeightHectograms: 905,
		ImageURL:         "https://img/custom.png",
		Stats:            domain.NewStats(1, 2, 3, 4, 5, 6),
		Types:            []domain.Type{domain.TypeFire, domain.TypeFlying},
		Origin:           domain.OriginUserCreated,
	})

	back, err := domain.FormFromEntry(e).ToEntry()
	require.NoError(t, err)
	back.ID = e.ID
	back.Origin = e.Origin

	if diff := cmp.Diff(e, domain.NormalizeEntry(back)); diff != "" {
		t.Errorf("form round trip mismatch (-want +got):\n%s", diff)
	}
}
