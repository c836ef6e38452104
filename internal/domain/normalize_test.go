package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/dom/pokedex/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bulbasaurDetail = `{
	"id": 1,
	"name": "bulbasaur",
	"height": 7,
	"weight": 69,
	"sprites": {
		"front_default": "https://img/front/1.png",
		"other": {"home": {"front_default": "https://img/home/1.png"}}
	},
	"stats": [
		{"base_stat": 65, "stat": {"name": "special-attack"}},
		{"base_stat": 45, "stat": {"name": "hp"}},
		{"base_stat": 49, "stat": {"name": "attack"}},
		{"base_stat": 49, "stat": {"name": "defense"}},
		{"base_stat": 65, "stat": {"name": "special-defense"}},
		{"base_stat": 45, "stat": {"name": "speed"}}
	],
	"types": [
		{"slot": 1, "type": {"name": "grass"}},
		{"slot": 2, "type": {"name": "poison"}}
	]
}`

func decodeRaw(t *testing.T, body string) domain.RawEntry {
	t.Helper()
	var raw domain.RawEntry
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func assertStatOrder(t *testing.T, e domain.Entry) {
	t.Helper()
	require.Len(t, e.Stats, 6)
	for i, name := range domain.StatOrder {
		assert.Equal(t, name, e.Stats[i].Name)
	}
}

func TestNormalize_CatalogShape(t *testing.T) {
	e := domain.Normalize(decodeRaw(t, bulbasaurDetail), domain.OriginCanonical)

	want := domain.Entry{
		ID:               "1",
		Name:             "bulbasaur",
		HeightDecimeters: 7,
		WeightHectograms: 69,
		ImageURL:         "https://img/home/1.png",
		Stats:            domain.NewStats(45, 49, 49, 65, 65, 45),
		Types:            []domain.Type{domain.TypeGrass, domain.TypePoison},
		Origin:           domain.OriginCanonical,
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_StoreShapeWithStringNumbers(t *testing.T) {
	body := `{
		"name": "Custom",
		"height": 4.5,
		"weight": "120",
		"sprites": {"other": {"home": {"front_default": "https://img/custom.png"}}},
		"stats": [
			{"base_stat": "50", "stat": {"name": "hp"}},
			{"base_stat": "", "stat": {"name": "attack"}}
		],
		"types": [{"type": {"name": "fire"}}, {"type": {"name": "fire"}}]
	}`
	e := domain.Normalize(decodeRaw(t, body), domain.OriginUserCreated)

	assert.Equal(t, "Custom", e.Name)
	assert.Equal(t, 5, e.HeightDecimeters)
	assert.Equal(t, 120, e.WeightHectograms)
	assert.Equal(t, "https://img/custom.png", e.ImageURL)
	assert.Equal(t, 50, e.Stats.Get(domain.StatHP))
	assert.Equal(t, 0, e.Stats.Get(domain.StatAttack))
	assert.Equal(t, 0, e.Stats.Get(domain.StatSpeed))
	assert.Equal(t, []domain.Type{domain.TypeFire}, e.Types)
	assertStatOrder(t, e)
}

func TestNormalize_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "null collections", body: `{"name": "x", "stats": null, "types": null, "sprites": null}`},
		{name: "stats as keyed object", body: `{"stats": {"1": {"base_stat": 3, "stat": {"name": "attack"}}, "0": {"base_stat": 9, "stat": {"name": "hp"}}}}`},
		{name: "garbage values", body: `{"height": true, "weight": "heavy", "stats": [42, "x", {"stat": 7}], "types": [1, {"type": 2}]}`},
		{name: "unknown stat names", body: `{"stats": [{"base_stat": 10, "stat": {"name": "accuracy"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e domain.Entry
			assert.NotPanics(t, func() {
				e = domain.Normalize(decodeRaw(t, tt.body), domain.OriginUserCreated)
			})
			assertStatOrder(t, e)
			assert.NotNil(t, e.Types)
			assert.GreaterOrEqual(t, e.HeightDecimeters, 0)
			assert.GreaterOrEqual(t, e.WeightHectograms, 0)
		})
	}
}

func TestNormalize_FlatShape(t *testing.T) {
	body := `{
		"id": "abc123",
		"name": "Flat",
		"imageUrl": "https://img/flat.png",
		"stats": [{"name": "speed", "value": 80}],
		"types": ["water", "ice"]
	}`
	e := domain.Normalize(decodeRaw(t, body), domain.OriginUserCreated)

	assert.Equal(t, "abc123", e.ID)
	assert.Equal(t, "https://img/flat.png", e.ImageURL)
	assert.Equal(t, 80, e.Stats.Get(domain.StatSpeed))
	assert.Equal(t, []domain.Type{domain.TypeWater, domain.TypeIce}, e.Types)
}

func TestNormalizeEntry_Idempotent(t *testing.T) {
	messy := domain.Entry{
		ID:               "abc",
		Name:             "Messy",
		HeightDecimeters: -3,
		Stats: domain.Stats{
			{Name: domain.StatSpeed, Value: 10},
			{Name: domain.StatHP, Value: -1},
		},
		Types: []domain.Type{"fire", "fire", "", "shadow"},
	}

	once := domain.NormalizeEntry(messy)
	twice := domain.NormalizeEntry(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("NormalizeEntry not idempotent (-once +twice):\n%s", diff)
	}
	assert.Equal(t, 0, once.HeightDecimeters)
	assert.Equal(t, 10, once.Stats.Get(domain.StatSpeed))
	assert.Equal(t, 0, once.Stats.Get(domain.StatHP))
	assert.Equal(t, []domain.Type{"fire", "shadow"}, once.Types)
	assert.Equal(t, domain.OriginUserCreated, once.Origin)
	assertStatOrder(t, once)
}

func TestSerialize_RoundTrip(t *testing.T) {
	entries := []domain.Entry{
		{
			ID:               "-NqXk2abc",
			Name:             "Custom",
			HeightDecimeters: 12,
			WeightHectograms: 305,
			ImageURL:         "https://img/custom.png",
			Stats:            domain.NewStats(50, 60, 70, 80, 90, 100),
			Types:            []domain.Type{domain.TypeDragon, "shadow"},
			Origin:           domain.OriginUserCreated,
		},
		{
			ID:     "01HZY3",
			Name:   "Bare",
			Stats:  domain.NewStats(),
			Types:  []domain.Type{},
			Origin: domain.OriginUserCreated,
		},
	}

	for _, e := range entries {
		t.Run(e.Name, func(t *testing.T) {
			// Through JSON as well, the way it travels to the store and back.
			body, err := json.Marshal(domain.Serialize(e))
			require.NoError(t, err)

			got := domain.Normalize(decodeRaw(t, string(body)), domain.OriginUserCreated)
			if diff := cmp.Diff(e, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerialize_NestedWireShape(t *testing.T) {
	e := domain.Entry{Name: "Wire", ImageURL: "u", Stats: domain.NewStats(1), Types: []domain.Type{"fire"}}

	body, err := json.Marshal(domain.Serialize(e))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(body, &generic))
	assert.NotContains(t, generic, "id")
	assert.Equal(t, "u", generic["sprites"].(map[string]any)["other"].(map[string]any)["home"].(map[string]any)["front_default"])

	stats := generic["stats"].([]any)
	require.Len(t, stats, 6)
	first := stats[0].(map[string]any)
	assert.Equal(t, float64(1), first["base_stat"])
	assert.Equal(t, "hp", first["stat"].(map[string]any)["name"])

	types := generic["types"].([]any)
	assert.Equal(t, "fire", types[0].(map[string]any)["type"].(map[string]any)["name"])
}

func TestOriginForID(t *testing.T) {
	tests := []struct {
		id   string
		want domain.Origin
	}{
		{"25", domain.OriginCanonical},
		{"-NqXk2abc", domain.OriginUserCreated},
		{"01HZY3K9", domain.OriginUserCreated},
		{"", domain.OriginUserCreated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.OriginForID(tt.id), "id=%q", tt.id)
	}
}

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, 7, domain.CentimetersToDecimeters(70))
	assert.Equal(t, 5, domain.CentimetersToDecimeters(45))
	assert.Equal(t, 0, domain.CentimetersToDecimeters(-20))
	assert.Equal(t, float64(70), domain.DecimetersToCentimeters(7))

	assert.Equal(t, 69, domain.KilogramsToHectograms(6.9))
	assert.Equal(t, 6.9, domain.HectogramsToKilograms(69))

	// Converting out and back lands on the same stored value.
	for _, dm := range []int{0, 1, 7, 20, 145} {
		assert.Equal(t, dm, domain.CentimetersToDecimeters(domain.DecimetersToCentimeters(dm)))
	}
	for _, hg := range []int{0, 1, 69, 905, 9999} {
		assert.Equal(t, hg, domain.KilogramsToHectograms(domain.HectogramsToKilograms(hg)))
	}
}

func TestEntry_Validate(t *testing.T) {
	assert.ErrorIs(t, domain.Entry{}.Validate(), domain.ErrInvalidEntry)
	assert.ErrorIs(t, domain.Entry{Name: "x", WeightHectograms: -1}.Validate(), domain.ErrNegativeMeasure)
	assert.NoError(t, domain.Entry{Name: "x"}.Validate())
}

func TestNumber_SaturatesOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.Number
	}{
		{name: "huge positive", body: `1e30`, want: domain.MaxNumber},
		{name: "huge positive string", body: `"9e99"`, want: domain.MaxNumber},
		{name: "huge negative", body: `-1e30`, want: -domain.MaxNumber},
		{name: "in range", body: `42.6`, want: 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n domain.Number
			require.NoError(t, json.Unmarshal([]byte(tt.body), &n))
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNormalize_HugeMeasureSaturates(t *testing.T) {
	e := domain.Normalize(decodeRaw(t, `{"name": "Big", "height": 1e30, "weight": 2}`), domain.OriginUserCreated)
	assert.Equal(t, domain.MaxNumber, e.HeightDecimeters)
	assert.Equal(t, 2, e.WeightHectograms)
}
