package firebase_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, handler http.HandlerFunc) *firebase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return firebase.NewClient(srv.URL, 5*time.Second)
}

func TestClient_ListPreservesKeyOrder(t *testing.T) {
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pokemons.json", r.URL.Path)
		// Keys deliberately not in sorted order.
		w.Write([]byte(`{
			"zeta": {"name": "Zeta"},
			"alpha": {"name": "Alpha", "stats": [{"base_stat": "12", "stat": {"name": "hp"}}]},
			"mid": {"name": "Mid"}
		}`))
	})

	entries, err := client.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, domain.FlexString("alpha"), entries[1].Raw.ID)
	assert.Equal(t, "Alpha", entries[1].Raw.Name)
	assert.Equal(t, domain.Number(12), entries[1].Raw.Stats[0].BaseStat)
}

func TestClient_ListEmptyStore(t *testing.T) {
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	entries, err := client.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_ListFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[1, 2`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStore(t, tt.handler)
			_, err := client.List(t.Context())
			assert.ErrorIs(t, err, domain.ErrFetchFailed)
		})
	}
}

func TestClient_Get(t *testing.T) {
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokemons/abc123.json":
			w.Write([]byte(`{"name": "Custom"}`))
		default:
			w.Write([]byte(`null`))
		}
	})

	raw, err := client.Get(t.Context(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Custom", raw.Name)
	assert.Equal(t, domain.FlexString("abc123"), raw.ID)

	_, err = client.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Create(t *testing.T) {
	var received map[string]any
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pokemons.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Write([]byte(`{"name": "-NewKey"}`))
	})

	raw := domain.Serialize(domain.Entry{Name: "Fresh", Stats: domain.NewStats(1, 2, 3, 4, 5, 6)})
	id, err := client.Create(t.Context(), raw)
	require.NoError(t, err)
	assert.Equal(t, "-NewKey", id)
	assert.Equal(t, "Fresh", received["name"])
	assert.Len(t, received["stats"], 6)
}

func TestClient_WriteFailures(t *testing.T) {
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	})

	_, err := client.Create(t.Context(), domain.RawEntry{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrMutationFailed)

	_, err = client.Replace(t.Context(), "abc", domain.RawEntry{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrMutationFailed)

	err = client.Delete(t.Context(), "abc")
	assert.ErrorIs(t, err, domain.ErrMutationFailed)
}

func TestClient_ReplaceAndDelete(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	client := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			w.Write(body)
			return
		}
		w.Write([]byte(`null`))
	})

	saved, err := client.Replace(t.Context(), "abc", domain.RawEntry{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Name)
	assert.Equal(t, domain.FlexString("abc"), saved.ID)

	require.NoError(t, client.Delete(t.Context(), "abc"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /pokemons/abc.json", "DELETE /pokemons/abc.json"}, methods)
}
