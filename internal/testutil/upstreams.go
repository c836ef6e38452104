package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeCatalog is a PokeAPI stand-in serving entries 1..size, named "mon-N"
type FakeCatalog struct {
	server *httptest.Server
	size   int

	mu       sync.Mutex
	requests []string
	failing  bool
}

func NewFakeCatalog(t *testing.T, size int) *FakeCatalog {
	t.Helper()

	c := &FakeCatalog{size: size}

	r := chi.NewRouter()
	r.Get("/pokemon", c.list)
	r.Get("/pokemon/{nameOrID}", c.detail)
	c.server = httptest.NewServer(r)
	t.Cleanup(c.server.Close)

	return c
}

func (c *FakeCatalog) URL() string {
	return c.server.URL
}

// SetFailing makes every request answer 500
func (c *FakeCatalog) SetFailing(failing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = failing
}

// Requests lists the request URIs seen so far
func (c *FakeCatalog) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

func (c *FakeCatalog) record(r *http.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, r.URL.RequestURI())
	return c.failing
}

func (c *FakeCatalog) list(w http.ResponseWriter, r *http.Request) {
	if c.record(r) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	type result struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := []result{}
	for i := offset + 1; i <= offset+limit && i <= c.size; i++ {
		results = append(results, result{
			Name: fmt.Sprintf("mon-%d", i),
			URL:  fmt.Sprintf("%s/pokemon/%d/", c.server.URL, i),
		})
	}

	writeTestJSON(w, map[string]interface{}{"count": c.size, "results": results})
}

func (c *FakeCatalog) detail(w http.ResponseWriter, r *http.Request) {
	if c.record(r) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}

	key := chi.URLParam(r, "nameOrID")
	id, err := strconv.Atoi(strings.TrimPrefix(key, "mon-"))
	if err != nil || id < 1 || id > c.size {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	writeTestJSON(w, CatalogDetail(id))
}

// CatalogDetail is the PokeAPI detail body the fake serves for id
func CatalogDetail(id int) map[string]interface{} {
	stat := func(name string, v int) map[string]interface{} {
		return map[string]interface{}{"base_stat": v, "effort": 0, "stat": map[string]string{"name": name}}
	}
	return map[string]interface{}{
		"id":     id,
		"name":   fmt.Sprintf("mon-%d", id),
		"height": id,
		"weight": id * 10,
		"sprites": map[string]interface{}{
			"front_default": fmt.Sprintf("https://img.example/front/%d.png", id),
			"other": map[string]interface{}{
				"home": map[string]string{"front_default": fmt.Sprintf("https://img.example/home/%d.png", id)},
			},
		},
		"stats": []interface{}{
			stat("hp", id),
			stat("attack", id+1),
			stat("defense", id+2),
			stat("special-attack", id+3),
			stat("special-defense", id+4),
			stat("speed", id+5),
		},
		"types": []interface{}{
			map[string]interface{}{"slot": 1, "type": map[string]string{"name": "normal"}},
		},
	}
}

// FakeStore is an in-memory realtime-database stand-in that keeps keys in
// insertion order.
type FakeStore struct {
	server *httptest.Server

	mu         sync.Mutex
	keys       []string
	docs       map[string]json.RawMessage
	next       int
	requests   []string
	failWrites bool
	holdWrites chan struct{}
}

func NewFakeStore(t *testing.T) *FakeStore {
	t.Helper()

	s := &FakeStore{docs: make(map[string]json.RawMessage)}

	r := chi.NewRouter()
	r.Get("/pokemons.json", s.list)
	r.Post("/pokemons.json", s.create)
	r.Get("/pokemons/{id}.json", s.get)
	r.Put("/pokemons/{id}.json", s.replace)
	r.Delete("/pokemons/{id}.json", s.delete)
	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)

	return s
}

func (s *FakeStore) URL() string {
	return s.server.URL
}

// Seed stores doc under a new key and returns the key
func (s *FakeStore) Seed(t *testing.T, doc interface{}) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal seed document: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(data)
}

// SetFailWrites makes POST, PUT and DELETE answer 500
func (s *FakeStore) SetFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// HoldWrites parks every PUT until the returned release func is called
func (s *FakeStore) HoldWrites() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.holdWrites = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.holdWrites = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Requests lists "METHOD path" for every request seen so far
func (s *FakeStore) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Document returns the stored body for id
func (s *FakeStore) Document(id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *FakeStore) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
}

func (s *FakeStore) insertLocked(data []byte) string {
	s.next++
	key := fmt.Sprintf("-Nkey%04d", s.next)
	s.keys = append(s.keys, key)
	s.docs[key] = data
	return key
}

func (s *FakeStore) writeFails() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failWrites
}

func (s *FakeStore) list(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.keys) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", k)
		buf.Write(s.docs[k])
	}
	buf.WriteByte('}')

	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *FakeStore) create(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if s.writeFails() {
		http.Error(w, `{"error":"write rejected"}`, http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	key := s.insertLocked(body)
	s.mu.Unlock()

	writeTestJSON(w, map[string]string{"name": key})
}

func (s *FakeStore) get(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	doc, ok := s.Document(chi.URLParam(r, "id"))
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte("null"))
		return
	}
	w.Write(doc)
}

func (s *FakeStore) replace(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	gate := s.holdWrites
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	if s.writeFails() {
		http.Error(w, `{"error":"write rejected"}`, http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.keys = append(s.keys, id)
	}
	s.docs[id] = body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *FakeStore) delete(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if s.writeFails() {
		http.Error(w, `{"error":"write rejected"}`, http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	delete(s.docs, id)
	for i, k := range s.keys {
		if k == id {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("null"))
}

func writeTestJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
