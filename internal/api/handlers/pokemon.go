package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PokemonHandler struct {
	catalog   *service.CatalogService
	mutations *service.MutationCoordinator
	logger    *zap.Logger
}

func NewPokemonHandler(catalog *service.CatalogService, mutations *service.MutationCoordinator, logger *zap.Logger) *PokemonHandler {
	return &PokemonHandler{
		catalog:   catalog,
		mutations: mutations,
		logger:    logger,
	}
}

type EntryResponse struct {
	domain.Entry
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
	Mutable  bool    `json:"mutable"`
}

func newEntryResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		Entry:    e,
		HeightCm: domain.DecimetersToCentimeters(e.HeightDecimeters),
		WeightKg: domain.HectogramsToKilograms(e.WeightHectograms),
		Mutable:  e.Mutable(),
	}
}

type ListResponse struct {
	Pokemons []EntryResponse `json:"pokemons"`
	Count    int             `json:"count"`
	PageSize int             `json:"pageSize"`
}

type CreateResponse struct {
	ID string `json:"id"`
}

type MutationResponse struct {
	MutationID string                `json:"mutationId"`
	State      service.MutationState `json:"state"`
	Entry      EntryResponse         `json:"entry"`
}

func (h *PokemonHandler) listResponse(list []domain.Entry) ListResponse {
	resp := ListResponse{
		Pokemons: make([]EntryResponse, len(list)),
		Count:    len(list),
		PageSize: h.catalog.PageSize(),
	}
	for i, e := range list {
		resp.Pokemons[i] = newEntryResponse(e)
	}
	return resp
}

// List serves the merged first page. ?refresh=true bypasses the cache.
func (h *PokemonHandler) List(w http.ResponseWriter, r *http.Request) {
	load := h.catalog.FirstPage
	if r.URL.Query().Get("refresh") == "true" {
		load = h.catalog.Refresh
	}

	list, err := load(r.Context())
	if err != nil {
		writeError(w, h.logger, "list pokemons", err)
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse(list))
}

func (h *PokemonHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.LoadMore(r.Context())
	if err != nil {
		writeError(w, h.logger, "load more pokemons", err)
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse(list))
}

func (h *PokemonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.catalog.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "get pokemon", err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(e))
}

func (h *PokemonHandler) Create(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	id, err := h.mutations.Create(r.Context(), e)
	if err != nil {
		writeError(w, h.logger, "create pokemon", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{ID: id})
}

// Update applies the edit optimistically. By default the response waits for
// the store; with ?async=true it returns 202 as soon as the cache holds the
// new value and the outcome arrives over the websocket.
func (h *PokemonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	p := h.mutations.Update(r.Context(), id, e)

	if r.URL.Query().Get("async") == "true" {
		select {
		case <-p.Done():
			h.writeMutationResult(w, p.Wait())
		default:
			h.writePending(w, p, e, id)
		}
		return
	}

	select {
	case <-p.Done():
		h.writeMutationResult(w, p.Wait())
	case <-r.Context().Done():
		h.writePending(w, p, e, id)
	}
}

func (h *PokemonHandler) writePending(w http.ResponseWriter, p *service.PendingMutation, e domain.Entry, id string) {
	e.ID = id
	e.Origin = domain.OriginUserCreated
	writeJSON(w, http.StatusAccepted, MutationResponse{
		MutationID: p.ID,
		State:      p.State(),
		Entry:      newEntryResponse(domain.NormalizeEntry(e)),
	})
}

func (h *PokemonHandler) writeMutationResult(w http.ResponseWriter, res service.MutationResult) {
	if res.Err != nil {
		writeError(w, h.logger, "update pokemon", res.Err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{
		MutationID: res.MutationID,
		State:      res.Outcome,
		Entry:      newEntryResponse(res.Entry),
	})
}

// Delete requires ?confirm=true. Without it nothing is sent to the store and
// the response is 409.
func (h *PokemonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	confirm := service.Declined
	if r.URL.Query().Get("confirm") == "true" {
		confirm = service.Confirmed
	}

	deleted, err := h.mutations.Delete(r.Context(), id, confirm)
	if err != nil {
		writeError(w, h.logger, "delete pokemon", err)
		return
	}
	if !deleted {
		http.Error(w, "Deletion requires confirm=true", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PokemonHandler) decodeForm(w http.ResponseWriter, r *http.Request) (domain.Entry, bool) {
	var form domain.EntryForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return domain.Entry{}, false
	}

	e, err := form.ToEntry()
	if err != nil {
		writeError(w, h.logger, "decode pokemon form", err)
		return domain.Entry{}, false
	}
	return e, true
}
