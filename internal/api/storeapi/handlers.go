// Package storeapi serves the realtime-database REST protocol the mutable
// store client speaks, backed by postgres.
package storeapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const maxDocumentSize = 64 * 1024

var nullBody = []byte("null")

type StoreHandler struct {
	docs   repository.DocumentRepository
	logger *zap.Logger
}

func NewStoreHandler(docs repository.DocumentRepository, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{docs: docs, logger: logger}
}

type createResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// List writes every document as one object keyed by id, in key order. An
// empty collection is null.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		h.fail(w, "list documents", err)
		return
	}
	if len(docs) == 0 {
		writeRaw(w, http.StatusOK, nullBody)
		return
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(doc.ID)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(doc.Document)
	}
	buf.WriteByte('}')
	writeRaw(w, http.StatusOK, buf.Bytes())
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readDocument(w, r)
	if !ok {
		return
	}

	doc := &domain.StoredPokemon{Document: datatypes.JSON(body)}
	if err := h.docs.Create(r.Context(), doc); err != nil {
		h.fail(w, "create document", err)
		return
	}

	h.logger.Info("document created", zap.String("id", doc.ID))
	writeJSON(w, http.StatusOK, createResponse{Name: doc.ID})
}

// Get writes the document, or null when the key is absent
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeRaw(w, http.StatusOK, nullBody)
			return
		}
		h.fail(w, "get document", err)
		return
	}
	writeRaw(w, http.StatusOK, doc.Document)
}

// Replace stores the body under id and echoes it back
func (h *StoreHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, ok := readDocument(w, r)
	if !ok {
		return
	}

	doc := &domain.StoredPokemon{ID: id, Document: datatypes.JSON(body)}
	if err := h.docs.Upsert(r.Context(), doc); err != nil {
		h.fail(w, "replace document", err)
		return
	}

	h.logger.Info("document replaced", zap.String("id", id))
	writeRaw(w, http.StatusOK, body)
}

func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.docs.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete document", err)
		return
	}

	h.logger.Info("document deleted", zap.String("id", id))
	writeRaw(w, http.StatusOK, nullBody)
}

func (h *StoreHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// readDocument accepts only a JSON object body
func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read body"})
		return nil, false
	}
	if len(body) > maxDocumentSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "document too large"})
		return nil, false
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid data; couldn't parse JSON object"})
		return nil, false
	}
	return trimmed, true
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
