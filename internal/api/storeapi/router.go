package storeapi

import (
	"net/http"

	"github.com/dom/pokedex/internal/api/middleware"
	"github.com/dom/pokedex/internal/repository"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(docs repository.DocumentRepository, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	h := NewStoreHandler(docs, logger.Named("store"))

	r.Get("/pokemons.json", h.List)
	r.Post("/pokemons.json", h.Create)
	r.Get("/pokemons/{id}.json", h.Get)
	r.Put("/pokemons/{id}.json", h.Replace)
	r.Delete("/pokemons/{id}.json", h.Delete)

	return r
}
