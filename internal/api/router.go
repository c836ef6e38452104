package api

import (
	"net/http"

	"github.com/dom/pokedex/internal/api/handlers"
	"github.com/dom/pokedex/internal/api/middleware"
	"github.com/dom/pokedex/internal/service"
	"github.com/dom/pokedex/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	pokemonHandler := handlers.NewPokemonHandler(services.Catalog, services.Mutations, logger.Named("pokemon"))
	wsHandler := handlers.NewWebSocketHandler(hub, logger.Named("ws"))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pokemons", func(r chi.Router) {
			r.Get("/", pokemonHandler.List)
			r.Post("/", pokemonHandler.Create)
			r.Post("/more", pokemonHandler.LoadMore)
			r.Get("/{id}", pokemonHandler.Get)
			r.Put("/{id}", pokemonHandler.Update)
			r.Delete("/{id}", pokemonHandler.Delete)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
