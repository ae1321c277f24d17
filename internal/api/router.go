package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// decksRoot is used to resolve the media directory.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler, decksRoot string) chi.Router {
	h := NewHandler(svc)
	mh := NewMediaHandler(decksRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Decks CRUD.
	r.Get("/decks", h.ListDecks)
	r.Post("/decks", h.CreateDeck)
	r.Get("/decks/*", h.GetDeck)
	r.Put("/decks/*", h.UpdateDeck)
	r.Delete("/decks/*", h.DeleteDeck)

	// Lint (validate without saving).
	r.Post("/lint", h.Lint)

	// Cards and search.
	r.Get("/cards", h.ListCards)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	// Media upload (auth-protected).
	r.Post("/media", mh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
