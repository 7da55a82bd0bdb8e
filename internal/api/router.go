package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/almanac/internal/archive"
)

// documentMaxAge is how long clients may reuse a stored document.
const documentMaxAge = 5 * time.Minute

// SearchObserver receives the result count of each search response.
type SearchObserver func(scope string, results int)

// NewRouter creates a chi router with all API routes mounted. observe may
// be nil.
func NewRouter(svc *archive.Service, observe SearchObserver) chi.Router {
	h := NewHandler(svc, observe)

	r := chi.NewRouter()

	// Stored documents.
	r.Group(func(r chi.Router) {
		r.Use(CacheControl(documentMaxAge))
		r.Get("/authors", h.ListAuthors)
		r.Get("/authors/{slug}", h.GetAuthor)
		r.Get("/letters/{letter}", h.GetLetter)
		r.Get("/poems/{date}", h.GetPoem)
	})

	// Today moves with the clock; no shared caching.
	r.Get("/poems/today", h.Today)

	// Search and navigation.
	r.Get("/search", h.Search)
	r.Get("/poems/search", h.SearchPoems)
	r.Get("/navigate", h.Navigate)

	return r
}
