package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/almanac/internal/archive"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *archive.Service
	observe SearchObserver
}

// NewHandler creates a new Handler.
func NewHandler(svc *archive.Service, observe SearchObserver) *Handler {
	if observe == nil {
		observe = func(string, int) {}
	}
	return &Handler{svc: svc, observe: observe}
}

// ListAuthors handles GET /api/authors.
//
//	@Summary		List every author name
//	@Tags			authors
//	@Produce		json
//	@Success		200	{object}	AuthorsResponse
//	@Success		304
//	@Router			/authors [get]
func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Authors(r.Context())
	if err != nil {
		writeServiceError(w, err, "list authors")
		return
	}
	writeDocument(w, r, AuthorsResponse{Authors: names})
}

// GetAuthor handles GET /api/authors/{slug}.
//
//	@Summary		Get an author's biography and bibliography
//	@Tags			authors
//	@Produce		json
//	@Param			slug	path		string	true	"Author slug"
//	@Success		200		{object}	AuthorDetail
//	@Failure		404		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/authors/{slug} [get]
func (h *Handler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	detail, err := h.svc.Author(r.Context(), s)
	if err != nil {
		writeServiceError(w, err, "get author", slog.String("slug", s))
		return
	}
	writeDocument(w, r, detail)
}

// GetLetter handles GET /api/letters/{letter}.
//
//	@Summary		List the authors filed under one letter
//	@Tags			authors
//	@Produce		json
//	@Param			letter	path		string	true	"Uppercase letter A-Z"
//	@Success		200		{object}	LetterDocument
//	@Failure		400		{object}	errResponse
//	@Router			/letters/{letter} [get]
func (h *Handler) GetLetter(w http.ResponseWriter, r *http.Request) {
	req := archive.LetterRequest{Letter: chi.URLParam(r, "letter")}
	doc, err := h.svc.AuthorsByLetter(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "get letter", slog.String("letter", req.Letter))
		return
	}
	writeDocument(w, r, doc)
}

// GetPoem handles GET /api/poems/{date}.
//
//	@Summary		Get the poem for a day (clamped to the archive range)
//	@Tags			poems
//	@Produce		json
//	@Param			date	path		string	true	"YYYYMMDD"
//	@Success		200		{object}	PoemView
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/poems/{date} [get]
func (h *Handler) GetPoem(w http.ResponseWriter, r *http.Request) {
	req := archive.PoemRequest{Date: chi.URLParam(r, "date")}
	view, err := h.svc.Poem(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "get poem", slog.String("date", req.Date))
		return
	}
	writeDocument(w, r, view)
}

// Today handles GET /api/poems/today.
//
//	@Summary		Get today's poem
//	@Tags			poems
//	@Produce		json
//	@Success		200	{object}	PoemView
//	@Failure		404	{object}	errResponse
//	@Router			/poems/today [get]
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Today(r.Context())
	if err != nil {
		writeServiceError(w, err, "today", slog.String("date", h.svc.TodayKey().String()))
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeDocument(w, r, view)
}

// Search handles GET /api/search.
//
//	@Summary		Autocomplete authors (or authors and poem titles)
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results (default 10, max 50)"
//	@Param			scope	query		string	false	"Candidate pool"	Enums(authors, all)
//	@Success		200		{object}	SearchResult
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := searchRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "search", slog.String("q", req.Query))
		return
	}
	scope := req.Scope
	if scope == "" {
		scope = archive.ScopeAuthors
	}
	h.observe(scope, res.Count)
	writeJSON(w, http.StatusOK, res)
}

// SearchPoems handles GET /api/poems/search.
//
//	@Summary		Full-text search over poems
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results (default 10, max 50)"
//	@Success		200		{object}	PoemSearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/poems/search [get]
func (h *Handler) SearchPoems(w http.ResponseWriter, r *http.Request) {
	req, ok := searchRequest(w, r)
	if !ok {
		return
	}
	hits, err := h.svc.SearchPoems(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "search poems", slog.String("q", req.Query))
		return
	}
	h.observe("poems", len(hits))
	writeJSON(w, http.StatusOK, PoemSearchResponse{Query: req.Query, Results: hits, Count: len(hits)})
}

// Navigate handles GET /api/navigate.
//
//	@Summary		Step to the previous or next day or name
//	@Tags			navigation
//	@Produce		json
//	@Param			mode		query		string	true	"Navigation mode"	Enums(date, name)
//	@Param			current		query		string	true	"Current DateKey or name"
//	@Param			direction	query		string	true	"Step direction"	Enums(forward, backward)
//	@Success		200			{object}	NavigateResult
//	@Failure		400			{object}	errResponse
//	@Router			/navigate [get]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := archive.NavigateRequest{
		Mode:      q.Get("mode"),
		Current:   q.Get("current"),
		Direction: q.Get("direction"),
	}
	res, err := h.svc.Navigate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "navigate", slog.String("current", req.Current))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// searchRequest reads q, limit and scope. A non-numeric limit is a 400;
// range policy is left to the service.
func searchRequest(w http.ResponseWriter, r *http.Request) (archive.SearchRequest, bool) {
	q := r.URL.Query()
	req := archive.SearchRequest{Query: q.Get("q"), Scope: q.Get("scope")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
			return req, false
		}
		req.Limit = n
	}
	return req, true
}
