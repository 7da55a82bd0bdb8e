// Package archive serves the Writer's Almanac documents: authors, letter
// buckets and daily poems, plus navigation and search over them.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/starford/almanac/internal/apperr"
	"github.com/starford/almanac/internal/index"
	"github.com/starford/almanac/internal/models"
	"github.com/starford/almanac/internal/navigation"
	"github.com/starford/almanac/internal/search"
	"github.com/starford/almanac/internal/slug"
	"github.com/starford/almanac/internal/storage"
)

// AuthorPoem is one bibliography entry with its navigable day.
type AuthorPoem struct {
	Date    string             `json:"date"`
	DateKey navigation.DateKey `json:"date_key"`
	Title   string             `json:"title"`
}

// AuthorDetail is the full representation of an author.
type AuthorDetail struct {
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Biography string         `json:"biography"`
	Poems     []AuthorPoem   `json:"poems"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PoemView is the poem for a day together with its neighbouring days.
type PoemView struct {
	Date     navigation.DateKey   `json:"date"`
	Poem     *models.PoemDocument `json:"poem"`
	Previous navigation.DateKey   `json:"previous"`
	Next     navigation.DateKey   `json:"next"`
}

// NavigateResult is the outcome of one prev/next step.
type NavigateResult struct {
	Mode    string `json:"mode"`
	Current string `json:"current"`
	Next    string `json:"next"`
	// Date is set when Next resolves to a day: always in date mode, and
	// in name mode when Next is a poem title.
	Date string `json:"date,omitempty"`
	// Slug is set in name mode when Next is an author.
	Slug string `json:"slug,omitempty"`
}

// SearchResult is a ranked autocomplete response.
type SearchResult struct {
	Query   string             `json:"query"`
	Results []search.Candidate `json:"results"`
	Count   int                `json:"count"`
}

// Service coordinates the store, the catalogue and the slug cache.
type Service struct {
	store   storage.Provider
	catalog index.Catalog
	slugs   *search.SlugCache
	logger  *slog.Logger
	now     func() time.Time

	defaultLimit int
	maxLimit     int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the current calendar date used by Today.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSearchLimits sets the default and maximum result counts for search.
// The ceiling never exceeds MaxSearchLimit.
func WithSearchLimits(def, ceiling int) Option {
	ceiling = min(ceiling, MaxSearchLimit)
	def = min(def, ceiling)
	return func(s *Service) {
		s.defaultLimit = def
		s.maxLimit = ceiling
	}
}

// NewService creates an archive service. slugs is the cache search ranks
// against; it is usually loaded from catalog.AuthorSlugs.
func NewService(store storage.Provider, catalog index.Catalog, slugs *search.SlugCache, opts ...Option) *Service {
	s := &Service{
		store:        store,
		catalog:      catalog,
		slugs:        slugs,
		logger:       slog.Default(),
		now:          time.Now,
		defaultLimit: DefaultSearchLimit,
		maxLimit:     MaxSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlugCache exposes the cache so index watchers can invalidate it.
func (s *Service) SlugCache() *search.SlugCache { return s.slugs }

// Author reads an author document. name may be a slug or a display name;
// either way it is slugified before lookup. Every bibliography date is
// converted to a DateKey, and a date that does not parse fails the whole
// lookup with apperr.ErrMalformed.
func (s *Service) Author(_ context.Context, name string) (*AuthorDetail, error) {
	key := slug.Slugify(name)
	if key == "" {
		return nil, fmt.Errorf("%w: empty author slug", apperr.ErrInvalidArgument)
	}

	var doc models.AuthorDocument
	if err := s.readJSON(models.AuthorKey(key), &doc); err != nil {
		return nil, err
	}
	if doc.Slug == "" {
		doc.Slug = key
	}

	poems := make([]AuthorPoem, 0, len(doc.Poems))
	for _, p := range doc.Poems {
		dk, err := navigation.FormatAuthorDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: author %s: poem %q: %w", apperr.ErrMalformed, key, p.Title, err)
		}
		poems = append(poems, AuthorPoem{Date: p.Date, DateKey: dk, Title: p.Title})
	}

	return &AuthorDetail{
		Name:      doc.Name,
		Slug:      doc.Slug,
		Biography: doc.Biography,
		Poems:     poems,
		Metadata:  doc.Metadata,
	}, nil
}

// AuthorsByLetter returns the names bucketed under one letter. A valid
// letter with no bucket yields an empty list.
func (s *Service) AuthorsByLetter(_ context.Context, req LetterRequest) (*models.LetterDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var doc models.LetterDocument
	err := s.readJSON(models.LetterKey(req.Letter), &doc)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.LetterDocument{Letter: req.Letter, Authors: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Authors == nil {
		doc.Authors = []string{}
	}
	return &doc, nil
}

// Authors returns every author name in ascending order.
func (s *Service) Authors(ctx context.Context) ([]string, error) {
	return s.catalog.AuthorNames(ctx)
}

// Poem returns the poem for the requested day after clamping it into the
// archive's range. A day inside the range with no poem is ErrNotFound;
// the date is never adjusted to hide missing content.
func (s *Service) Poem(_ context.Context, req PoemRequest) (*PoemView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	k, err := navigation.ParseDateKey(req.Date)
	if err != nil {
		return nil, err
	}
	return s.poemFor(navigation.Clamp(k))
}

// Today returns the poem for the service clock's current day, clamped.
func (s *Service) Today(_ context.Context) (*PoemView, error) {
	return s.poemFor(navigation.DefaultDate(s.now()))
}

// TodayKey returns the clamped DateKey for the service clock's current day.
func (s *Service) TodayKey() navigation.DateKey {
	return navigation.DefaultDate(s.now())
}

func (s *Service) poemFor(k navigation.DateKey) (*PoemView, error) {
	var doc models.PoemDocument
	if err := s.readJSON(models.PoemKey(k.String()), &doc); err != nil {
		return nil, err
	}
	if doc.Date == "" {
		doc.Date = k.String()
	}
	return &PoemView{
		Date:     k,
		Poem:     &doc,
		Previous: navigation.StepDate(k, navigation.Backward),
		Next:     navigation.StepDate(k, navigation.Forward),
	}, nil
}

// Navigate steps once from req.Current. In date mode the step saturates
// at the archive bounds; in name mode it wraps through the sorted author
// names, or the sorted poem titles when Current is not an author.
func (s *Service) Navigate(ctx context.Context, req NavigateRequest) (*NavigateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	mode, _ := navigation.ParseMode(req.Mode)
	dir, _ := navigation.ParseDirection(req.Direction)

	if mode == navigation.ByDate {
		k, err := navigation.ParseDateKey(req.Current)
		if err != nil {
			return nil, err
		}
		next := navigation.StepDate(k, dir)
		return &NavigateResult{Mode: mode.String(), Current: req.Current, Next: next.String(), Date: next.String()}, nil
	}

	authors, err := s.catalog.AuthorNames(ctx)
	if err != nil {
		return nil, err
	}
	poems, err := s.catalog.PoemTitles(ctx)
	if err != nil {
		return nil, err
	}
	state := navigation.State{Mode: navigation.ByName, Name: req.Current}.Step(dir, authors, poems)
	res := &NavigateResult{Mode: mode.String(), Current: req.Current, Next: state.Name}

	if _, found := slices.BinarySearch(authors, state.Name); found {
		res.Slug = slug.Slugify(state.Name)
		return res, nil
	}
	date, err := s.catalog.PoemDateByTitle(ctx, state.Name)
	switch {
	case err == nil:
		res.Date = date
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}
	return res, nil
}

// Search dispatches on req.Scope.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req = req.withLimits(s.defaultLimit, s.maxLimit)
	if req.Scope == ScopeAll {
		return s.SearchAll(ctx, req)
	}
	return s.SearchAuthors(ctx, req)
}

// SearchAuthors ranks author slugs from the cache against the query.
func (s *Service) SearchAuthors(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req = req.withLimits(s.defaultLimit, s.maxLimit)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	slugs, err := s.slugs.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: load author slugs: %w", err)
	}
	return newSearchResult(req.Query, search.SearchAuthors(req.Query, slugs, req.Limit)), nil
}

// SearchAll ranks author names and poem titles together.
func (s *Service) SearchAll(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req = req.withLimits(s.defaultLimit, s.maxLimit)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	authors, err := s.catalog.AuthorNames(ctx)
	if err != nil {
		return nil, err
	}
	poems, err := s.catalog.PoemTitles(ctx)
	if err != nil {
		return nil, err
	}
	return newSearchResult(req.Query, search.SearchNames(req.Query, authors, poems, req.Limit)), nil
}

// SearchPoems runs a full-text search over poem titles, authors and text.
func (s *Service) SearchPoems(ctx context.Context, req SearchRequest) ([]index.PoemHit, error) {
	req = req.withLimits(s.defaultLimit, s.maxLimit)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.catalog.SearchPoems(ctx, req.Query, req.Limit)
}

func newSearchResult(query string, results []search.Candidate) *SearchResult {
	if results == nil {
		results = []search.Candidate{}
	}
	return &SearchResult{Query: query, Results: results, Count: len(results)}
}

// Reindex reconciles the catalogue with the store and reloads the slug
// cache. It returns the number of author slugs now cached.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if err := index.Sync(ctx, s.catalog, s.store, s.logger); err != nil {
		return 0, fmt.Errorf("archive: sync: %w", err)
	}
	slugs, err := s.slugs.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("archive: refresh slugs: %w", err)
	}
	s.logger.Info("archive: reindexed", slog.Int("authors", len(slugs)))
	return len(slugs), nil
}

// readJSON reads and decodes one object. A missing object is ErrNotFound;
// an undecodable one is ErrMalformed.
func (s *Service) readJSON(key string, v any) error {
	data, err := s.store.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, key)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrMalformed, key, err)
	}
	return nil
}
