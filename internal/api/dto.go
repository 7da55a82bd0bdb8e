package api

import (
	"github.com/starford/almanac/internal/archive"
	"github.com/starford/almanac/internal/index"
	"github.com/starford/almanac/internal/models"
)

// AuthorDetail is the author response type (aliased from the domain layer).
type AuthorDetail = archive.AuthorDetail

// LetterDocument is the letter bucket response type.
type LetterDocument = models.LetterDocument

// PoemView is the poem-of-the-day response type.
type PoemView = archive.PoemView

// NavigateResult is the navigation response type.
type NavigateResult = archive.NavigateResult

// SearchResult is the autocomplete response type.
type SearchResult = archive.SearchResult

// AuthorsResponse lists every author name.
type AuthorsResponse struct {
	Authors []string `json:"authors" validate:"required"`
}

// PoemSearchResponse wraps full-text poem hits.
type PoemSearchResponse struct {
	Query   string          `json:"query" example:"lanyard" validate:"required"`
	Results []index.PoemHit `json:"results" validate:"required"`
	Count   int             `json:"count" example:"1" validate:"required"`
}
