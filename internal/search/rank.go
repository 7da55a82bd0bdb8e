// Package search ranks author and poem names against a free-text query
// using fixed match tiers. Ranking is pure; the slug universe is always
// passed in by the caller.
package search

import (
	"slices"
	"strings"

	"github.com/starford/almanac/internal/slug"
)

// Candidate types.
const (
	TypeAuthor = "author"
	TypePoem   = "poem"
)

// Tier scores, highest first. A candidate takes the first tier it matches.
const (
	ScoreExact        = 100
	ScorePrefix       = 90
	ScoreWordBoundary = 80
	ScoreSubstring    = 70
)

// Candidate is one ranked match.
type Candidate struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Score int    `json:"score"`
}

// Score returns the tier score of name (or its slug) for query, or 0 when
// nothing matches. Comparison is case-insensitive.
func Score(query, name, slugKey string) int {
	q := strings.ToLower(query)
	n := strings.ToLower(name)
	switch {
	case n == q || strings.ToLower(slugKey) == q:
		return ScoreExact
	case strings.HasPrefix(n, q):
		return ScorePrefix
	case strings.Contains(n, " "+q):
		return ScoreWordBoundary
	case strings.Contains(n, q):
		return ScoreSubstring
	}
	return 0
}

// SearchAuthors ranks author slugs for query. Display names are derived
// from the slugs with slug.DisplayName. Equal scores keep the order of
// slugs. limit <= 0 returns every match.
func SearchAuthors(query string, slugs []string, limit int) []Candidate {
	pool := make([]Candidate, 0, len(slugs))
	for _, s := range slugs {
		pool = append(pool, Candidate{Type: TypeAuthor, Name: slug.DisplayName(s), Slug: s})
	}
	return Rank(query, pool, limit)
}

// SearchNames ranks real author names and poem titles, authors first.
func SearchNames(query string, authors, poems []string, limit int) []Candidate {
	pool := make([]Candidate, 0, len(authors)+len(poems))
	for _, name := range authors {
		pool = append(pool, Candidate{Type: TypeAuthor, Name: name, Slug: slug.Slugify(name)})
	}
	for _, title := range poems {
		pool = append(pool, Candidate{Type: TypePoem, Name: title, Slug: slug.Slugify(title)})
	}
	return Rank(query, pool, limit)
}

// Rank scores every candidate in pool, drops non-matches, stable-sorts by
// score descending and truncates to limit.
func Rank(query string, pool []Candidate, limit int) []Candidate {
	matched := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if score := Score(query, c.Name, c.Slug); score > 0 {
			c.Score = score
			matched = append(matched, c)
		}
	}
	slices.SortStableFunc(matched, func(a, b Candidate) int {
		return b.Score - a.Score
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
