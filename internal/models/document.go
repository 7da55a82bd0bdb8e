// Package models defines the JSON documents kept in the archive's object store.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Object key layout inside the store.
const (
	AuthorsPrefix = "authors/"
	LettersPrefix = "letters/"
	PoemsPrefix   = "poems/"
	ManifestKey   = "manifest.json"
)

// AuthorKey is the object key of an author document.
func AuthorKey(slug string) string { return AuthorsPrefix + slug + ".json" }

// LetterKey is the object key of a letter bucket.
func LetterKey(letter string) string { return LettersPrefix + letter + ".json" }

// PoemKey is the object key of the poem for a YYYYMMDD day.
func PoemKey(dateKey string) string { return PoemsPrefix + dateKey + ".json" }

// PoemRef is one bibliography entry. Date is human text, e.g. "Jan. 15, 2003".
type PoemRef struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

// AuthorDocument is stored at authors/<slug>.json.
type AuthorDocument struct {
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Biography string         `json:"biography"`
	Poems     []PoemRef      `json:"poems"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// LetterDocument is stored at letters/<L>.json.
type LetterDocument struct {
	Letter  string   `json:"letter"`
	Authors []string `json:"authors"`
}

// PoemDocument is stored at poems/<YYYYMMDD>.json.
type PoemDocument struct {
	Date       string `json:"date"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Text       string `json:"text"`
	Transcript string `json:"transcript,omitempty"`
	Notes      string `json:"notes,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
}

// ManifestEntry lists one object produced by a partition run.
type ManifestEntry struct {
	Key      string `json:"key"`
	Checksum string `json:"checksum"`
	Size     int    `json:"size"`
}

// Manifest is stored at manifest.json.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Authors     int             `json:"authors"`
	Letters     []string        `json:"letters"`
	Files       []ManifestEntry `json:"files"`
}

// SourceAuthor is one value of the large author mapping consumed by the
// partition command. Fields other than bio and poems are carried into
// AuthorDocument.Metadata.
type SourceAuthor struct {
	Bio   string         `json:"bio"`
	Poems []PoemRef      `json:"poems"`
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON decodes bio and poems and keeps every other field in Extra.
func (s *SourceAuthor) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = SourceAuthor{}
	for k, raw := range fields {
		var err error
		switch k {
		case "bio":
			err = json.Unmarshal(raw, &s.Bio)
		case "poems":
			err = json.Unmarshal(raw, &s.Poems)
		default:
			var v any
			if err = json.Unmarshal(raw, &v); err == nil {
				if s.Extra == nil {
					s.Extra = make(map[string]any)
				}
				s.Extra[k] = v
			}
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

// ObjectInfo is what a store listing returns per object.
type ObjectInfo struct {
	Key       string    `json:"key"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
