// Package testutil provides shared test helpers for setting up stores and databases.
package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/starford/almanac/internal/index"
	"github.com/starford/almanac/internal/models"
	"github.com/starford/almanac/internal/storage"
)

// TestDB creates a temporary SQLite catalogue that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "almanac-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary object store directory.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// PutJSON marshals v and writes it under key.
func PutJSON(t *testing.T, store storage.Provider, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(key, data); err != nil {
		t.Fatal(err)
	}
}

// SeedArchive writes a small fixed archive: three authors, their letter
// buckets and four poems.
func SeedArchive(t *testing.T, store storage.Provider) {
	t.Helper()
	PutJSON(t, store, models.AuthorKey("billy-collins"), models.AuthorDocument{
		Name:      "Billy Collins",
		Slug:      "billy-collins",
		Biography: "Poet Laureate of the United States from 2001 to 2003.",
		Poems: []models.PoemRef{
			{Date: "Jan. 15, 2003", Title: "The Lanyard"},
			{Date: "Mar.  1, 2005", Title: "Litany"},
		},
		Metadata: map[string]any{"born": "1941"},
	})
	PutJSON(t, store, models.AuthorKey("jane-kenyon"), models.AuthorDocument{
		Name:  "Jane Kenyon",
		Slug:  "jane-kenyon",
		Poems: []models.PoemRef{{Date: "Jan. 16, 2003", Title: "Otherwise"}},
	})
	PutJSON(t, store, models.AuthorKey("mary-oliver"), models.AuthorDocument{
		Name:  "Mary Oliver",
		Slug:  "mary-oliver",
		Poems: []models.PoemRef{{Date: "Jan. 1, 1993", Title: "Wild Geese"}},
	})
	PutJSON(t, store, models.LetterKey("B"), models.LetterDocument{Letter: "B", Authors: []string{"Billy Collins"}})
	PutJSON(t, store, models.LetterKey("J"), models.LetterDocument{Letter: "J", Authors: []string{"Jane Kenyon"}})
	PutJSON(t, store, models.LetterKey("M"), models.LetterDocument{Letter: "M", Authors: []string{"Mary Oliver"}})

	for _, p := range []models.PoemDocument{
		{Date: "19930101", Title: "Wild Geese", Author: "Mary Oliver", Text: "You do not have to be good."},
		{Date: "20030115", Title: "The Lanyard", Author: "Billy Collins", Text: "The other day I was ricocheting slowly"},
		{Date: "20030116", Title: "Otherwise", Author: "Jane Kenyon", Text: "I got out of bed on two strong legs."},
		{Date: "20171129", Title: "Litany", Author: "Billy Collins", Text: "You are the bread and the knife."},
	} {
		PutJSON(t, store, models.PoemKey(p.Date), p)
	}
}
