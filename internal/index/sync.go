package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/almanac/internal/checksum"
	"github.com/starford/almanac/internal/models"
	"github.com/starford/almanac/internal/navigation"
	"github.com/starford/almanac/internal/slug"
	"github.com/starford/almanac/internal/storage"
)

// Indexable reports whether an object key is catalogued. Letter buckets
// and the manifest are derived data and stay out of the index.
func Indexable(key string) bool {
	return strings.HasPrefix(key, models.AuthorsPrefix) || strings.HasPrefix(key, models.PoemsPrefix)
}

// Sync brings the index up to date with the store:
//   - new/changed author and poem objects are decoded and upserted
//   - objects removed from the store are deleted from the index
func Sync(ctx context.Context, db Catalog, store storage.Provider, logger *slog.Logger) error {
	objects, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		if !Indexable(o.Key) {
			continue
		}
		present[o.Key] = struct{}{}

		if checksums[o.Key] == o.Checksum {
			continue
		}

		data, err := store.Read(o.Key)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("key", o.Key), slog.String("error", err.Error()))
			continue
		}
		if err := indexObject(ctx, db, o.Key, data); err != nil {
			logger.Warn("sync: index failed", slog.String("key", o.Key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("key", o.Key))
		}
	}

	for k := range checksums {
		if _, ok := present[k]; ok {
			continue
		}
		if err := db.DeleteKey(ctx, k); err != nil {
			logger.Warn("sync: delete failed", slog.String("key", k), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("key", k))
		}
	}

	return nil
}

// indexObject decodes an author or poem document and upserts it.
func indexObject(ctx context.Context, db Catalog, key string, data []byte) error {
	cs := checksum.Sum(data)
	base := strings.TrimSuffix(path.Base(key), ".json")

	switch {
	case strings.HasPrefix(key, models.AuthorsPrefix):
		var doc models.AuthorDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("index: decode %s: %w", key, err)
		}
		s := doc.Slug
		if s == "" {
			s = base
		}
		name := doc.Name
		if name == "" {
			name = slug.DisplayName(s)
		}
		letter, _ := slug.Letter(name)
		return db.UpsertAuthor(ctx, AuthorRow{Slug: s, Name: name, Letter: letter, Key: key}, cs)

	case strings.HasPrefix(key, models.PoemsPrefix):
		var doc models.PoemDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("index: decode %s: %w", key, err)
		}
		dk, err := navigation.ParseDateKey(base)
		if err != nil {
			return fmt.Errorf("index: poem key %s: %w", key, err)
		}
		return db.UpsertPoem(ctx, PoemRow{
			DateKey:    dk.String(),
			Title:      doc.Title,
			Author:     doc.Author,
			AuthorSlug: slug.Slugify(doc.Author),
			Body:       doc.Text,
			Key:        key,
		}, cs)
	}
	return fmt.Errorf("index: not an indexable key: %s", key)
}
