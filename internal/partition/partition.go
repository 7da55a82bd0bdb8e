// Package partition splits the full author mapping into the per-author,
// per-letter and manifest objects the archive serves.
package partition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/almanac/internal/apperr"
	"github.com/starford/almanac/internal/checksum"
	"github.com/starford/almanac/internal/models"
	"github.com/starford/almanac/internal/navigation"
	"github.com/starford/almanac/internal/slug"
	"github.com/starford/almanac/internal/storage"
)

// DefaultWorkers bounds concurrent store writes when Options.Workers is unset.
const DefaultWorkers = 8

// Options configures a partition run.
type Options struct {
	// Workers bounds concurrent writes.
	Workers int
	// Prune deletes author and letter objects the run did not produce.
	Prune bool
	// Now stamps the manifest. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type object struct {
	key  string
	data []byte
}

// Run decodes the mapping from input and writes authors/<slug>.json for
// every author, letters/<L>.json for every non-empty A-Z bucket and finally
// manifest.json. Two names with the same slug fail the run before anything
// is written, as does a bibliography date that FormatAuthorDate rejects.
func Run(ctx context.Context, input io.Reader, store storage.Provider, opts Options) (*models.Manifest, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger

	var source map[string]models.SourceAuthor
	if err := json.NewDecoder(input).Decode(&source); err != nil {
		return nil, fmt.Errorf("partition: decode input: %w", err)
	}

	objects, letters, err := build(source, logger)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ManifestEntry, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, o := range objects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := store.Write(o.key, o.data); err != nil {
				return fmt.Errorf("partition: write %s: %w", o.key, err)
			}
			entries[i] = models.ManifestEntry{Key: o.key, Checksum: checksum.Sum(o.data), Size: len(o.data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Prune {
		if err := prune(store, objects, logger); err != nil {
			return nil, err
		}
	}

	manifest := &models.Manifest{
		GeneratedAt: opts.Now().UTC(),
		Authors:     len(source),
		Letters:     letters,
		Files:       entries,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("partition: encode manifest: %w", err)
	}
	if err := store.Write(models.ManifestKey, data); err != nil {
		return nil, fmt.Errorf("partition: write manifest: %w", err)
	}

	logger.Info("partition: done",
		slog.Int("authors", manifest.Authors),
		slog.Int("letters", len(letters)),
		slog.Int("files", len(entries)))
	return manifest, nil
}

// build produces every object in key order, plus the sorted list of
// letters that received a bucket.
func build(source map[string]models.SourceAuthor, logger *slog.Logger) ([]object, []string, error) {
	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	slices.Sort(names)

	owner := make(map[string]string, len(names))
	buckets := make(map[string][]string)
	var objects []object

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		s := slug.Slugify(name)
		if s == "" {
			return nil, nil, fmt.Errorf("partition: %w: author %q has no usable slug", apperr.ErrInvalidArgument, name)
		}
		if prev, dup := owner[s]; dup {
			return nil, nil, fmt.Errorf("partition: %w: slug %q for both %q and %q", apperr.ErrAlreadyExists, s, prev, name)
		}
		owner[s] = name

		src := source[raw]
		for _, p := range src.Poems {
			if _, err := navigation.FormatAuthorDate(p.Date); err != nil {
				return nil, nil, fmt.Errorf("partition: author %q poem %q: %w", name, p.Title, err)
			}
		}
		poems := src.Poems
		if poems == nil {
			poems = []models.PoemRef{}
		}
		data, err := json.Marshal(models.AuthorDocument{
			Name:      name,
			Slug:      s,
			Biography: src.Bio,
			Poems:     poems,
			Metadata:  src.Extra,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("partition: encode %s: %w", s, err)
		}
		objects = append(objects, object{key: models.AuthorKey(s), data: data})

		letter, ok := slug.Letter(name)
		if !ok {
			logger.Warn("partition: author not filed under a letter", slog.String("name", name))
			continue
		}
		buckets[letter] = append(buckets[letter], name)
	}

	letters := make([]string, 0, len(buckets))
	for l := range buckets {
		letters = append(letters, l)
	}
	slices.Sort(letters)

	for _, l := range letters {
		data, err := json.Marshal(models.LetterDocument{Letter: l, Authors: buckets[l]})
		if err != nil {
			return nil, nil, fmt.Errorf("partition: encode letter %s: %w", l, err)
		}
		objects = append(objects, object{key: models.LetterKey(l), data: data})
	}

	slices.SortFunc(objects, func(a, b object) int { return strings.Compare(a.key, b.key) })
	return objects, letters, nil
}

// prune removes author and letter objects that the run did not write.
func prune(store storage.Provider, written []object, logger *slog.Logger) error {
	keep := make(map[string]struct{}, len(written))
	for _, o := range written {
		keep[o.key] = struct{}{}
	}
	removed := 0
	for _, prefix := range []string{models.AuthorsPrefix, models.LettersPrefix} {
		existing, err := store.List(prefix)
		if err != nil {
			return fmt.Errorf("partition: list %s: %w", prefix, err)
		}
		for _, o := range existing {
			if _, ok := keep[o.Key]; ok {
				continue
			}
			if err := store.Delete(o.Key); err != nil {
				return fmt.Errorf("partition: prune %s: %w", o.Key, err)
			}
			removed++
			logger.Debug("partition: pruned", slog.String("key", o.Key))
		}
	}
	if removed > 0 {
		logger.Info("partition: pruned stale objects", slog.Int("count", removed))
	}
	return nil
}
