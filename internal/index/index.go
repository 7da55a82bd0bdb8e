package index

import "context"

// Catalog is the read/write surface the archive service depends on.
// Consumers should depend on this interface rather than *DB.
type Catalog interface {
	UpsertAuthor(ctx context.Context, a AuthorRow, objectChecksum string) error
	UpsertPoem(ctx context.Context, p PoemRow, objectChecksum string) error
	DeleteKey(ctx context.Context, key string) error
	AllChecksums(ctx context.Context) (map[string]string, error)
	AuthorSlugs(ctx context.Context) ([]string, error)
	AuthorNames(ctx context.Context) ([]string, error)
	PoemTitles(ctx context.Context) ([]string, error)
	PoemDateByTitle(ctx context.Context, title string) (string, error)
	SearchPoems(ctx context.Context, query string, limit int) ([]PoemHit, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
