package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/almanac/internal/apperr"
)

// AuthorRow is a row in the authors table.
type AuthorRow struct {
	Slug   string
	Name   string
	Letter string
	Key    string
}

// PoemRow is a row in the poems table.
type PoemRow struct {
	DateKey    string
	Title      string
	Author     string
	AuthorSlug string
	Body       string
	Key        string
}

// PoemHit is one full-text search hit.
type PoemHit struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Snippet string `json:"snippet"`
}

// UpsertAuthor inserts or replaces an author and records the checksum of
// the object it came from.
func (db *DB) UpsertAuthor(ctx context.Context, a AuthorRow, objectChecksum string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// A re-keyed object may carry a new slug; drop whatever the key held.
	if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE key = ? AND slug <> ?`, a.Key, a.Slug); err != nil {
		return fmt.Errorf("index: clear author key: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO authors (slug, name, letter, key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name   = excluded.name,
			letter = excluded.letter,
			key    = excluded.key
	`, a.Slug, a.Name, a.Letter, a.Key)
	if err != nil {
		return fmt.Errorf("index: upsert author: %w", err)
	}
	if err := recordObject(ctx, tx, a.Key, objectChecksum); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertPoem inserts or replaces a poem, its FTS entry and the checksum of
// the object it came from.
func (db *DB) UpsertPoem(ctx context.Context, p PoemRow, objectChecksum string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poems (date_key, title, author, author_slug, body, key)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date_key) DO UPDATE SET
			title       = excluded.title,
			author      = excluded.author,
			author_slug = excluded.author_slug,
			body        = excluded.body,
			key         = excluded.key
	`, p.DateKey, p.Title, p.Author, p.AuthorSlug, p.Body, p.Key)
	if err != nil {
		return fmt.Errorf("index: upsert poem: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, p.DateKey, p.Title, p.Author, p.Body); err != nil {
		return err
	}
	if err := recordObject(ctx, tx, p.Key, objectChecksum); err != nil {
		return err
	}
	return tx.Commit()
}

func recordObject(ctx context.Context, tx *sql.Tx, key, cs string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO objects (key, checksum, indexed_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			checksum   = excluded.checksum,
			indexed_at = excluded.indexed_at
	`, key, cs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: record object: %w", err)
	}
	return nil
}

// DeleteKey removes whatever author or poem was indexed from key.
func (db *DB) DeleteKey(ctx context.Context, key string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var dateKey string
	err = tx.QueryRowContext(ctx, `SELECT date_key FROM poems WHERE key = ?`, key).Scan(&dateKey)
	switch {
	case err == nil:
		if err := ftsDelete(tx, dateKey); err != nil {
			return err
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("index: find poem: %w", err)
	}

	for _, table := range []string{"poems", "authors", "objects"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE key = ?`, key); err != nil {
			return fmt.Errorf("index: delete from %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// AllChecksums returns the checksum recorded for every indexed object key.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key, checksum FROM objects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, cs string
		if err := rows.Scan(&k, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// AuthorSlugs returns every author slug in ascending order.
func (db *DB) AuthorSlugs(ctx context.Context) ([]string, error) {
	return db.strings(ctx, `SELECT slug FROM authors ORDER BY slug`)
}

// AuthorNames returns every author name in ascending order.
func (db *DB) AuthorNames(ctx context.Context) ([]string, error) {
	return db.strings(ctx, `SELECT name FROM authors ORDER BY name`)
}

// PoemTitles returns the distinct poem titles in ascending order.
func (db *DB) PoemTitles(ctx context.Context) ([]string, error) {
	return db.strings(ctx, `SELECT DISTINCT title FROM poems WHERE title <> '' ORDER BY title`)
}

// PoemDateByTitle returns the earliest day a poem with this title aired.
func (db *DB) PoemDateByTitle(ctx context.Context, title string) (string, error) {
	var dateKey string
	err := db.conn.QueryRowContext(ctx,
		`SELECT date_key FROM poems WHERE title = ? ORDER BY date_key LIMIT 1`, title).Scan(&dateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("index: poem by title: %w", err)
	}
	return dateKey, nil
}

func (db *DB) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Checksum returns the recorded checksum for key, or "" when the key has
// not been indexed.
func (db *DB) Checksum(ctx context.Context, key string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM objects WHERE key = ?`, key).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}
