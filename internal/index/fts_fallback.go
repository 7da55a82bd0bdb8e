//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// No FTS5; SearchPoems falls back to LIKE over the poems table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// SearchPoems performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) SearchPoems(ctx context.Context, query string, limit int) ([]PoemHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date_key, title, author, substr(body, 1, 200)
		FROM poems
		WHERE title LIKE ? OR author LIKE ? OR body LIKE ?
		ORDER BY date_key
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search poems: %w", err)
	}
	defer rows.Close()

	out := []PoemHit{}
	for rows.Next() {
		var h PoemHit
		if err := rows.Scan(&h.Date, &h.Title, &h.Author, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
