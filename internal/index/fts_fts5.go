//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS poems_fts USING fts5(
			date_key UNINDEXED,
			title,
			author,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, dateKey, title, author, body string) error {
	_, _ = tx.Exec(`DELETE FROM poems_fts WHERE date_key = ?`, dateKey)
	_, err := tx.Exec(`INSERT INTO poems_fts (date_key, title, author, body) VALUES (?, ?, ?, ?)`,
		dateKey, title, author, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, dateKey string) error {
	if _, err := tx.Exec(`DELETE FROM poems_fts WHERE date_key = ?`, dateKey); err != nil {
		return fmt.Errorf("index: fts delete: %w", err)
	}
	return nil
}

// SearchPoems runs an FTS5 match over poem titles, authors and text.
func (db *DB) SearchPoems(ctx context.Context, query string, limit int) ([]PoemHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date_key,
		       title,
		       author,
		       snippet(poems_fts, 3, '<b>', '</b>', '...', 32)
		FROM poems_fts
		WHERE poems_fts MATCH ?
		ORDER BY rank, date_key
		LIMIT ?
	`, phrase(query), limit)
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

// phrase quotes user input as a single FTS5 string so operators and
// punctuation in a query cannot break the MATCH expression.
func phrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}
