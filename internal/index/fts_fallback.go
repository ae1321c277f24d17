//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on the
	// cards.content column.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ int, _ int64, _, _ string) error {
	// Content is already stored in the cards table; nothing extra to do.
	return nil
}

func ftsDeleteDeck(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT deck_path, note_id, note_type, substr(content, 1, 200)
		FROM cards
		WHERE content LIKE ?
		ORDER BY deck_path, ord
		LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DeckPath, &r.NoteID, &r.NoteType, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
