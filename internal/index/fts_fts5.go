//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS cards_fts USING fts5(
			deck_path UNINDEXED,
			ord UNINDEXED,
			note_id UNINDEXED,
			note_type,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, deckPath string, ord int, noteID int64, noteType, content string) error {
	_, err := tx.Exec(`INSERT INTO cards_fts (deck_path, ord, note_id, note_type, content) VALUES (?, ?, ?, ?, ?)`,
		deckPath, ord, noteID, noteType, content)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteDeck(tx *sql.Tx, deckPath string) {
	_, _ = tx.Exec(`DELETE FROM cards_fts WHERE deck_path = ?`, deckPath)
}

// Search performs an FTS5 full-text search over card content and returns
// matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT deck_path,
		       note_id,
		       note_type,
		       snippet(cards_fts, 4, '<b>', '</b>', '...', 64)
		FROM cards_fts
		WHERE cards_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
