package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DeckRow represents a row in the decks table. ParseError is non-empty for
// files that could not be parsed; such decks carry no cards.
type DeckRow struct {
	Path         string    `json:"path"`
	DeckID       int64     `json:"deck_id,omitempty"`
	Checksum     string    `json:"checksum"`
	NoteCount    int       `json:"note_count"`
	ProblemCount int       `json:"problem_count"`
	ParseError   string    `json:"parse_error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CardRow represents one parsed note within a deck file. Content is the
// plain-text concatenation of field values used for search.
type CardRow struct {
	DeckPath string            `json:"deck_path"`
	Ord      int               `json:"ord"`
	NoteID   int64             `json:"note_id,omitempty"`
	NoteType string            `json:"note_type"`
	Fields   map[string]string `json:"fields"`
	Problems []string          `json:"problems"`
	Content  string            `json:"-"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	DeckPath string `json:"deck_path"`
	NoteID   int64  `json:"note_id,omitempty"`
	NoteType string `json:"note_type"`
	Snippet  string `json:"snippet"`
}

// Stats summarises the indexed collection.
type Stats struct {
	Decks    int            `json:"decks"`
	Cards    int            `json:"cards"`
	Problems int            `json:"problems"`
	ByType   map[string]int `json:"by_type"`
}

// UpsertDeck replaces a deck row and all of its cards within a transaction.
func (db *DB) UpsertDeck(d DeckRow, cards []CardRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO decks (path, deck_id, checksum, note_count, problem_count, parse_error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			deck_id       = excluded.deck_id,
			checksum      = excluded.checksum,
			note_count    = excluded.note_count,
			problem_count = excluded.problem_count,
			parse_error   = excluded.parse_error,
			updated_at    = excluded.updated_at
	`, d.Path, d.DeckID, d.Checksum, d.NoteCount, d.ProblemCount, d.ParseError, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert deck: %w", err)
	}

	// Replace cards: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM cards WHERE deck_path = ?`, d.Path)
	ftsDeleteDeck(tx, d.Path)

	if len(cards) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO cards (deck_path, ord, note_id, note_type, fields, problems, content)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare card insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range cards {
			fieldsJSON, _ := json.Marshal(c.Fields)
			problemsJSON, _ := json.Marshal(nonNil(c.Problems))
			if _, err := stmt.Exec(d.Path, c.Ord, c.NoteID, c.NoteType,
				string(fieldsJSON), string(problemsJSON), c.Content); err != nil {
				return fmt.Errorf("index: insert card: %w", err)
			}
			if err := ftsUpsert(tx, d.Path, c.Ord, c.NoteID, c.NoteType, c.Content); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteDeck removes a deck, its cards, and their FTS entries.
func (db *DB) DeleteDeck(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteDeck(tx, path)
	_, _ = tx.Exec(`DELETE FROM cards WHERE deck_path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM decks WHERE path = ?`, path)

	return tx.Commit()
}

// GetDeck returns one deck row, or nil when the path is not indexed.
func (db *DB) GetDeck(path string) (*DeckRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, deck_id, checksum, note_count, problem_count, parse_error, updated_at
		FROM decks WHERE path = ?`, path)
	var d DeckRow
	err := row.Scan(&d.Path, &d.DeckID, &d.Checksum, &d.NoteCount, &d.ProblemCount, &d.ParseError, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get deck: %w", err)
	}
	return &d, nil
}

// DeckCards returns the cards of one deck in document order.
func (db *DB) DeckCards(path string) ([]CardRow, error) {
	rows, err := db.conn.Query(`
		SELECT deck_path, ord, note_id, note_type, fields, problems, content
		FROM cards WHERE deck_path = ? ORDER BY ord`, path)
	if err != nil {
		return nil, fmt.Errorf("index: deck cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListDecks returns paginated deck rows and the total count.
// sort is one of "updated_at" (default), "path".
func (db *DB) ListDecks(limit, offset int, sort string) ([]DeckRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	orderBy := "updated_at DESC"
	if sort == "path" {
		orderBy = "path ASC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM decks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count decks: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, deck_id, checksum, note_count, problem_count, parse_error, updated_at
		FROM decks ORDER BY `+orderBy+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list decks: %w", err)
	}
	defer rows.Close()

	var out []DeckRow
	for rows.Next() {
		var d DeckRow
		if err := rows.Scan(&d.Path, &d.DeckID, &d.Checksum, &d.NoteCount, &d.ProblemCount, &d.ParseError, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// ListCards returns paginated cards, optionally filtered by note type,
// ordered by deck path then document order.
func (db *DB) ListCards(limit, offset int, noteType string) ([]CardRow, int, error) {
	if limit <= 0 {
		limit = 50
	}

	where := ""
	countArgs := []any{}
	if noteType != "" {
		where = " WHERE note_type = ?"
		countArgs = append(countArgs, noteType)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM cards`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count cards: %w", err)
	}

	args := append(countArgs, limit, offset)
	rows, err := db.conn.Query(`
		SELECT deck_path, ord, note_id, note_type, fields, problems, content
		FROM cards`+where+` ORDER BY deck_path, ord LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	return cards, total, err
}

// Stats returns collection-wide counters.
func (db *DB) Stats() (*Stats, error) {
	s := &Stats{ByType: make(map[string]int)}

	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM decks`).Scan(&s.Decks); err != nil {
		return nil, fmt.Errorf("index: stats decks: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&s.Cards); err != nil {
		return nil, fmt.Errorf("index: stats cards: %w", err)
	}
	if err := db.conn.QueryRow(
		`SELECT COALESCE(SUM(problem_count), 0) FROM decks`).Scan(&s.Problems); err != nil {
		return nil, fmt.Errorf("index: stats problems: %w", err)
	}

	rows, err := db.conn.Query(`SELECT note_type, COUNT(*) FROM cards GROUP BY note_type`)
	if err != nil {
		return nil, fmt.Errorf("index: stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var nt string
		var n int
		if err := rows.Scan(&nt, &n); err != nil {
			return nil, err
		}
		s.ByType[nt] = n
	}
	return s, rows.Err()
}

// GetChecksum returns the stored checksum for a deck, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM decks WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed deck.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM decks`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanCards(rows *sql.Rows) ([]CardRow, error) {
	var out []CardRow
	for rows.Next() {
		var c CardRow
		var fieldsJSON, problemsJSON string
		if err := rows.Scan(&c.DeckPath, &c.Ord, &c.NoteID, &c.NoteType, &fieldsJSON, &problemsJSON, &c.Content); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(fieldsJSON), &c.Fields)
		_ = json.Unmarshal([]byte(problemsJSON), &c.Problems)
		if c.Problems == nil {
			c.Problems = []string{}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
