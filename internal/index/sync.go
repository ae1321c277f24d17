package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/validate"
)

// Sync walks the decks root and brings the index up to date:
//   - new/changed files are parsed, validated and upserted
//   - files removed from disk are deleted from the index
//
// A deck file that fails to parse is still indexed: its row records the
// parse error and carries no cards.
func Sync(db *DB, store storage.Provider, p *parser.Parser, v *validate.Validator, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, p, v, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for path := range checksums {
		if _, ok := disk[path]; !ok {
			if err := db.DeleteDeck(path); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", path))
			}
		}
	}

	return nil
}

// IndexFile parses and validates one deck file and upserts it into the DB.
// Parse failures are recorded on the deck row rather than returned, so a
// broken file stays visible in listings.
func IndexFile(db *DB, p *parser.Parser, v *validate.Validator, path string, data []byte) error {
	cs := checksum.Sum(data)
	row := DeckRow{
		Path:      path,
		Checksum:  cs,
		UpdatedAt: time.Now().UTC(),
	}

	state, err := p.ParseFile(path, string(data))
	if err != nil {
		row.ParseError = err.Error()
		return db.UpsertDeck(row, nil)
	}

	row.DeckID = state.DeckID
	row.NoteCount = len(state.Notes)

	cards := buildCards(v, path, state.Notes)
	for _, c := range cards {
		row.ProblemCount += len(c.Problems)
	}
	return db.UpsertDeck(row, cards)
}

// buildCards validates each note and assembles card rows in document order.
func buildCards(v *validate.Validator, path string, notes []models.ParsedNote) []CardRow {
	cards := make([]CardRow, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		var sb strings.Builder
		for _, name := range n.FieldOrder {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(n.Fields[name])
		}
		cards = append(cards, CardRow{
			DeckPath: path,
			Ord:      i,
			NoteID:   n.NoteID,
			NoteType: n.NoteType,
			Fields:   n.Fields,
			Problems: v.Note(n),
			Content:  sb.String(),
		})
	}
	return cards
}
