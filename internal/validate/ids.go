package validate

import (
	"fmt"
	"path/filepath"

	"github.com/starford/ansuz/internal/models"
)

// CheckIDs cross-checks every deck and note id found in markdown against
// the sets of ids known to exist remotely. It is a pure function: output
// order is file order, then note order within each file, and nothing is
// deduplicated across files.
func CheckIDs(files []models.FileState, validDeckIDs, validNoteIDs map[int64]struct{}) []models.InvalidID {
	var out []models.InvalidID

	for i := range files {
		fs := &files[i]
		base := filepath.Base(fs.Path)

		if fs.DeckID != 0 {
			if _, ok := validDeckIDs[fs.DeckID]; !ok {
				out = append(out, models.InvalidID{
					Value:   fs.DeckID,
					Kind:    models.IDKindDeck,
					Path:    fs.Path,
					Context: fmt.Sprintf("deck_id in %s", base),
				})
			}
		}

		for j := range fs.Notes {
			note := &fs.Notes[j]
			if note.NoteID == 0 {
				continue
			}
			if _, ok := validNoteIDs[note.NoteID]; ok {
				continue
			}
			out = append(out, models.InvalidID{
				Value:   note.NoteID,
				Kind:    models.IDKindNote,
				Path:    fs.Path,
				Context: fmt.Sprintf("%s in %s", note.Identifier(), base),
			})
		}
	}

	return out
}
