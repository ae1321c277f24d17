package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/starford/ansuz/internal/ankiconnect"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notetype"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/validate"
)

// Check parses and validates every deck in the configured directory and
// writes a problem report to w. When remote is true it additionally asks
// AnkiConnect for the known deck and note ids and reports ids in markdown
// that the remote collection does not have.
//
// A non-nil error is returned when any problem was found, so callers can
// map it to a non-zero exit code.
func Check(ctx context.Context, cfg *Config, remote bool, w io.Writer) error {
	table, strategy, err := notetype.LoadFile(cfg.NoteTypes.Path)
	if err != nil {
		return fmt.Errorf("load note types: %w", err)
	}
	if cfg.NoteTypes.Strategy != "" {
		strategy, err = notetype.StrategyByName(cfg.NoteTypes.Strategy)
		if err != nil {
			return fmt.Errorf("load note types: %w", err)
		}
	}
	p := parser.New(table, strategy)
	v := validate.New(table)

	store, err := storage.NewFS(cfg.Decks.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	metas, err := store.List("")
	if err != nil {
		return fmt.Errorf("list decks: %w", err)
	}

	var files []models.FileState
	problems := 0

	for _, meta := range metas {
		data, err := store.Read(meta.Path)
		if err != nil {
			fmt.Fprintf(w, "%s: read error: %v\n", meta.Path, err)
			problems++
			continue
		}

		fs, err := p.ParseFile(meta.Path, string(data))
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			problems++
			continue
		}
		files = append(files, *fs)

		for i := range fs.Notes {
			n := &fs.Notes[i]
			for _, problem := range v.Note(n) {
				fmt.Fprintf(w, "%s: %s: %s\n", fs.Path, n.Identifier(), problem)
				problems++
			}
		}
	}

	if remote {
		invalid, err := checkRemoteIDs(ctx, cfg, files)
		if err != nil {
			return err
		}
		for _, id := range invalid {
			fmt.Fprintf(w, "%s: unknown %s id %d (%s)\n", id.Path, id.Kind, id.Value, id.Context)
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("found %d problems in %d decks", problems, len(metas))
	}
	fmt.Fprintf(w, "checked %d decks, no problems\n", len(metas))
	return nil
}

// checkRemoteIDs cross-references the ids embedded in markdown against the
// live Anki collection reachable via AnkiConnect.
func checkRemoteIDs(ctx context.Context, cfg *Config, files []models.FileState) ([]models.InvalidID, error) {
	client := ankiconnect.New(cfg.Anki.URL)

	decks, err := client.DeckNamesAndIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ankiconnect: %w", err)
	}
	validDeckIDs := make(map[int64]struct{}, len(decks))
	for _, id := range decks {
		validDeckIDs[id] = struct{}{}
	}

	noteIDs, err := client.FindNotes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("ankiconnect: %w", err)
	}
	validNoteIDs := make(map[int64]struct{}, len(noteIDs))
	for _, id := range noteIDs {
		validNoteIDs[id] = struct{}{}
	}

	return validate.CheckIDs(files, validDeckIDs, validNoteIDs), nil
}
