package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	decksDir, store, p, v, db := watcherTestEnv(t)

	deck := "<!-- deck_id: 1700000000000 -->\n" +
		"Q: What is ansuz?\n\nA: A rune.\n\n---\n\n" +
		"T: The capital of France is {{c1::Paris}}.\n"
	_ = os.WriteFile(filepath.Join(decksDir, "runes.md"), []byte(deck), 0o644)

	if err := Sync(db, store, p, v, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	row, err := db.GetDeck("runes.md")
	if err != nil || row == nil {
		t.Fatalf("GetDeck: %v, %v", row, err)
	}
	if row.DeckID != 1700000000000 {
		t.Errorf("deck id = %d", row.DeckID)
	}
	if row.NoteCount != 2 || row.ProblemCount != 0 {
		t.Errorf("counts = %d notes, %d problems", row.NoteCount, row.ProblemCount)
	}

	cards, _ := db.DeckCards("runes.md")
	if len(cards) != 2 || cards[0].NoteType != "QA" || cards[1].NoteType != "Cloze" {
		t.Fatalf("cards = %+v", cards)
	}

	// Removing the file and re-syncing drops the deck from the index.
	_ = os.Remove(filepath.Join(decksDir, "runes.md"))
	if err := Sync(db, store, p, v, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	row, _ = db.GetDeck("runes.md")
	if row != nil {
		t.Errorf("stale deck still indexed: %+v", row)
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	decksDir, store, p, v, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(decksDir, "same.md"), []byte(watcherDeck), 0o644)

	if err := Sync(db, store, p, v, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	before, _ := db.GetDeck("same.md")

	if err := Sync(db, store, p, v, testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	after, _ := db.GetDeck("same.md")
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("unchanged file was re-indexed")
	}
}

func TestIndexFile_ParseErrorRecorded(t *testing.T) {
	_, _, p, v, db := watcherTestEnv(t)

	// Duplicate field without a separator is a parse error.
	broken := "Q: one\n\nQ: two\n\nA: answer\n"
	if err := IndexFile(db, p, v, "broken.md", []byte(broken)); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	row, err := db.GetDeck("broken.md")
	if err != nil || row == nil {
		t.Fatalf("GetDeck: %v, %v", row, err)
	}
	if row.ParseError == "" {
		t.Error("expected parse error on deck row")
	}
	if row.NoteCount != 0 {
		t.Errorf("note count = %d, want 0", row.NoteCount)
	}
	cards, _ := db.DeckCards("broken.md")
	if len(cards) != 0 {
		t.Errorf("expected no cards, got %d", len(cards))
	}
}

func TestIndexFile_ProblemsCounted(t *testing.T) {
	_, _, p, v, db := watcherTestEnv(t)

	// Cloze note without cloze syntax yields one validation problem.
	deck := "T: no deletion here\n"
	if err := IndexFile(db, p, v, "probs.md", []byte(deck)); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	row, _ := db.GetDeck("probs.md")
	if row.ProblemCount != 1 {
		t.Errorf("problem count = %d, want 1", row.ProblemCount)
	}
	cards, _ := db.DeckCards("probs.md")
	if len(cards) != 1 || len(cards[0].Problems) != 1 {
		t.Fatalf("cards = %+v", cards)
	}
}
