//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards_fts`).Scan(&count); err != nil {
		t.Fatalf("cards_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("fts.md", "f1", CardRow{
		Ord:      0,
		NoteID:   1700000000042,
		NoteType: "QA",
		Fields:   map[string]string{"Question": "What powers full-text search?"},
		Content:  "What powers full-text search?\nA powerful tokenizer.",
	})
	if err := db.UpsertDeck(row, cards); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DeckPath != "fts.md" {
		t.Errorf("deck path = %q", results[0].DeckPath)
	}
	if results[0].NoteID != 1700000000042 {
		t.Errorf("note id = %d", results[0].NoteID)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("gone.md", "g", CardRow{Ord: 0, NoteType: "QA", Content: "vanishing content"})
	_ = db.UpsertDeck(row, cards)
	_ = db.DeleteDeck("gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.DeckPath == "gone.md" {
			t.Error("deleted deck still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("evo.md", "1", CardRow{Ord: 0, NoteType: "QA", Content: "original text"})
	_ = db.UpsertDeck(row, cards)
	row2, cards2 := testDeck("evo.md", "2", CardRow{Ord: 0, NoteType: "Cloze", Content: "replacement text"})
	_ = db.UpsertDeck(row2, cards2)

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].NoteType != "Cloze" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
