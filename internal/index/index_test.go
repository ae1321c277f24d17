package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testDeck(path, checksum string, cards ...CardRow) (DeckRow, []CardRow) {
	notes := 0
	problems := 0
	for _, c := range cards {
		notes++
		problems += len(c.Problems)
	}
	return DeckRow{
		Path:         path,
		Checksum:     checksum,
		NoteCount:    notes,
		ProblemCount: problems,
		UpdatedAt:    time.Now(),
	}, cards
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM decks`).Scan(&count); err != nil {
		t.Fatalf("decks table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards`).Scan(&count); err != nil {
		t.Fatalf("cards table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("math.md", "abc123", CardRow{
		Ord:      0,
		NoteID:   1700000000001,
		NoteType: "QA",
		Fields:   map[string]string{"Question": "2+2?", "Answer": "4"},
		Content:  "2+2?\n4",
	})
	if err := db.UpsertDeck(row, cards); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}
	cs, err := db.GetChecksum("math.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestDeckCards_Order(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("d.md", "1",
		CardRow{Ord: 0, NoteType: "QA", Fields: map[string]string{"Question": "first"}},
		CardRow{Ord: 1, NoteType: "Cloze", Fields: map[string]string{"Text": "second"}},
	)
	if err := db.UpsertDeck(row, cards); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}

	got, err := db.DeckCards("d.md")
	if err != nil {
		t.Fatalf("DeckCards: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(got))
	}
	if got[0].NoteType != "QA" || got[1].NoteType != "Cloze" {
		t.Errorf("cards out of order: %+v", got)
	}
	if got[0].Fields["Question"] != "first" {
		t.Errorf("fields not round-tripped: %+v", got[0].Fields)
	}
}

func TestDeleteDeck(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("del.md", "x", CardRow{Ord: 0, NoteType: "QA"})
	_ = db.UpsertDeck(row, cards)

	if err := db.DeleteDeck("del.md"); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted deck still has checksum %q", cs)
	}
	got, _ := db.DeckCards("del.md")
	if len(got) != 0 {
		t.Errorf("expected 0 cards after delete, got %d", len(got))
	}
}

func TestUpsertReplacesCards(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("up.md", "1",
		CardRow{Ord: 0, NoteType: "QA"},
		CardRow{Ord: 1, NoteType: "QA"},
	)
	_ = db.UpsertDeck(row, cards)

	row2, cards2 := testDeck("up.md", "2", CardRow{Ord: 0, NoteType: "Cloze"})
	if err := db.UpsertDeck(row2, cards2); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	got, _ := db.DeckCards("up.md")
	if len(got) != 1 {
		t.Fatalf("expected 1 card after replace, got %d", len(got))
	}
	if got[0].NoteType != "Cloze" {
		t.Errorf("note type = %q, want Cloze", got[0].NoteType)
	}
}

func TestGetDeck(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("g.md", "cs", CardRow{Ord: 0, NoteType: "QA", Problems: []string{"missing mandatory field 'Answer' (A:)"}})
	row.DeckID = 1700000000000
	_ = db.UpsertDeck(row, cards)

	got, err := db.GetDeck("g.md")
	if err != nil {
		t.Fatalf("GetDeck: %v", err)
	}
	if got == nil {
		t.Fatal("expected deck, got nil")
	}
	if got.DeckID != 1700000000000 || got.NoteCount != 1 || got.ProblemCount != 1 {
		t.Errorf("deck row = %+v", got)
	}

	missing, err := db.GetDeck("nope.md")
	if err != nil {
		t.Fatalf("GetDeck missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown path, got %+v", missing)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListDecks_Pagination(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"a.md", "b.md", "c.md"} {
		row, cards := testDeck(p, "1")
		_ = db.UpsertDeck(row, cards)
	}

	decks, total, err := db.ListDecks(2, 0, "path")
	if err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(decks) != 2 || decks[0].Path != "a.md" || decks[1].Path != "b.md" {
		t.Errorf("page = %+v", decks)
	}

	decks, _, _ = db.ListDecks(2, 2, "path")
	if len(decks) != 1 || decks[0].Path != "c.md" {
		t.Errorf("second page = %+v", decks)
	}
}

func TestListCards_FilterByType(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("mix.md", "1",
		CardRow{Ord: 0, NoteType: "QA"},
		CardRow{Ord: 1, NoteType: "Cloze"},
		CardRow{Ord: 2, NoteType: "QA"},
	)
	_ = db.UpsertDeck(row, cards)

	got, total, err := db.ListCards(10, 0, "QA")
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(got))
	}
	for _, c := range got {
		if c.NoteType != "QA" {
			t.Errorf("unexpected note type %q", c.NoteType)
		}
	}

	_, total, _ = db.ListCards(10, 0, "")
	if total != 3 {
		t.Errorf("unfiltered total = %d, want 3", total)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	row1, cards1 := testDeck("one.md", "1",
		CardRow{Ord: 0, NoteType: "QA", Problems: []string{"p1"}},
		CardRow{Ord: 1, NoteType: "Cloze"},
	)
	row2, cards2 := testDeck("two.md", "2", CardRow{Ord: 0, NoteType: "QA"})
	_ = db.UpsertDeck(row1, cards1)
	_ = db.UpsertDeck(row2, cards2)

	s, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Decks != 2 || s.Cards != 3 || s.Problems != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.ByType["QA"] != 2 || s.ByType["Cloze"] != 1 {
		t.Errorf("by type = %+v", s.ByType)
	}
}

func TestParseErrorDeck_NoCards(t *testing.T) {
	db := testDB(t)
	row := DeckRow{
		Path:       "broken.md",
		Checksum:   "b",
		ParseError: "broken.md: duplicate field 'Q:'",
		UpdatedAt:  time.Now(),
	}
	if err := db.UpsertDeck(row, nil); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}
	got, err := db.GetDeck("broken.md")
	if err != nil {
		t.Fatalf("GetDeck: %v", err)
	}
	if got.ParseError == "" {
		t.Error("expected parse error to be stored")
	}
	cards, _ := db.DeckCards("broken.md")
	if len(cards) != 0 {
		t.Errorf("expected no cards for broken deck, got %d", len(cards))
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	row, cards := testDeck("s.md", "1", CardRow{
		Ord:      0,
		NoteType: "QA",
		Fields:   map[string]string{"Question": "uniqueword appears here"},
		Content:  "uniqueword appears here",
	})
	_ = db.UpsertDeck(row, cards)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DeckPath != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
