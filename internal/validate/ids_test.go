package validate

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func idSet(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestCheckIDs_AllKnown(t *testing.T) {
	files := []models.FileState{{
		Path:   "decks/math.md",
		DeckID: 1,
		Notes:  []models.ParsedNote{{NoteID: 10}, {NoteID: 11}},
	}}
	got := CheckIDs(files, idSet(1), idSet(10, 11))
	if len(got) != 0 {
		t.Errorf("invalid ids = %v, want none", got)
	}
}

func TestCheckIDs_UnknownDeckAndNote(t *testing.T) {
	files := []models.FileState{{
		Path:   "decks/math.md",
		DeckID: 5,
		Notes:  []models.ParsedNote{{NoteID: 10}, {NoteID: 12, RawContent: "Q: orphan"}},
	}}
	got := CheckIDs(files, idSet(1), idSet(10))
	if len(got) != 2 {
		t.Fatalf("invalid ids = %v, want 2", got)
	}
	if got[0].Kind != models.IDKindDeck || got[0].Value != 5 {
		t.Errorf("first = %+v, want deck 5", got[0])
	}
	if !strings.Contains(got[0].Context, "math.md") {
		t.Errorf("context = %q", got[0].Context)
	}
	if got[1].Kind != models.IDKindNote || got[1].Value != 12 {
		t.Errorf("second = %+v, want note 12", got[1])
	}
	if !strings.Contains(got[1].Context, "note_id: 12") {
		t.Errorf("context = %q", got[1].Context)
	}
}

func TestCheckIDs_OrderIsFileThenNote(t *testing.T) {
	files := []models.FileState{
		{Path: "a.md", Notes: []models.ParsedNote{{NoteID: 2}, {NoteID: 1}}},
		{Path: "b.md", DeckID: 9},
	}
	got := CheckIDs(files, idSet(), idSet())
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Value != 2 || got[1].Value != 1 || got[2].Value != 9 {
		t.Errorf("order = %v", got)
	}
}

func TestCheckIDs_NoDeduplicationAcrossFiles(t *testing.T) {
	files := []models.FileState{
		{Path: "a.md", Notes: []models.ParsedNote{{NoteID: 7}}},
		{Path: "b.md", Notes: []models.ParsedNote{{NoteID: 7}}},
	}
	got := CheckIDs(files, idSet(), idSet())
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (no dedup)", len(got))
	}
}

func TestCheckIDs_MissingIDsAreSkipped(t *testing.T) {
	files := []models.FileState{{
		Path:  "a.md",
		Notes: []models.ParsedNote{{NoteID: 0, RawContent: "Q: untracked"}},
	}}
	got := CheckIDs(files, idSet(), idSet())
	if len(got) != 0 {
		t.Errorf("untracked notes must not be reported: %v", got)
	}
}

func TestIdentifier_Truncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	note := models.ParsedNote{RawContent: long + "\nA: second line"}
	id := note.Identifier()
	if !strings.HasPrefix(id, "'"+strings.Repeat("x", 60)) {
		t.Errorf("identifier = %q", id)
	}
	if strings.Contains(id, "second line") {
		t.Errorf("identifier leaked past first line: %q", id)
	}
}
