package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/notetype"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
	"github.com/starford/ansuz/internal/validate"
)

const sampleDeck = "Q: What is ansuz?\n\nA: A rune.\n\n---\n\n" +
	"T: Water boils at {{c1::100}} degrees.\n"

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestDecks(t)
	db := testutil.TestDB(t)

	table := notetype.Default()
	svc := deckservice.NewService(store, db, parser.New(table, notetype.RequiredSubset), validate.New(table))
	srv := New(store, svc, table)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// Since mcp-go doesn't expose a direct "call tool" test helper, we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_cards":
		result, err = srv.searchCards(ctx, req)
	case "read_deck":
		result, err = srv.readDeck(ctx, req)
	case "create_deck":
		result, err = srv.createDeck(ctx, req)
	case "lint_deck":
		result, err = srv.lintDeck(ctx, req)
	case "format_note":
		result, err = srv.formatNote(ctx, req)
	case "list_decks":
		result, err = srv.listDecks(ctx, req)
	case "get_deck_contract":
		result, err = srv.getDeckContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadDeck(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_deck", map[string]interface{}{
		"name":    "Runes",
		"content": sampleDeck,
	})
	text := resultText(r)
	if text != "created: Runes.md (2 notes)" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_deck", map[string]interface{}{
		"path": "Runes.md",
	})
	text = resultText(r)
	if text != sampleDeck {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateDeck_RejectsBadContent(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_deck", map[string]interface{}{
		"name":    "Broken",
		"content": "Q: a\n\nQ: b\n\nA: c\n",
	})
	if !r.IsError {
		t.Error("expected error for duplicate field content")
	}
}

func TestLintDeck(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "lint_deck", map[string]interface{}{
		"content": "T: no deletion here\n",
	})
	text := resultText(r)
	if !strings.Contains(text, "cloze") {
		t.Errorf("lint result missing cloze problem: %q", text)
	}
}

func TestFormatNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "format_note", map[string]interface{}{
		"note_type": "QA",
		"note_id":   float64(1700000000001),
		"fields":    `{"Question": "2+2?", "Answer": "4"}`,
	})
	text := resultText(r)
	if !strings.Contains(text, "<!-- note_id: 1700000000001 -->") {
		t.Errorf("missing id comment: %q", text)
	}
	if !strings.Contains(text, "Q: 2+2?") || !strings.Contains(text, "A: 4") {
		t.Errorf("missing fields: %q", text)
	}
}

func TestFormatNote_UnknownType(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "format_note", map[string]interface{}{
		"note_type": "Nope",
		"fields":    `{"Question": "x"}`,
	})
	if !r.IsError {
		t.Error("expected error for unknown note type")
	}
}

func TestListDecks(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Write("a.md", []byte(sampleDeck))
	_ = store.Write("b.md", []byte(sampleDeck))

	r := callTool(t, srv, "list_decks", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.md") || !strings.Contains(text, "b.md") {
		t.Errorf("list = %q", text)
	}
}

func TestReadDeckMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_deck", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing deck")
	}
}

func TestGetDeckContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_deck_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Deck Format Contract") {
		t.Errorf("contract = %q", text)
	}
}

func TestSearchCards(t *testing.T) {
	srv, _ := testServer(t)

	_ = callTool(t, srv, "create_deck", map[string]interface{}{
		"name":    "Find",
		"content": "Q: where is the uniquetoken?\n\nA: here\n",
	})

	r := callTool(t, srv, "search_cards", map[string]interface{}{"query": "uniquetoken"})
	text := resultText(r)
	if !strings.Contains(text, "Find.md") {
		t.Errorf("search = %q", text)
	}
}
