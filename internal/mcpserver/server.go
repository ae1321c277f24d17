// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz deck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/format"
	"github.com/starford/ansuz/internal/notetype"
	"github.com/starford/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	svc   *deckservice.Service
	table *notetype.Table
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, svc *deckservice.Service, table *notetype.Table) *Server {
	s := &Server{store: store, svc: svc, table: table}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through flashcard content across all decks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("read_deck",
		mcp.WithDescription("Read the raw Markdown content of a deck file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the deck (e.g. Science__Physics.md)")),
	), s.readDeck)

	s.mcp.AddTool(mcp.NewTool("create_deck",
		mcp.WithDescription("Create a new deck file from a hierarchical deck name. "+
			"Content MUST follow the canonical deck format (prefixed field lines, "+
			"notes separated by blank-line-framed '---' rules). Read the contract "+
			"first via the get_deck_contract tool or the ansuz://deck-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Hierarchical deck name (e.g. Science::Physics)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Deck content following the Ansuz deck format contract")),
	), s.createDeck)

	s.mcp.AddTool(mcp.NewTool("lint_deck",
		mcp.WithDescription("Parse and validate deck content without saving it. "+
			"Returns a report with the inferred note types and any problems."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Deck content to lint")),
	), s.lintDeck)

	s.mcp.AddTool(mcp.NewTool("format_note",
		mcp.WithDescription("Render a single note block in canonical deck format from "+
			"a note type and a JSON object of field values."),
		mcp.WithString("note_type", mcp.Required(), mcp.Description("Note type name (e.g. QA, Cloze)")),
		mcp.WithString("fields", mcp.Required(), mcp.Description(`Field values as a JSON object (e.g. {"Question": "...", "Answer": "..."})`)),
		mcp.WithNumber("note_id", mcp.Description("Optional note id for the id comment")),
	), s.formatNote)

	s.mcp.AddTool(mcp.NewTool("get_deck_contract",
		mcp.WithDescription("Returns the canonical Ansuz deck format contract. "+
			"Call this before creating or updating decks to ensure correct structure."),
	), s.getDeckContract)

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Upload a media file from an HTTP(S) URL or base64 data URI "+
			"into the shared media/ directory. Returns a markdownImage snippet ready "+
			"to paste into a note field."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or data: URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional target filename (derived from the URL when omitted)")),
	), s.uploadMedia)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List all deck files or decks in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listDecks)

	// Resource: deck format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://deck-format", "Deck Format Contract",
			mcp.WithResourceDescription("Canonical Markdown deck format that all deck files must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeckFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.svc.CreateDeck(ctx, name, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%d notes)", detail.Path, len(detail.Notes))), nil
}

func (s *Server) lintDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report := s.svc.Lint(ctx, []byte(content))
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) formatNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteType, err := req.RequireString("note_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldsJSON, err := req.RequireString("fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fields must be a JSON object of strings: %v", err)), nil
	}

	noteID := int64(req.GetFloat("note_id", 0))

	block, err := format.Note(s.table, noteID, fields, format.Identity{}, noteType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(block), nil
}

func (s *Server) listDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(metas) == 0 {
		return mcp.NewToolResultText("no decks found"), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getDeckContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeckFormatContract), nil
}

func (s *Server) readDeckFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://deck-format",
			MIMEType: "text/markdown",
			Text:     DeckFormatContract,
		},
	}, nil
}
