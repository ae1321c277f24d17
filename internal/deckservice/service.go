// Package deckservice coordinates storage, parsing, validation and index
// operations on deck files. It is the layer the HTTP API and the MCP server
// share.
package deckservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/validate"
)

// NoteView is one parsed note within a deck response, with its validation
// problems attached.
type NoteView struct {
	Ord      int               `json:"ord"`
	NoteID   int64             `json:"note_id,omitempty"`
	NoteType string            `json:"note_type"`
	Fields   map[string]string `json:"fields"`
	Problems []string          `json:"problems"`
}

// DeckDetail is the full representation of a deck file.
type DeckDetail struct {
	Path       string     `json:"path"`
	DeckID     int64      `json:"deck_id,omitempty"`
	Content    string     `json:"content"`
	Checksum   string     `json:"checksum"`
	Notes      []NoteView `json:"notes"`
	ParseError string     `json:"parse_error,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DeckListItem is a lightweight item in a list response.
type DeckListItem struct {
	Path         string    `json:"path"`
	DeckID       int64     `json:"deck_id,omitempty"`
	Checksum     string    `json:"checksum"`
	NoteCount    int       `json:"note_count"`
	ProblemCount int       `json:"problem_count"`
	ParseError   string    `json:"parse_error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LintReport is the result of linting deck content without writing it.
type LintReport struct {
	DeckID     int64      `json:"deck_id,omitempty"`
	NoteCount  int        `json:"note_count"`
	Untracked  int        `json:"untracked"`
	Problems   int        `json:"problems"`
	Notes      []NoteView `json:"notes"`
	ParseError string     `json:"parse_error,omitempty"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	parser *parser.Parser
	valid  *validate.Validator
}

// NewService creates a new deck service.
func NewService(store storage.Provider, db *index.DB, p *parser.Parser, v *validate.Validator) *Service {
	return &Service{store: store, db: db, parser: p, valid: v}
}

// GetDeck reads a deck file from storage, parses and validates it.
// A deck that fails to parse is still returned, with ParseError set and no
// notes.
func (s *Service) GetDeck(_ context.Context, path string) (*DeckDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDeckDetail(path, data), nil
}

// CreateDeck resolves a deck name to a filename, writes a new deck file and
// indexes it. Content must parse; a deck name that maps to an invalid
// filename or a parse failure rejects the write.
func (s *Service) CreateDeck(_ context.Context, deckName string, content []byte) (*DeckDetail, error) {
	stem, err := storage.DeckFilename(deckName)
	if err != nil {
		return nil, err
	}
	path := stem + ".md"
	if _, err := s.parser.ParseFile(path, string(content)); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDeckDetail(path, content), nil
}

// UpdateDeck writes updated deck content with optimistic concurrency.
// Content must parse before anything is written.
func (s *Service) UpdateDeck(_ context.Context, path string, content []byte, ifMatch string) (*DeckDetail, error) {
	if _, err := s.parser.ParseFile(path, string(content)); err != nil {
		return nil, err
	}
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDeckDetail(path, content), nil
}

// DeleteDeck removes a deck from storage and index.
func (s *Service) DeleteDeck(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDeck(path)
}

// ListDecks returns paginated deck rows.
func (s *Service) ListDecks(_ context.Context, limit, offset int, sort string) ([]DeckListItem, int, error) {
	rows, total, err := s.db.ListDecks(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DeckListItem, len(rows))
	for i, r := range rows {
		items[i] = DeckListItem{
			Path:         r.Path,
			DeckID:       r.DeckID,
			Checksum:     r.Checksum,
			NoteCount:    r.NoteCount,
			ProblemCount: r.ProblemCount,
			ParseError:   r.ParseError,
			UpdatedAt:    r.UpdatedAt,
		}
	}
	return items, total, nil
}

// ListCards returns paginated cards across all decks.
func (s *Service) ListCards(_ context.Context, limit, offset int, noteType string) ([]index.CardRow, int, error) {
	return s.db.ListCards(limit, offset, noteType)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Stats returns collection-wide counters from the index.
func (s *Service) Stats(_ context.Context) (*index.Stats, error) {
	return s.db.Stats()
}

// Lint parses and validates deck content without writing anything.
// Parse failures are reported, not returned as errors.
func (s *Service) Lint(_ context.Context, content []byte) *LintReport {
	report := &LintReport{Notes: []NoteView{}}

	state, err := s.parser.ParseFile("", string(content))
	if err != nil {
		report.ParseError = err.Error()
		return report
	}

	report.DeckID = state.DeckID
	report.NoteCount = len(state.Notes)
	for i := range state.Notes {
		n := &state.Notes[i]
		if n.NoteID == 0 {
			report.Untracked++
		}
		problems := s.valid.Note(n)
		report.Problems += len(problems)
		report.Notes = append(report.Notes, NoteView{
			Ord:      i,
			NoteID:   n.NoteID,
			NoteType: n.NoteType,
			Fields:   n.Fields,
			Problems: nonNilSlice(problems),
		})
	}
	return report
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	return index.IndexFile(s.db, s.parser, s.valid, path, data)
}

// buildDeckDetail constructs a DeckDetail from raw data without re-reading
// the file.
func (s *Service) buildDeckDetail(path string, data []byte) *DeckDetail {
	detail := &DeckDetail{
		Path:      path,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Notes:     []NoteView{},
		UpdatedAt: time.Now(),
	}

	state, err := s.parser.ParseFile(path, string(data))
	if err != nil {
		detail.ParseError = err.Error()
		return detail
	}

	detail.DeckID = state.DeckID
	detail.Notes = buildNoteViews(s.valid, state.Notes)
	return detail
}

func buildNoteViews(v *validate.Validator, notes []models.ParsedNote) []NoteView {
	views := make([]NoteView, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		views = append(views, NoteView{
			Ord:      i,
			NoteID:   n.NoteID,
			NoteType: n.NoteType,
			Fields:   n.Fields,
			Problems: nonNilSlice(v.Note(n)),
		})
	}
	return views
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
