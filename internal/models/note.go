// Package models defines the domain types for Ansuz.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ParsedNote is one flashcard note parsed out of a markdown deck block.
// NoteID is 0 for notes that have not been pushed to the remote store yet
// (remote note ids are millisecond timestamps, never 0).
type ParsedNote struct {
	NoteID     int64             `json:"note_id,omitempty"`
	NoteType   string            `json:"note_type"`
	Fields     map[string]string `json:"fields"`
	FieldOrder []string          `json:"field_order"`
	RawContent string            `json:"-"`
}

// Get returns the content of the named field, or "" when absent.
func (n *ParsedNote) Get(name string) string {
	return n.Fields[name]
}

// Identifier returns a stable handle for error messages: the note id when
// known, otherwise the first content line truncated to 60 characters.
func (n *ParsedNote) Identifier() string {
	if n.NoteID != 0 {
		return fmt.Sprintf("note_id: %d", n.NoteID)
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(n.RawContent), "\n")
	if len(firstLine) > 60 {
		firstLine = firstLine[:60]
	}
	return fmt.Sprintf("'%s...'", firstLine)
}

// FileState is everything parsed from one markdown deck file in a single
// read. It is a point-in-time snapshot; DeckID is 0 when the file carries
// no deck_id header.
type FileState struct {
	Path       string       `json:"path"`
	RawContent string       `json:"-"`
	DeckID     int64        `json:"deck_id,omitempty"`
	Notes      []ParsedNote `json:"notes"`
}

// ID kinds reported by the cross-checker.
const (
	IDKindDeck = "deck"
	IDKindNote = "note"
)

// InvalidID is an id found in markdown that does not exist in the remote
// store. It is a reporting artifact only, never persisted.
type InvalidID struct {
	Value   int64  `json:"value"`
	Kind    string `json:"kind"` // "deck" or "note"
	Path    string `json:"path"`
	Context string `json:"context"`
}

// DeckMetadata is a lightweight representation returned by list operations.
type DeckMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
