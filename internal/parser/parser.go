// Package parser turns raw markdown deck text into structured note records.
//
// A deck file is an optional deck_id comment followed by note blocks
// delimited by the Separator token. Each block holds prefixed fields
// (Q:, A:, T:, ...) whose prefixes are defined by the notetype table.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notetype"
)

// Separator is the literal token that delimits note blocks within a file.
const Separator = "\n\n---\n\n"

var (
	noteIDRe = regexp.MustCompile(`^<!--\s*note_id:\s*(\d+)\s*-->`)
	deckIDRe = regexp.MustCompile(`^<!--\s*deck_id:\s*(\d+)\s*-->\n?`)
	fenceRe  = regexp.MustCompile("^(```|~~~)")
)

// DuplicateFieldError reports a field prefix that recurs within one block
// before a separator.
type DuplicateFieldError struct {
	Prefix string
	NoteID int64 // 0 when the block carries no note_id comment
}

func (e *DuplicateFieldError) Error() string {
	ctx := "in this note"
	if e.NoteID != 0 {
		ctx = fmt.Sprintf("in note_id: %d", e.NoteID)
	}
	return fmt.Sprintf("duplicate field '%s' %s. "+
		"Did you forget to end the previous note with '\\n\\n---\\n\\n' "+
		"or is there an accidental duplicate prefix?", e.Prefix, ctx)
}

// Parser parses deck files against an immutable notetype table and an
// inference strategy. It is stateless and safe for concurrent use.
type Parser struct {
	table *notetype.Table
	infer notetype.Strategy
}

// New creates a Parser for the given table and inference strategy.
func New(table *notetype.Table, infer notetype.Strategy) *Parser {
	return &Parser{table: table, infer: infer}
}

// Table returns the prefix table the parser was built with.
func (p *Parser) Table() *notetype.Table {
	return p.table
}

// ExtractDeckID consumes a leading deck_id comment. It returns 0 and the
// unchanged content when the file does not start with one.
func ExtractDeckID(content string) (int64, string) {
	m := deckIDRe.FindStringSubmatch(content)
	if m == nil {
		return 0, content
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)
	return id, content[len(m[0]):]
}

// Split divides raw file content into the optional deck id and the ordered
// sequence of non-empty, whitespace-trimmed note blocks.
func Split(content string) (int64, []string) {
	deckID, rest := ExtractDeckID(content)
	var blocks []string
	for _, seg := range strings.Split(rest, Separator) {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}
	return deckID, blocks
}

// ParseBlock parses one raw block into a ParsedNote. It fails with
// *DuplicateFieldError when a field prefix recurs and with
// *notetype.UnknownNoteTypeError when the populated fields match no variant.
func (p *Parser) ParseBlock(block string) (*models.ParsedNote, error) {
	var (
		noteID       int64
		fields       = make(map[string]string)
		order        []string
		currentField string
		buf          []string
		inFence      bool
	)
	seen := make(map[string]bool)

	flush := func() {
		if currentField != "" {
			fields[currentField] = strings.TrimSpace(strings.Join(buf, "\n"))
			order = append(order, currentField)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		// Fence lines toggle code-block state and belong to the open
		// field's content. Toggling is tracked even inside a fence so
		// that a matching close marker re-enables prefix detection.
		if fenceRe.MatchString(strings.TrimLeft(line, " \t")) {
			inFence = !inFence
			if currentField != "" {
				buf = append(buf, line)
			}
			continue
		}

		// The note_id comment is recognised regardless of fence state
		// and is never part of field content.
		if m := noteIDRe.FindStringSubmatch(line); m != nil {
			noteID, _ = strconv.ParseInt(m[1], 10, 64)
			continue
		}

		// Inside a fence, prefix detection is suppressed.
		if inFence {
			if currentField != "" {
				buf = append(buf, line)
			}
			continue
		}

		if fieldName, prefix, ok := p.table.Match(line); ok {
			if seen[fieldName] {
				return nil, &DuplicateFieldError{Prefix: prefix, NoteID: noteID}
			}
			seen[fieldName] = true
			flush()
			currentField = fieldName
			if strings.HasPrefix(line, prefix+" ") {
				buf = []string{line[len(prefix)+1:]}
			} else {
				buf = nil
			}
			continue
		}

		// Plain content extends the open field; lines before the first
		// prefix are discarded.
		if currentField != "" {
			buf = append(buf, line)
		}
	}
	flush()

	noteType, err := p.infer(p.table, fields)
	if err != nil {
		return nil, err
	}

	return &models.ParsedNote{
		NoteID:     noteID,
		NoteType:   noteType,
		Fields:     fields,
		FieldOrder: order,
		RawContent: block,
	}, nil
}

// ParseFile parses a whole deck file into a FileState snapshot.
func (p *Parser) ParseFile(path, content string) (*models.FileState, error) {
	deckID, blocks := Split(content)
	fs := &models.FileState{
		Path:       path,
		RawContent: content,
		DeckID:     deckID,
	}
	for _, block := range blocks {
		note, err := p.ParseBlock(block)
		if err != nil {
			if path == "" {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fs.Notes = append(fs.Notes, *note)
	}
	return fs, nil
}

// NoteBlocks returns the blocks that carry a note_id comment, keyed by
// "note_id: <id>". The deck header, if any, is stripped first.
func NoteBlocks(content string) map[string]string {
	_, rest := ExtractDeckID(content)
	out := make(map[string]string)
	for _, seg := range strings.Split(rest, Separator) {
		block := strings.TrimSpace(seg)
		if block == "" {
			continue
		}
		if m := noteIDRe.FindStringSubmatch(block); m != nil {
			out["note_id: "+m[1]] = block
		}
	}
	return out
}

// HasUntrackedNotes reports whether content holds blocks with field
// prefixes but no note_id comment, i.e. notes never pushed to the remote
// store.
func (p *Parser) HasUntrackedNotes(content string) bool {
	_, rest := ExtractDeckID(content)
	for _, seg := range strings.Split(rest, Separator) {
		block := strings.TrimSpace(seg)
		if block == "" {
			continue
		}
		if noteIDRe.MatchString(block) {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			if _, _, ok := p.table.Match(line); ok {
				return true
			}
		}
	}
	return false
}
