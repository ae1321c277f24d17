package storage

import (
	"fmt"
	"strings"
)

// HierarchySeparator is the remote store's deck hierarchy separator.
const HierarchySeparator = "::"

var reservedNames = func() map[string]bool {
	m := map[string]bool{"CON": true, "PRN": true, "AUX": true, "NUL": true}
	for i := 1; i <= 9; i++ {
		m[fmt.Sprintf("COM%d", i)] = true
		m[fmt.Sprintf("LPT%d", i)] = true
	}
	return m
}()

// InvalidFilenameError reports a deck name that cannot be turned into a
// file name: it either contains forbidden characters or starts with a
// Windows reserved device name.
type InvalidFilenameError struct {
	DeckName string
	Chars    []string // offending characters, empty for reserved names
	Reserved string   // reserved base name, "" for character violations
}

func (e *InvalidFilenameError) Error() string {
	if e.Reserved != "" {
		return fmt.Sprintf("deck name '%s' starts with Windows reserved name '%s'", e.DeckName, e.Reserved)
	}
	return fmt.Sprintf("deck name '%s' contains invalid filename characters: %s",
		e.DeckName, strings.Join(e.Chars, " "))
}

// DeckFilename converts a hierarchical deck name into a safe file name
// stem: forbidden characters are rejected (colon is allowed, it is the
// hierarchy separator), reserved device names are rejected, and every
// "::" becomes "__".
func DeckFilename(deckName string) (string, error) {
	var invalid []string
	for _, c := range `/\?*|"<>` {
		if strings.ContainsRune(deckName, c) {
			invalid = append(invalid, string(c))
		}
	}
	if len(invalid) > 0 {
		return "", &InvalidFilenameError{DeckName: deckName, Chars: invalid}
	}

	base, _, _ := strings.Cut(deckName, HierarchySeparator)
	if reservedNames[strings.ToUpper(base)] {
		return "", &InvalidFilenameError{DeckName: deckName, Reserved: strings.ToUpper(base)}
	}

	return strings.ReplaceAll(deckName, HierarchySeparator, "__"), nil
}
