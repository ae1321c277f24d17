// Package storage defines the deck-directory file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for deck file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the decks root).
	List(dir string) ([]models.DeckMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the decks root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the decks root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the decks root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the decks root).
	Move(oldPath, newPath string) error
}
