package index

// DeckIndex defines the interface for deck indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DeckIndex interface {
	UpsertDeck(d DeckRow, cards []CardRow) error
	DeleteDeck(path string) error
	GetDeck(path string) (*DeckRow, error)
	DeckCards(path string) ([]CardRow, error)
	ListDecks(limit, offset int, sort string) ([]DeckRow, int, error)
	ListCards(limit, offset int, noteType string) ([]CardRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Stats() (*Stats, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DeckIndex at compile time.
var _ DeckIndex = (*DB)(nil)
