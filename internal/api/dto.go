package api

import (
	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/index"
)

// CreateDeckRequest is the request body for creating a deck.
type CreateDeckRequest struct {
	Name    string `json:"name" example:"Science::Physics" validate:"required"`
	Content string `json:"content" example:"Q: question\n\nA: answer" validate:"required"`
}

// UpdateDeckRequest is the request body for updating a deck.
type UpdateDeckRequest struct {
	Content string `json:"content" example:"Q: updated\n\nA: content" validate:"required"`
}

// LintRequest is the request body for linting deck content without saving.
type LintRequest struct {
	Content string `json:"content" example:"Q: question\n\nA: answer" validate:"required"`
}

// DeckDetail is the full deck response type (aliased from the domain layer).
type DeckDetail = deckservice.DeckDetail

// DeckListItem is a lightweight item in a list response (aliased from the domain layer).
type DeckListItem = deckservice.DeckListItem

// LintReport is the lint response type (aliased from the domain layer).
type LintReport = deckservice.LintReport

// DeckListResponse wraps paginated deck listings.
type DeckListResponse struct {
	Decks []DeckListItem `json:"decks" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// CardListResponse wraps paginated card listings.
type CardListResponse struct {
	Cards []index.CardRow `json:"cards" validate:"required"`
	Total int             `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// StatsResponse is the collection stats payload.
type StatsResponse = index.Stats

// MediaUploadResponse is returned after a successful media upload.
type MediaUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/media/diagram.png" validate:"required"`
}
