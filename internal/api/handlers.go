package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/notetype"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// deckPath extracts the deck path from the URL (everything after /decks/).
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fdeck.md).
func deckPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// badRequestError reports whether err is a client-side content problem
// worth surfacing verbatim: a bad deck name, a duplicate field, or fields
// that match no note type.
func badRequestError(err error) bool {
	var fnErr *storage.InvalidFilenameError
	var dupErr *parser.DuplicateFieldError
	var ntErr *notetype.UnknownNoteTypeError
	return errors.As(err, &fnErr) || errors.As(err, &dupErr) || errors.As(err, &ntErr)
}

// ListDecks handles GET /decks.
//
//	@Summary		List decks with optional pagination
//	@Tags			decks
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated_at, path)
//	@Success		200		{object}	DeckListResponse
//	@Security		BearerAuth
//	@Router			/decks [get]
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")

	items, total, err := h.svc.ListDecks(r.Context(), limit, offset, sort)
	if err != nil {
		slog.Error("list decks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"decks": items,
		"total": total,
	})
}

// GetDeck handles GET /decks/*.
//
//	@Summary		Get a single deck by path
//	@Tags			decks
//	@Produce		json
//	@Param			path	path		string	true	"Deck path"
//	@Success		200		{object}	DeckDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [get]
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	deck, err := h.svc.GetDeck(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get deck failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// CreateDeck handles POST /decks.
//
//	@Summary		Create a new deck from a hierarchical deck name
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDeckRequest	true	"Deck to create"
//	@Success		201		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks [post]
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and content are required"))
		return
	}
	deck, err := h.svc.CreateDeck(r.Context(), req.Name, []byte(req.Content))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("deck already exists"))
		case badRequestError(err):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("create deck failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

// UpdateDeck handles PUT /decks/*.
//
//	@Summary		Update a deck with optimistic concurrency
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Deck path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDeckRequest	true	"Updated content"
//	@Success		200			{object}	DeckDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [put]
func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req UpdateDeckRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	deck, err := h.svc.UpdateDeck(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		case badRequestError(err):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update deck failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /decks/*.
//
//	@Summary		Delete a deck
//	@Tags			decks
//	@Param			path	path	string	true	"Deck path"
//	@Success		204		"Deck deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [delete]
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDeck(r.Context(), path); err != nil {
		slog.Error("delete deck failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lint handles POST /lint.
//
//	@Summary		Parse and validate deck content without saving it
//	@Tags			lint
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LintRequest	true	"Content to lint"
//	@Success		200		{object}	LintReport
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lint [post]
func (h *Handler) Lint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req LintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Lint(r.Context(), []byte(req.Content)))
}

// Search handles GET /search.
//
//	@Summary		Full-text search across cards
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// ListCards handles GET /cards.
//
//	@Summary		List cards across all decks
//	@Tags			cards
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			note_type	query		string	false	"Filter by note type"
//	@Success		200			{object}	CardListResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	noteType := q.Get("note_type")

	cards, total, err := h.svc.ListCards(r.Context(), limit, offset, noteType)
	if err != nil {
		slog.Error("list cards failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"total": total,
	})
}

// Stats handles GET /stats.
//
//	@Summary		Get collection statistics
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
