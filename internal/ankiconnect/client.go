// Package ankiconnect is a minimal client for the AnkiConnect HTTP API
// (version 6). It covers the handful of actions needed to cross-check deck
// and note ids against a running Anki instance and to push media files.
package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultURL is where AnkiConnect listens out of the box.
const DefaultURL = "http://127.0.0.1:8765"

const apiVersion = 6

// Client talks to a single AnkiConnect endpoint.
type Client struct {
	url  string
	http *http.Client
}

// New creates a client for the given endpoint URL. An empty url uses
// DefaultURL.
func New(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Invoke performs one AnkiConnect action and unmarshals the result into out.
// A nil out discards the result.
func (c *Client) Invoke(ctx context.Context, action string, params, out any) error {
	body, err := json.Marshal(request{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("ankiconnect: marshal %s: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ankiconnect: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ankiconnect: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ankiconnect: %s: unexpected status %d", action, resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("ankiconnect: decode %s response: %w", action, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("ankiconnect: %s: %s", action, *envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("ankiconnect: unmarshal %s result: %w", action, err)
		}
	}
	return nil
}

// DeckNamesAndIDs returns every deck known to Anki, keyed by name.
func (c *Client) DeckNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	var out map[string]int64
	if err := c.Invoke(ctx, "deckNamesAndIds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindNotes returns the note ids matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var out []int64
	params := map[string]string{"query": query}
	if err := c.Invoke(ctx, "findNotes", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldValue holds one field of a remote note.
type FieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// RemoteNote is the notesInfo representation of a note.
type RemoteNote struct {
	NoteID    int64                 `json:"noteId"`
	ModelName string                `json:"modelName"`
	Fields    map[string]FieldValue `json:"fields"`
	Tags      []string              `json:"tags"`
}

// Field returns the raw value of a named field, or "" when absent.
func (n *RemoteNote) Field(name string) string {
	return n.Fields[name].Value
}

// FieldValues flattens the note's fields to name → value.
func (n *RemoteNote) FieldValues() map[string]string {
	out := make(map[string]string, len(n.Fields))
	for name, fv := range n.Fields {
		out[name] = fv.Value
	}
	return out
}

// NotesInfo fetches full note data for the given ids.
func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) ([]RemoteNote, error) {
	var out []RemoteNote
	params := map[string]any{"notes": noteIDs}
	if err := c.Invoke(ctx, "notesInfo", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreMediaFile uploads base64-encoded data under the given filename and
// returns the filename Anki stored it as.
func (c *Client) StoreMediaFile(ctx context.Context, filename, dataB64 string) (string, error) {
	var out string
	params := map[string]string{"filename": filename, "data": dataB64}
	if err := c.Invoke(ctx, "storeMediaFile", params, &out); err != nil {
		return "", err
	}
	return out, nil
}
