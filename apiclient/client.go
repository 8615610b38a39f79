// Package apiclient talks to the carfinder backend: the search endpoint and
// the notes API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carfinder/models"
)

// DefaultTimeout covers a full multi-source search.
const DefaultTimeout = 90 * time.Second

// FallbackError is shown when the server reports failure without a message.
const FallbackError = "Unknown error occurred"

// APIError is a failure reported by the server through `success: false`.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Search posts the form to /api/search.
func (c *Client) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	status, err := c.do(ctx, http.MethodPost, "/api/search", req, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiError(status, resp.Error)
	}
	return &resp, nil
}

// ListNotes fetches every note from /api/notes.
func (c *Client) ListNotes(ctx context.Context) ([]models.Lead, error) {
	var resp models.NotesResponse
	status, err := c.do(ctx, http.MethodGet, "/api/notes", nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiError(status, resp.Error)
	}
	return resp.Notes, nil
}

// SaveNote upserts a note keyed by its URL and returns the stored note when
// the server echoes it.
func (c *Client) SaveNote(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	var resp models.Result
	status, err := c.do(ctx, http.MethodPost, "/api/notes", in, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiError(status, resp.Error)
	}
	return resp.Note, nil
}

// DeleteNote deletes the note for url.
func (c *Client) DeleteNote(ctx context.Context, url string) error {
	var resp models.Result
	status, err := c.do(ctx, http.MethodDelete, "/api/notes", models.DeleteNoteRequest{URL: url}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return apiError(status, resp.Error)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: invalid response: %w", method, path, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func apiError(status int, msg string) error {
	if msg == "" {
		msg = FallbackError
	}
	return &APIError{StatusCode: status, Message: msg}
}
