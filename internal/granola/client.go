// Package granola implements the HTTP client for the Granola API.
package granola

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/muninn/internal/models"
)

// DefaultBaseURL is the production Granola API endpoint.
const DefaultBaseURL = "https://api.granola.ai"

// TokenSource supplies bearer tokens for API requests.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the Granola API. All endpoints are POST with a JSON
// body and bearer authentication.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New creates a Client. An empty baseURL selects the production API.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// DocumentsResponse is the payload of POST /v2/get-documents.
type DocumentsResponse struct {
	Docs []models.Document `json:"docs"`
}

type documentsRequest struct {
	Limit                  int  `json:"limit"`
	Offset                 int  `json:"offset"`
	IncludeLastViewedPanel bool `json:"include_last_viewed_panel"`
}

// GetDocuments fetches a page of meeting documents. Every returned
// document is validated; a document the schema cannot account for fails
// the whole call rather than flowing through half-typed.
func (c *Client) GetDocuments(ctx context.Context, limit, offset int, includePanel bool) (*DocumentsResponse, error) {
	payload := documentsRequest{Limit: limit, Offset: offset, IncludeLastViewedPanel: includePanel}

	var resp DocumentsResponse
	if err := c.post(ctx, "/v2/get-documents", payload, &resp); err != nil {
		return nil, err
	}
	for _, doc := range resp.Docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("granola: invalid document in response: %w", err)
		}
	}
	return &resp, nil
}

type transcriptRequest struct {
	DocumentID string `json:"document_id"`
}

// GetTranscript fetches the raw transcript segments for a document,
// ordered by recording time.
func (c *Client) GetTranscript(ctx context.Context, documentID string) ([]models.TranscriptSegment, error) {
	var segments []models.TranscriptSegment
	if err := c.post(ctx, "/v1/get-document-transcript", transcriptRequest{DocumentID: documentID}, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("granola: get token: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("granola: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("granola: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("granola: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("granola: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("granola: decode %s response: %w", path, err)
	}
	return nil
}
