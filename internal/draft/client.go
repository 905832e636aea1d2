package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotFound means the server has no such CV for this user.
	ErrNotFound = errors.New("cv not found")
	// ErrUnauthorized means the session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")
)

// API is the slice of the CV service the draft controller needs.
type API interface {
	GetCV(ctx context.Context, id string) (map[string]any, error)
	CreateCV(ctx context.Context, doc map[string]any) (map[string]any, error)
	UpdateCV(ctx context.Context, id string, doc map[string]any) (map[string]any, error)
}

// Client talks to the CV backend over HTTP with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Client. baseURL points at the API root, e.g.
// "http://localhost:8080/api/v1".
func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCV fetches the authoritative copy of a CV.
func (c *Client) GetCV(ctx context.Context, id string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, "/cv/"+id, nil)
}

// CreateCV inserts a new CV and returns the server copy.
func (c *Client) CreateCV(ctx context.Context, doc map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, "/cv", doc)
}

// UpdateCV persists the document and returns the server copy.
func (c *Client) UpdateCV(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, "/cv/"+id, doc)
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("cv api: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		CV map[string]any `json:"cv"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("cv api: decode response: %w", err)
	}
	if envelope.CV == nil {
		return nil, fmt.Errorf("cv api: response missing cv")
	}
	return envelope.CV, nil
}
