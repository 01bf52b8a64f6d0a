// Package affgate is a small Go client for the affiliate gateway's HTTP
// surface. It decodes the uniform response envelope and surfaces gateway
// failures as typed errors.
package affgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrUnauthorized = errors.New("gateway rejected the API key")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrGateway      = errors.New("gateway returned an error")
)

// Envelope mirrors the gateway's response shape.
type Envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata Metadata        `json:"metadata"`
	Error    *ErrorInfo      `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	RequestID    string `json:"request_id,omitempty"`
	CacheHit     bool   `json:"cache_hit"`
	MockMode     bool   `json:"mock_mode"`
	ProcessingMS int64  `json:"processing_ms"`
	APIError     string `json:"api_error,omitempty"`
}

// ErrorInfo is the error descriptor inside a failure envelope.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// SearchRequest holds the parameters for a product search.
type SearchRequest struct {
	Keywords       string `json:"keywords"`
	CategoryIDs    string `json:"category_ids,omitempty"`
	PageNo         int    `json:"page_no,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
	TargetCurrency string `json:"target_currency,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Sort           string `json:"sort,omitempty"`
}

// LinkRequest holds the parameters for affiliate link generation.
type LinkRequest struct {
	SourceValues      []string `json:"source_values"`
	PromotionLinkType *int     `json:"promotion_link_type,omitempty"`
}

// Client talks to a running gateway instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sets the X-API-Key header on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchProducts calls POST /api/v1/products/search.
func (c *Client) SearchProducts(ctx context.Context, req SearchRequest) (*Envelope, error) {
	return c.postJSON(ctx, "/api/v1/products/search", req)
}

// GetProduct calls GET /api/v1/products/{id}.
func (c *Client) GetProduct(ctx context.Context, productID string, query url.Values) (*Envelope, error) {
	path := "/api/v1/products/" + url.PathEscape(productID)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.get(ctx, path)
}

// HotProducts calls GET /api/v1/products/hot.
func (c *Client) HotProducts(ctx context.Context, query url.Values) (*Envelope, error) {
	path := "/api/v1/products/hot"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.get(ctx, path)
}

// ListCategories calls GET /api/v1/categories.
func (c *Client) ListCategories(ctx context.Context) (*Envelope, error) {
	return c.get(ctx, "/api/v1/categories")
}

// GenerateLinks calls POST /api/v1/affiliate/links.
func (c *Client) GenerateLinks(ctx context.Context, req LinkRequest) (*Envelope, error) {
	return c.postJSON(ctx, "/api/v1/affiliate/links", req)
}

func (c *Client) get(ctx context.Context, path string) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Envelope, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	if !envelope.Success {
		return &envelope, c.errorFor(resp.StatusCode, envelope.Error)
	}
	return &envelope, nil
}

// errorFor maps a failure envelope to a sentinel so callers can branch with
// errors.Is. The envelope is still returned alongside the error.
func (c *Client) errorFor(status int, info *ErrorInfo) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if info != nil {
		return fmt.Errorf("%w: %s: %s", ErrGateway, info.Code, info.Message)
	}
	return fmt.Errorf("%w: status %d", ErrGateway, status)
}
