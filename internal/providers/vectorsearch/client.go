// Package vectorsearch is a typed HTTP client for the asset search service.
// The service takes an embedding plus optional filters and returns ranked
// candidate asset records.
package vectorsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

// Searcher finds cataloged assets near an embedding.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)
	// Upsert writes a new asset record with its embedding into the catalog.
	Upsert(ctx context.Context, asset *domain.CandidateAsset) error
}

// SearchRequest describes one nearest-neighbour query.
type SearchRequest struct {
	Vector []float32
	// Kind optionally restricts results to one media kind.
	Kind  domain.MediaKind
	Limit int
}

// Hit pairs a candidate record with its raw similarity as ranked by the
// search service. Order is the service's order; re-scoring happens upstream.
type Hit struct {
	Asset      domain.CandidateAsset
	Similarity float64
}

// Options controls how the search client is configured.
type Options struct {
	BaseURL    string
	Collection string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to the vector search service over REST.
type Client struct {
	baseURL    string
	collection string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a search client. A nil HTTP client gets a reusable one
// with a sensible timeout.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	collection := opts.Collection
	if collection == "" {
		collection = "assets"
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		collection: collection,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
	}
}

type searchPayload struct {
	Vector      []float32      `json:"vector"`
	Limit       int            `json:"limit"`
	WithVectors bool           `json:"with_vectors"`
	Filter      map[string]any `json:"filter,omitempty"`
}

type assetRecord struct {
	ID        string    `json:"id"`
	Score     float64   `json:"score"`
	Vector    []float32 `json:"vector,omitempty"`
	Path      string    `json:"path"`
	Tags      []string  `json:"tags"`
	Style     string    `json:"style"`
	UseCase   string    `json:"use_case"`
	MediaKind string    `json:"media_kind"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Duration  float64   `json:"duration"`
	FPS       float64   `json:"fps"`
}

type searchResponse struct {
	Results []assetRecord `json:"results"`
}

type upsertPayload struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Search returns ranked candidates for the given embedding.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	payload := searchPayload{Vector: req.Vector, Limit: limit, WithVectors: true}
	if req.Kind != "" {
		payload.Filter = map[string]any{"media_kind": string(req.Kind)}
	}

	var resp searchResponse
	path := fmt.Sprintf("/collections/%s/search", url.PathEscape(c.collection))
	if err := c.post(ctx, path, payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: search: %v", domain.ErrCandidateFetch, err)
	}

	hits := make([]Hit, 0, len(resp.Results))
	for _, rec := range resp.Results {
		hits = append(hits, Hit{
			Asset: domain.CandidateAsset{
				ID:        rec.ID,
				Path:      rec.Path,
				Embedding: rec.Vector,
				Tags:      rec.Tags,
				Style:     rec.Style,
				UseCase:   rec.UseCase,
				Kind:      domain.MediaKind(rec.MediaKind),
				Width:     rec.Width,
				Height:    rec.Height,
				Duration:  rec.Duration,
				FPS:       rec.FPS,
			},
			Similarity: rec.Score,
		})
	}
	return hits, nil
}

// Upsert writes an asset record into the catalog.
func (c *Client) Upsert(ctx context.Context, asset *domain.CandidateAsset) error {
	payload := upsertPayload{
		ID:     asset.ID,
		Vector: asset.Embedding,
		Payload: map[string]any{
			"path":       asset.Path,
			"tags":       asset.Tags,
			"style":      asset.Style,
			"use_case":   asset.UseCase,
			"media_kind": string(asset.Kind),
			"width":      asset.Width,
			"height":     asset.Height,
			"duration":   asset.Duration,
			"fps":        asset.FPS,
		},
	}
	path := fmt.Sprintf("/collections/%s/points", url.PathEscape(c.collection))
	if err := c.post(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("%w: upsert: %v", domain.ErrCatalogIngest, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Searcher = (*Client)(nil)
