// Package embedding wraps the OpenAI embeddings API behind the small surface
// the matching pipeline needs: text in, fixed-length vector out.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

// Embedder produces a fixed-dimension vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options controls how the embedding client is configured.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls the OpenAI embeddings endpoint.
type Client struct {
	api   openai.Client
	model string
}

// NewClient constructs an embedding client with sane defaults.
func NewClient(opts Options) *Client {
	clientOpts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(opts.APIKey))}
	if strings.TrimSpace(opts.BaseURL) != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	model := opts.Model
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	return &Client{api: openai.NewClient(clientOpts...), model: model}
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", domain.ErrCandidateFetch, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embed: empty response", domain.ErrCandidateFetch)
	}
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

var _ Embedder = (*Client)(nil)
