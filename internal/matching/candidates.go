// Package matching resolves storyboard scenes to concrete clips, either by
// matching cataloged assets or by driving the generation service.
package matching

import (
	"context"
	"strings"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/providers/embedding"
	"github.com/arthurelgindell/storyreel/internal/providers/vectorsearch"
)

// DefaultCandidateLimit is the top-K window requested from the search service.
const DefaultCandidateLimit = 20

// CandidateSource wraps the embedding and search collaborators into a single
// call: scene in, ranked candidates plus the query embedding out.
type CandidateSource struct {
	embedder embedding.Embedder
	searcher vectorsearch.Searcher
	limit    int
}

// NewCandidateSource wires the two collaborators together.
func NewCandidateSource(embedder embedding.Embedder, searcher vectorsearch.Searcher) *CandidateSource {
	return &CandidateSource{embedder: embedder, searcher: searcher, limit: DefaultCandidateLimit}
}

// Fetch embeds the scene's query text and runs one nearest-neighbour search.
// Candidates keep the search service's order; sorting by composite score
// happens after scoring. Errors propagate so the caller can decide to treat
// the scene as unmatched.
func (s *CandidateSource) Fetch(ctx context.Context, scene *domain.Scene) ([]float32, []vectorsearch.Hit, error) {
	query := QueryText(scene)
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	req := vectorsearch.SearchRequest{Vector: vec, Limit: s.limit}
	if scene.Duration > 0 {
		req.Kind = domain.MediaVideo
	}
	hits, err := s.searcher.Search(ctx, req)
	if err != nil {
		return vec, nil, err
	}
	return vec, hits, nil
}

// QueryText builds the scene's search query from its description, keywords
// and style hint.
func QueryText(scene *domain.Scene) string {
	parts := make([]string, 0, 3)
	if scene.Description != "" {
		parts = append(parts, scene.Description)
	}
	if len(scene.Keywords) > 0 {
		parts = append(parts, strings.Join(scene.Keywords, " "))
	}
	if scene.StyleHint != "" {
		parts = append(parts, scene.StyleHint)
	}
	return strings.Join(parts, " ")
}
