// Package scoring decides whether a cataloged asset is good enough for a
// storyboard scene. Scoring is pure computation: the engine holds only its
// configuration and performs no I/O.
package scoring

import (
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

const (
	neutralSemantic = 0.7
	neutralStyle    = 0.5
	neutralUseCase  = 0.5
	neutralDuration = 0.5

	unknownQuality  = 0.3
	durationFloor   = 0.3
	minUseCaseToken = 3

	referenceWidth  = 1920
	referenceHeight = 1080
)

var folder = cases.Fold()

// Vector holds the five sub-scores plus the derived composite and review flag.
// All values lie in [0, 1]. Vectors are ephemeral and recomputed per request.
type Vector struct {
	Semantic  float64
	Style     float64
	UseCase   float64
	Quality   float64
	Duration  float64
	Composite float64
	Review    bool
}

// Engine computes match scores for scene/candidate pairs.
type Engine struct {
	cfg Config
}

// NewEngine constructs an engine around an immutable configuration value.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score rates one candidate against a scene. queryEmbedding is the embedding
// of the scene's query string, shared across all candidates of one round.
func (e *Engine) Score(scene *domain.Scene, cand *domain.CandidateAsset, queryEmbedding []float32) Vector {
	v := Vector{
		Semantic: e.semanticScore(cand, queryEmbedding),
		Style:    styleScore(scene, cand),
		UseCase:  useCaseScore(scene, cand),
		Quality:  qualityScore(cand),
		Duration: durationScore(scene, cand),
	}
	v.Composite = e.cfg.SemanticWeight*v.Semantic +
		e.cfg.StyleWeight*v.Style +
		e.cfg.UseCaseWeight*v.UseCase +
		e.cfg.QualityWeight*v.Quality +
		e.cfg.DurationWeight*v.Duration
	v.Review = v.Composite >= e.cfg.CompositeFloor && v.Composite < e.cfg.ExcellentMatch
	return v
}

func (e *Engine) semanticScore(cand *domain.CandidateAsset, queryEmbedding []float32) float64 {
	if len(cand.Embedding) == 0 {
		return neutralSemantic
	}
	return Cosine(queryEmbedding, cand.Embedding)
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths and
// zero-norm inputs yield 0 rather than an error.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// styleScore measures keyword/tag overlap. Missing style metadata on either
// side is neutral, never a penalty.
func styleScore(scene *domain.Scene, cand *domain.CandidateAsset) float64 {
	sceneTokens := tokenSet(scene.Keywords, scene.StyleHint)
	candTokens := tokenSet(cand.Tags, cand.Style)
	if len(sceneTokens) == 0 || len(candTokens) == 0 {
		return neutralStyle
	}
	matched := 0
	for token := range sceneTokens {
		if _, ok := candTokens[token]; ok {
			matched++
		}
	}
	return clamp01(float64(matched) / float64(len(sceneTokens)))
}

// useCaseScore checks how much of the candidate's use-case text appears in
// the scene's description and keywords. Only tokens longer than three
// characters count; shorter ones are too noisy as substrings.
func useCaseScore(scene *domain.Scene, cand *domain.CandidateAsset) float64 {
	tokens := strings.Fields(folder.String(cand.UseCase))
	if len(tokens) == 0 {
		return neutralUseCase
	}
	haystack := folder.String(scene.Description + " " + strings.Join(scene.Keywords, " "))
	matched := 0
	for _, token := range tokens {
		if len(token) > minUseCaseToken && strings.Contains(haystack, token) {
			matched++
		}
	}
	return clamp01(float64(matched) / float64(len(tokens)))
}

// qualityScore compares candidate pixel count to the 1080p reference.
func qualityScore(cand *domain.CandidateAsset) float64 {
	if cand.Width <= 0 || cand.Height <= 0 {
		return unknownQuality
	}
	ratio := float64(cand.Width*cand.Height) / float64(referenceWidth*referenceHeight)
	if ratio >= 1 {
		return 1
	}
	return ratio
}

// durationScore rewards clips long enough to cover the scene; excess footage
// is trimmable and costs nothing.
func durationScore(scene *domain.Scene, cand *domain.CandidateAsset) float64 {
	if cand.Kind != domain.MediaVideo || cand.Duration <= 0 {
		return neutralDuration
	}
	if cand.Duration >= scene.Duration {
		return 1
	}
	ratio := cand.Duration / scene.Duration
	if ratio < durationFloor {
		return durationFloor
	}
	return ratio
}

func tokenSet(words []string, freeText string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words {
		w = strings.TrimSpace(folder.String(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	for _, w := range strings.Fields(folder.String(freeText)) {
		set[w] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
