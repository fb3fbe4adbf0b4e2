package matching

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/providers/vectorsearch"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/scoring"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

type fakeSearcher struct {
	hits    []vectorsearch.Hit
	err     error
	calls   int
	upserts int
}

func (f *fakeSearcher) Search(ctx context.Context, req vectorsearch.SearchRequest) ([]vectorsearch.Hit, error) {
	f.calls++
	return f.hits, f.err
}

func (f *fakeSearcher) Upsert(ctx context.Context, asset *domain.CandidateAsset) error {
	f.upserts++
	return nil
}

type fakeGenerator struct {
	submits  int
	statuses []videogen.JobStatus
	statusAt int
	healthy  error
	data     []byte
}

func (f *fakeGenerator) Submit(ctx context.Context, req videogen.Request) (string, error) {
	f.submits++
	return "gen-1", nil
}

func (f *fakeGenerator) Status(ctx context.Context, jobID string) (videogen.JobStatus, error) {
	if f.statusAt >= len(f.statuses) {
		return videogen.JobStatus{JobID: jobID, Status: videogen.StateProcessing}, nil
	}
	status := f.statuses[f.statusAt]
	f.statusAt++
	return status, nil
}

func (f *fakeGenerator) Download(ctx context.Context, jobID string) ([]byte, error) {
	if f.data == nil {
		return []byte("mp4"), nil
	}
	return f.data, nil
}

func (f *fakeGenerator) Healthy(ctx context.Context) error {
	return f.healthy
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

type fakeAssetRepo struct {
	saved []*domain.GeneratedAssetRecord
}

func (f *fakeAssetRepo) Save(ctx context.Context, rec *domain.GeneratedAssetRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

// candidateWithSemantic returns a hit whose non-semantic sub-scores are all
// maximal against testScene, so composite = 0.5*semantic + 0.5.
func candidateWithSemantic(id string, semantic float64) vectorsearch.Hit {
	return vectorsearch.Hit{
		Asset: domain.CandidateAsset{
			ID:        id,
			Path:      "/catalog/" + id + ".mp4",
			Embedding: []float32{float32(semantic), float32(math.Sqrt(1 - semantic*semantic))},
			Tags:      []string{"forest"},
			UseCase:   "forest",
			Kind:      domain.MediaVideo,
			Width:     1920,
			Height:    1080,
			Duration:  30,
		},
		Similarity: semantic,
	}
}

func testScene() *domain.Scene {
	return &domain.Scene{
		ID:          "scene-1",
		Position:    1,
		Duration:    5,
		Description: "misty forest clearing",
		Keywords:    []string{"forest"},
	}
}

func testStoryboard(scene *domain.Scene) *domain.Storyboard {
	return &domain.Storyboard{
		ID:     "sb-1",
		Title:  "test",
		Scenes: []domain.Scene{*scene},
		Width:  1920,
		Height: 1080,
		FPS:    30,
	}
}

func newTestOrchestrator(t *testing.T, searcher *fakeSearcher, gen *fakeGenerator, clock Clock) *Orchestrator {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	return NewOrchestrator(OrchestratorOptions{
		Source:   NewCandidateSource(embedder, searcher),
		Engine:   scoring.NewEngine(scoring.DefaultConfig()),
		Gen:      gen,
		Store:    store,
		Embedder: embedder,
		Searcher: searcher,
		Assets:   &fakeAssetRepo{},
		Clock:    clock,
		Logger:   zerolog.New(io.Discard),
	})
}

func TestResolveExcellentMatchSkipsReview(t *testing.T) {
	searcher := &fakeSearcher{hits: []vectorsearch.Hit{candidateWithSemantic("a1", 0.9)}}
	gen := &fakeGenerator{}
	o := newTestOrchestrator(t, searcher, gen, &fakeClock{})

	scene := testScene()
	resolved, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Source != domain.SourceExisting {
		t.Fatalf("source = %v, want existing", resolved.Source)
	}
	if resolved.Review {
		t.Fatal("composite 0.95 should not need review")
	}
	if gen.submits != 0 {
		t.Fatalf("generation submitted %d times, want 0", gen.submits)
	}
	if scene.MatchedAssetID != "a1" || scene.AssetSource != domain.SourceExisting {
		t.Fatalf("scene resolution fields not applied: %+v", scene)
	}
}

func TestResolveAcceptableMatchFlagsReview(t *testing.T) {
	// semantic 0.76 clears the 0.72 floor and yields composite 0.88:
	// matched but inside the review band.
	searcher := &fakeSearcher{hits: []vectorsearch.Hit{candidateWithSemantic("a1", 0.76)}}
	gen := &fakeGenerator{}
	o := newTestOrchestrator(t, searcher, gen, &fakeClock{})

	scene := testScene()
	resolved, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Source != domain.SourceExisting {
		t.Fatalf("source = %v, want existing", resolved.Source)
	}
	if !resolved.Review {
		t.Fatal("composite 0.88 should be flagged for review")
	}
	if gen.submits != 0 {
		t.Fatalf("generation submitted %d times, want 0", gen.submits)
	}
}

func TestResolveDropsCandidatesBelowSemanticFloor(t *testing.T) {
	// semantic 0.5 is below the 0.72 floor: never selected, even though
	// every other sub-score is maximal.
	searcher := &fakeSearcher{hits: []vectorsearch.Hit{candidateWithSemantic("low", 0.5)}}
	gen := &fakeGenerator{statuses: []videogen.JobStatus{{Status: videogen.StateCompleted, OutputURL: "/dl/gen-1"}}}
	o := newTestOrchestrator(t, searcher, gen, &fakeClock{})

	scene := testScene()
	resolved, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.AssetID == "low" {
		t.Fatal("candidate below semantic floor was selected")
	}
	if resolved.Source != domain.SourceGenerated {
		t.Fatalf("source = %v, want generated", resolved.Source)
	}
}

func TestResolveGeneratesWhenNoAcceptableCandidate(t *testing.T) {
	// semantic 0.75 clears the floor, but with weak sub-scores the
	// composite lands around 0.60, below the 0.78 acceptance floor.
	searcher := &fakeSearcher{hits: []vectorsearch.Hit{{
		Asset: domain.CandidateAsset{
			ID:        "weak",
			Embedding: []float32{0.75, float32(math.Sqrt(1 - 0.75*0.75))},
			Kind:      domain.MediaImage,
		},
	}}}
	gen := &fakeGenerator{statuses: []videogen.JobStatus{
		{Status: videogen.StateProcessing},
		{Status: videogen.StateCompleted, OutputURL: "/dl/gen-1"},
	}}
	clock := &fakeClock{}
	o := newTestOrchestrator(t, searcher, gen, clock)

	scene := testScene()
	resolved, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Source != domain.SourceGenerated {
		t.Fatalf("source = %v, want generated", resolved.Source)
	}
	if resolved.Confidence != 1.0 || resolved.Review {
		t.Fatalf("generated resolution should be confidence 1.0 without review, got %+v", resolved)
	}
	if gen.submits != 1 {
		t.Fatalf("generation submitted %d times, want exactly 1", gen.submits)
	}
	if searcher.calls != 1 {
		t.Fatalf("search queried %d times, want exactly 1", searcher.calls)
	}
	if resolved.LocalPath == "" {
		t.Fatal("generated clip has no local path")
	}
}

func TestResolveGenerationFailure(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{statuses: []videogen.JobStatus{
		{Status: videogen.StateProcessing},
		{Status: videogen.StateFailed, Error: "cuda out of memory"},
	}}
	o := newTestOrchestrator(t, searcher, gen, &fakeClock{})

	scene := testScene()
	_, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestResolveGenerationTimeout(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{} // never completes
	clock := &fakeClock{}
	o := newTestOrchestrator(t, searcher, gen, clock)

	scene := testScene()
	_, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if !errors.Is(err, domain.ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
	if elapsed := clock.now.Sub(time.Time{}); elapsed > GenerationTimeout {
		t.Fatalf("poll loop overran the timeout: %s", elapsed)
	}
}

func TestResolveCandidateFetchErrorFallsBackToGeneration(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("search unreachable")}
	gen := &fakeGenerator{statuses: []videogen.JobStatus{{Status: videogen.StateCompleted}}}
	o := newTestOrchestrator(t, searcher, gen, &fakeClock{})

	scene := testScene()
	resolved, err := o.Resolve(context.Background(), testStoryboard(scene), scene)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Source != domain.SourceGenerated {
		t.Fatalf("source = %v, want generated after fetch failure", resolved.Source)
	}
}

func TestManualResolutionReplacesPrior(t *testing.T) {
	scene := testScene()
	scene.MatchedAssetID = "old"
	scene.AssetSource = domain.SourceExisting
	scene.MatchScore = 0.8
	scene.NeedsReview = true

	resolved := ManualResolution(scene, "override-1", "/assets/override.mp4")
	if resolved.Source != domain.SourceManual || resolved.Confidence != 1.0 || resolved.Review {
		t.Fatalf("unexpected manual resolution: %+v", resolved)
	}
	if scene.MatchedAssetID != "override-1" || scene.NeedsReview {
		t.Fatalf("scene fields not replaced: %+v", scene)
	}

	// Idempotent: applying the same override again changes nothing.
	again := ManualResolution(scene, "override-1", "/assets/override.mp4")
	if *again != *resolved {
		t.Fatalf("manual resolution not idempotent: %+v vs %+v", again, resolved)
	}
}

func TestSceneSeedIsStable(t *testing.T) {
	if sceneSeed("scene-1") != sceneSeed("scene-1") {
		t.Fatal("seed not stable for equal ids")
	}
	if sceneSeed("scene-1") == sceneSeed("scene-2") {
		t.Fatal("distinct ids should not collide in practice")
	}
	if sceneSeed("scene-1") < 0 {
		t.Fatal("seed must be non-negative")
	}
}
