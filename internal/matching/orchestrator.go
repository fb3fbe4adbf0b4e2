package matching

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/providers/embedding"
	"github.com/arthurelgindell/storyreel/internal/providers/vectorsearch"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/scoring"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

const (
	// PollInterval is the fixed wait between generation status checks.
	PollInterval = 5 * time.Second
	// GenerationTimeout bounds one scene's generation job.
	GenerationTimeout = 10 * time.Minute

	promptQualitySuffix = "high quality, detailed, smooth motion"
	negativePrompt      = "blurry, distorted, low quality, watermark, text overlay"
)

// Orchestrator resolves one scene at a time: match an existing asset when the
// composite score clears the floor, otherwise generate a new clip.
type Orchestrator struct {
	source   *CandidateSource
	engine   *scoring.Engine
	gen      videogen.Generator
	store    *storage.FileStore
	embedder embedding.Embedder
	searcher vectorsearch.Searcher
	assets   domain.GeneratedAssetRepository
	clock    Clock
	logger   zerolog.Logger

	pollInterval time.Duration
	genTimeout   time.Duration

	// OnGenerate, when set, is invoked once before a scene enters the
	// generation path so the enclosing job can surface the sub-phase.
	OnGenerate func(sceneID string)
}

// OrchestratorOptions bundles the orchestrator's collaborators.
type OrchestratorOptions struct {
	Source   *CandidateSource
	Engine   *scoring.Engine
	Gen      videogen.Generator
	Store    *storage.FileStore
	Embedder embedding.Embedder
	Searcher vectorsearch.Searcher
	Assets   domain.GeneratedAssetRepository
	Clock    Clock
	Logger   zerolog.Logger
}

// NewOrchestrator constructs an orchestrator with production poll timings.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	return &Orchestrator{
		source:       opts.Source,
		engine:       opts.Engine,
		gen:          opts.Gen,
		store:        opts.Store,
		embedder:     opts.Embedder,
		searcher:     opts.Searcher,
		assets:       opts.Assets,
		clock:        clock,
		logger:       opts.Logger,
		pollInterval: PollInterval,
		genTimeout:   GenerationTimeout,
	}
}

type scoredCandidate struct {
	hit   vectorsearch.Hit
	score scoring.Vector
}

// Resolve assigns a clip to the scene. The scene's resolution fields are
// updated in place; the returned ResolvedAsset is immutable from here on.
func (o *Orchestrator) Resolve(ctx context.Context, sb *domain.Storyboard, scene *domain.Scene) (*domain.ResolvedAsset, error) {
	candidates := o.scoredCandidates(ctx, scene)

	if len(candidates) > 0 {
		top := candidates[0]
		if top.score.Composite >= o.engine.Config().CompositeFloor {
			resolved := &domain.ResolvedAsset{
				SceneID:    scene.ID,
				AssetID:    top.hit.Asset.ID,
				LocalPath:  top.hit.Asset.Path,
				Source:     domain.SourceExisting,
				Confidence: top.score.Composite,
				Review:     top.score.Review,
			}
			applyResolution(scene, resolved)
			o.logger.Info().
				Str("scene_id", scene.ID).
				Str("asset_id", resolved.AssetID).
				Float64("composite", resolved.Confidence).
				Bool("review", resolved.Review).
				Msg("matching: scene matched to existing asset")
			return resolved, nil
		}
	}

	return o.generate(ctx, sb, scene)
}

// ManualResolution applies an operator override. It idempotently replaces any
// prior resolution with a manual one at full confidence.
func ManualResolution(scene *domain.Scene, assetID, localPath string) *domain.ResolvedAsset {
	resolved := &domain.ResolvedAsset{
		SceneID:    scene.ID,
		AssetID:    assetID,
		LocalPath:  localPath,
		Source:     domain.SourceManual,
		Confidence: 1.0,
		Review:     false,
	}
	applyResolution(scene, resolved)
	return resolved
}

// scoredCandidates fetches, scores, filters and sorts candidates. A fetch
// failure leaves the scene unmatched (empty slice) rather than aborting: the
// generation path still applies.
func (o *Orchestrator) scoredCandidates(ctx context.Context, scene *domain.Scene) []scoredCandidate {
	queryVec, hits, err := o.source.Fetch(ctx, scene)
	if err != nil {
		o.logger.Warn().Err(err).Str("scene_id", scene.ID).Msg("matching: candidate fetch failed, treating scene as unmatched")
		return nil
	}

	floor := o.engine.Config().SemanticFloor
	scored := make([]scoredCandidate, 0, len(hits))
	for _, hit := range hits {
		asset := hit.Asset
		vec := o.engine.Score(scene, &asset, queryVec)
		if vec.Semantic < floor {
			continue
		}
		scored = append(scored, scoredCandidate{hit: hit, score: vec})
	}
	// Stable keeps the search service's order on composite ties: first seen wins.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score.Composite > scored[j].score.Composite
	})
	return scored
}

func (o *Orchestrator) generate(ctx context.Context, sb *domain.Storyboard, scene *domain.Scene) (*domain.ResolvedAsset, error) {
	if o.OnGenerate != nil {
		o.OnGenerate(scene.ID)
	}

	fps := float64(sb.FPS)
	if fps <= 0 {
		fps = videogen.DefaultFPS
	}
	frames := int(scene.Duration * fps)
	if frames > videogen.MaxFrames {
		frames = videogen.MaxFrames
	}
	if frames < 1 {
		frames = 1
	}

	req := videogen.Request{
		Prompt:         generationPrompt(scene),
		NegativePrompt: negativePrompt,
		Seed:           sceneSeed(scene.ID),
		Width:          videogen.DefaultWidth,
		Height:         videogen.DefaultHeight,
		NumFrames:      frames,
		FrameRate:      fps,
		Steps:          videogen.DefaultSteps,
		GuidanceScale:  videogen.DefaultGuidance,
	}

	jobID, err := o.gen.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %v", domain.ErrGenerationFailed, err)
	}
	o.logger.Info().Str("scene_id", scene.ID).Str("gen_job_id", jobID).Int("frames", frames).Msg("matching: generation submitted")

	status, err := o.awaitGeneration(ctx, jobID)
	if err != nil {
		return nil, err
	}

	data, err := o.gen.Download(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", domain.ErrGenerationFailed, err)
	}
	key := fmt.Sprintf("generated/%s/%s.mp4", sb.ID, scene.ID)
	savedKey, err := o.store.Write(ctx, key, data)
	if err != nil {
		return nil, fmt.Errorf("%w: store: %v", domain.ErrGenerationFailed, err)
	}
	localPath := o.store.FullPath(savedKey)

	resolved := &domain.ResolvedAsset{
		SceneID:    scene.ID,
		AssetID:    jobID,
		LocalPath:  localPath,
		Source:     domain.SourceGenerated,
		Confidence: 1.0,
		Review:     false,
	}
	applyResolution(scene, resolved)
	o.logger.Info().
		Str("scene_id", scene.ID).
		Str("gen_job_id", jobID).
		Str("output_url", status.OutputURL).
		Msg("matching: generation completed")

	o.ingestGenerated(scene, sb, resolved, savedKey, frames, fps)
	return resolved, nil
}

// awaitGeneration polls the generation job at a fixed interval until it
// terminates or the timeout elapses. The only cancel signal is the timeout.
func (o *Orchestrator) awaitGeneration(ctx context.Context, jobID string) (videogen.JobStatus, error) {
	deadline := o.clock.Now().Add(o.genTimeout)
	for {
		status, err := o.gen.Status(ctx, jobID)
		if err != nil {
			return videogen.JobStatus{}, fmt.Errorf("%w: status: %v", domain.ErrGenerationFailed, err)
		}
		switch status.Status {
		case videogen.StateCompleted:
			return status, nil
		case videogen.StateFailed:
			return videogen.JobStatus{}, fmt.Errorf("%w: %s", domain.ErrGenerationFailed, status.Error)
		}
		if !o.clock.Now().Add(o.pollInterval).Before(deadline) {
			return videogen.JobStatus{}, fmt.Errorf("%w: job %s still %s after %s", domain.ErrGenerationTimeout, jobID, status.Status, o.genTimeout)
		}
		if err := o.clock.Sleep(ctx, o.pollInterval); err != nil {
			return videogen.JobStatus{}, fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
		}
	}
}

// ingestGenerated catalogs the new clip as a detached best-effort side
// effect. Failures are logged and never reach the caller.
func (o *Orchestrator) ingestGenerated(scene *domain.Scene, sb *domain.Storyboard, resolved *domain.ResolvedAsset, storageKey string, frames int, fps float64) {
	sceneCopy := *scene
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if o.assets != nil {
			rec := &domain.GeneratedAssetRecord{
				ID:         resolved.AssetID,
				SceneID:    sceneCopy.ID,
				StorageKey: storageKey,
				Width:      videogen.DefaultWidth,
				Height:     videogen.DefaultHeight,
				Duration:   float64(frames) / fps,
				FPS:        fps,
				Prompt:     generationPrompt(&sceneCopy),
			}
			if err := o.assets.Save(ctx, rec); err != nil {
				o.logger.Warn().Err(err).Str("scene_id", sceneCopy.ID).Msg("matching: generated asset record write failed")
			}
		}

		if o.embedder == nil || o.searcher == nil {
			return
		}
		vec, err := o.embedder.Embed(ctx, QueryText(&sceneCopy))
		if err != nil {
			o.logger.Warn().Err(err).Str("scene_id", sceneCopy.ID).Msg("matching: catalog embedding failed")
			return
		}
		cand := &domain.CandidateAsset{
			ID:        resolved.AssetID,
			Path:      resolved.LocalPath,
			Embedding: vec,
			Tags:      sceneCopy.Keywords,
			Style:     sceneCopy.StyleHint,
			UseCase:   sceneCopy.Description,
			Kind:      domain.MediaVideo,
			Width:     videogen.DefaultWidth,
			Height:    videogen.DefaultHeight,
			Duration:  float64(frames) / fps,
			FPS:       fps,
		}
		if err := o.searcher.Upsert(ctx, cand); err != nil {
			o.logger.Warn().Err(err).Str("scene_id", sceneCopy.ID).Msg("matching: catalog upsert failed")
		}
	}()
}

func applyResolution(scene *domain.Scene, resolved *domain.ResolvedAsset) {
	scene.MatchedAssetID = resolved.AssetID
	scene.MatchScore = resolved.Confidence
	scene.AssetSource = resolved.Source
	scene.NeedsReview = resolved.Review
}

func generationPrompt(scene *domain.Scene) string {
	parts := []string{scene.Description}
	if scene.StyleHint != "" {
		parts = append(parts, scene.StyleHint)
	}
	if len(scene.Keywords) > 0 {
		parts = append(parts, strings.Join(scene.Keywords, ", "))
	}
	parts = append(parts, promptQualitySuffix)
	return strings.Join(parts, ", ")
}

// sceneSeed derives a stable seed from the scene id so regenerating the same
// scene is reproducible.
func sceneSeed(sceneID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sceneID))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
