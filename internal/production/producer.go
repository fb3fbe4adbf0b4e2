package production

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthurelgindell/storyreel/internal/assembly"
	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/providers/videogen"
	"github.com/arthurelgindell/storyreel/internal/render"
	"github.com/arthurelgindell/storyreel/internal/storage"
)

// Progress checkpoints. Matching advances linearly between its start and end
// values as scenes resolve; assembling holds a single checkpoint until the
// render finishes.
const (
	progressMatchingStart = 0.1
	progressMatchingEnd   = 0.8
	progressAssembling    = 0.85
)

// Resolver assigns a clip to one scene, mutating its resolution fields.
type Resolver interface {
	Resolve(ctx context.Context, sb *domain.Storyboard, scene *domain.Scene) (*domain.ResolvedAsset, error)
}

// ResolverFactory builds a resolver for one job run. The onGenerate callback
// fires when a scene enters the generation path so the job can surface the
// generating sub-phase.
type ResolverFactory func(onGenerate func(sceneID string)) Resolver

// Producer drives a production job from pending to a terminal state. One
// Producer serves many jobs; each Run gets its own resolver.
type Producer struct {
	storyboards domain.StoryboardRepository
	jobs        domain.ProductionJobRepository
	matches     domain.MatchRepository
	newResolver ResolverFactory
	planner     *assembly.Planner
	renderer    render.Renderer
	store       *storage.FileStore
	gen         videogen.Generator
	logger      zerolog.Logger
}

// Options bundles the producer's collaborators.
type Options struct {
	Storyboards domain.StoryboardRepository
	Jobs        domain.ProductionJobRepository
	Matches     domain.MatchRepository
	NewResolver ResolverFactory
	Planner     *assembly.Planner
	Renderer    render.Renderer
	Store       *storage.FileStore
	Gen         videogen.Generator
	Logger      zerolog.Logger
}

func NewProducer(opts Options) *Producer {
	return &Producer{
		storyboards: opts.Storyboards,
		jobs:        opts.Jobs,
		matches:     opts.Matches,
		newResolver: opts.NewResolver,
		planner:     opts.Planner,
		renderer:    opts.Renderer,
		store:       opts.Store,
		gen:         opts.Gen,
		logger:      opts.Logger,
	}
}

// Start creates a pending job for the storyboard. The generation service must
// be healthy up front: a sick generator refuses the whole production rather
// than failing it mid-flight, and no job row is written.
func (p *Producer) Start(ctx context.Context, storyboardID string) (*domain.ProductionJob, error) {
	sb, err := p.storyboards.GetByID(ctx, storyboardID)
	if err != nil {
		return nil, err
	}
	if len(sb.Scenes) == 0 {
		return nil, fmt.Errorf("%w: storyboard %s has no scenes", domain.ErrValidation, sb.ID)
	}
	if err := p.gen.Healthy(ctx); err != nil {
		return nil, fmt.Errorf("%w: generation service: %v", domain.ErrUnavailable, err)
	}

	now := time.Now().UTC()
	job := &domain.ProductionJob{
		ID:           uuid.NewString(),
		StoryboardID: sb.ID,
		Status:       domain.JobPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	p.logger.Info().Str("job_id", job.ID).Str("storyboard_id", sb.ID).Msg("production: job queued")
	return job, nil
}

// Run executes one claimed job to a terminal state. Scene resolutions and
// match history written before a failure are kept; there is no rollback.
func (p *Producer) Run(ctx context.Context, job *domain.ProductionJob) error {
	if job.Status.IsTerminal() {
		return nil
	}

	sb, err := p.storyboards.GetByID(ctx, job.StoryboardID)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	if err := p.transition(ctx, job, domain.JobMatching, progressMatchingStart); err != nil {
		return p.fail(ctx, job, err)
	}

	resolver := p.newResolver(func(sceneID string) {
		p.markGenerating(ctx, job, sceneID)
	})
	prior := p.priorResolutions(ctx, sb.ID)

	resolved := make([]domain.ResolvedAsset, 0, len(sb.Scenes))
	total := len(sb.Scenes)
	for i := range sb.Scenes {
		scene := &sb.Scenes[i]

		if prev, ok := prior[scene.ID]; ok && scene.Resolved() {
			resolved = append(resolved, prev)
			if err := p.advanceMatching(ctx, job, i+1, total); err != nil {
				return p.fail(ctx, job, err)
			}
			continue
		}

		res, err := resolver.Resolve(ctx, sb, scene)
		if err != nil {
			return p.fail(ctx, job, fmt.Errorf("scene %s: %w", scene.ID, err))
		}
		if err := p.matches.Save(ctx, sb.ID, res); err != nil {
			return p.fail(ctx, job, err)
		}
		if err := p.storyboards.UpdateScenes(ctx, sb); err != nil {
			return p.fail(ctx, job, err)
		}
		resolved = append(resolved, *res)
		if err := p.advanceMatching(ctx, job, i+1, total); err != nil {
			return p.fail(ctx, job, err)
		}
	}

	if err := p.transition(ctx, job, domain.JobAssembling, progressAssembling); err != nil {
		return p.fail(ctx, job, err)
	}

	outputPath := p.store.FullPath(fmt.Sprintf("rendered/%s.mp4", job.ID))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return p.fail(ctx, job, fmt.Errorf("%w: output dir: %v", domain.ErrRenderFailed, err))
	}
	plan, err := p.planner.BuildPlan(resolved, sb.Scenes, sb.Width, sb.Height, sb.FPS, outputPath)
	if err != nil {
		return p.fail(ctx, job, err)
	}
	if err := p.renderer.Render(ctx, plan); err != nil {
		return p.fail(ctx, job, err)
	}

	job.OutputPath = outputPath
	if err := p.transition(ctx, job, domain.JobCompleted, 1.0); err != nil {
		return p.fail(ctx, job, err)
	}
	p.logger.Info().Str("job_id", job.ID).Str("output", outputPath).Msg("production: job completed")
	return nil
}

// priorResolutions loads match history keyed by scene id so already resolved
// scenes skip matching on a re-run. A read failure only forfeits the reuse.
func (p *Producer) priorResolutions(ctx context.Context, storyboardID string) map[string]domain.ResolvedAsset {
	history, err := p.matches.ListByStoryboard(ctx, storyboardID)
	if err != nil {
		p.logger.Warn().Err(err).Str("storyboard_id", storyboardID).Msg("production: match history read failed")
		return nil
	}
	prior := make(map[string]domain.ResolvedAsset, len(history))
	for _, res := range history {
		prior[res.SceneID] = res
	}
	return prior
}

func (p *Producer) advanceMatching(ctx context.Context, job *domain.ProductionJob, done, total int) error {
	progress := progressMatchingStart +
		(progressMatchingEnd-progressMatchingStart)*float64(done)/float64(total)
	return p.transition(ctx, job, domain.JobMatching, progress)
}

// markGenerating flips the job into its generating sub-phase. Best effort:
// the scene outcome, not this status write, decides the job's fate.
func (p *Producer) markGenerating(ctx context.Context, job *domain.ProductionJob, sceneID string) {
	if err := p.transition(ctx, job, domain.JobGenerating, job.Progress); err != nil {
		p.logger.Warn().Err(err).Str("job_id", job.ID).Str("scene_id", sceneID).Msg("production: generating status write failed")
	}
}

func (p *Producer) transition(ctx context.Context, job *domain.ProductionJob, to domain.JobStatus, progress float64) error {
	if !CanTransition(job.Status, to) {
		return fmt.Errorf("%w: job %s cannot move from %s to %s", domain.ErrValidation, job.ID, job.Status, to)
	}
	job.Status = to
	job.Progress = progress
	job.UpdatedAt = time.Now().UTC()
	return p.jobs.Update(ctx, job)
}

// fail records the terminal failure with the causing error verbatim and
// returns that error. Progress stays where it was.
func (p *Producer) fail(ctx context.Context, job *domain.ProductionJob, cause error) error {
	job.Status = domain.JobFailed
	job.ErrorMessage = cause.Error()
	job.UpdatedAt = time.Now().UTC()
	if err := p.jobs.Update(ctx, job); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("production: failure status write failed")
	}
	p.logger.Error().Err(cause).Str("job_id", job.ID).Msg("production: job failed")
	return cause
}
