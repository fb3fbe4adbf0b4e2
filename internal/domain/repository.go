package domain

import "context"

// StoryboardRepository defines persistence for storyboards.
type StoryboardRepository interface {
	Create(ctx context.Context, sb *Storyboard) error
	GetByID(ctx context.Context, id string) (*Storyboard, error)
	// UpdateScenes rewrites only the per-scene resolution fields; scene count
	// and order never change after creation.
	UpdateScenes(ctx context.Context, sb *Storyboard) error
}

// ProductionJobRepository defines persistence for production jobs.
type ProductionJobRepository interface {
	Create(ctx context.Context, job *ProductionJob) error
	GetByID(ctx context.Context, id string) (*ProductionJob, error)
	Update(ctx context.Context, job *ProductionJob) error
	ClaimQueued(ctx context.Context) (*ProductionJob, error)
}

// MatchRepository records per-scene resolution history. History persists even
// when the enclosing job fails.
type MatchRepository interface {
	Save(ctx context.Context, storyboardID string, resolved *ResolvedAsset) error
	ListByStoryboard(ctx context.Context, storyboardID string) ([]ResolvedAsset, error)
}

// GeneratedAssetRepository records clips produced by the generation service.
type GeneratedAssetRepository interface {
	Save(ctx context.Context, rec *GeneratedAssetRecord) error
}
