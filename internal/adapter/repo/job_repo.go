package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/sqlinline"
)

// JobRepositoryPG implements domain.ProductionJobRepository.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.ProductionJob) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertProductionJob,
		job.ID, job.StoryboardID, job.Status, job.Progress, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.ProductionJob, error) {
	return scanJob(r.db.QueryRow(ctx, sqlinline.QGetProductionJob, id))
}

func (r *JobRepositoryPG) Update(ctx context.Context, job *domain.ProductionJob) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateProductionJob,
		job.ID, job.Status, job.Progress, job.OutputPath, job.ErrorMessage, job.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued atomically takes the oldest pending job and moves it to
// matching. Concurrent workers skip each other's locked rows; no pending job
// means ErrNotFound.
func (r *JobRepositoryPG) ClaimQueued(ctx context.Context) (*domain.ProductionJob, error) {
	return scanJob(r.db.QueryRow(ctx, sqlinline.QClaimQueuedJob))
}

func scanJob(row pgx.Row) (*domain.ProductionJob, error) {
	var job domain.ProductionJob
	if err := row.Scan(
		&job.ID,
		&job.StoryboardID,
		&job.Status,
		&job.Progress,
		&job.OutputPath,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

var _ domain.ProductionJobRepository = (*JobRepositoryPG)(nil)
