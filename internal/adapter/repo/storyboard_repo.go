package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/domain/storyboardcfg"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/sqlinline"
)

// StoryboardRepositoryPG implements domain.StoryboardRepository. Scenes live
// in a single jsonb column; scene count and order never change after insert,
// so updates rewrite the whole array.
type StoryboardRepositoryPG struct {
	db infra.SQLExecutor
}

func NewStoryboardRepository(db infra.SQLExecutor) *StoryboardRepositoryPG {
	return &StoryboardRepositoryPG{db: db}
}

func (r *StoryboardRepositoryPG) Create(ctx context.Context, sb *domain.Storyboard) error {
	scenes := storyboardcfg.MustMarshal(storyboardcfg.FromDomain(sb).Scenes)
	_, err := r.db.Exec(ctx, sqlinline.QInsertStoryboard,
		sb.ID, sb.Title, sb.Width, sb.Height, sb.FPS, scenes)
	return err
}

func (r *StoryboardRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Storyboard, error) {
	row := r.db.QueryRow(ctx, sqlinline.QGetStoryboard, id)

	var doc storyboardcfg.StoryboardDoc
	var sbID string
	var scenes []byte
	if err := row.Scan(&sbID, &doc.Title, &doc.Width, &doc.Height, &doc.FPS, &scenes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(scenes, &doc.Scenes); err != nil {
		return nil, fmt.Errorf("storyboard %s scenes column: %w", sbID, err)
	}
	return doc.ToDomain(sbID), nil
}

func (r *StoryboardRepositoryPG) UpdateScenes(ctx context.Context, sb *domain.Storyboard) error {
	scenes := storyboardcfg.MustMarshal(storyboardcfg.FromDomain(sb).Scenes)
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateStoryboardScenes, sb.ID, scenes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.StoryboardRepository = (*StoryboardRepositoryPG)(nil)
