package repo

import (
	"context"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/sqlinline"
)

// MatchRepositoryPG implements domain.MatchRepository. One row per scene;
// re-resolving a scene replaces its row, failed jobs leave rows in place.
type MatchRepositoryPG struct {
	db infra.SQLExecutor
}

func NewMatchRepository(db infra.SQLExecutor) *MatchRepositoryPG {
	return &MatchRepositoryPG{db: db}
}

func (r *MatchRepositoryPG) Save(ctx context.Context, storyboardID string, res *domain.ResolvedAsset) error {
	_, err := r.db.Exec(ctx, sqlinline.QUpsertSceneMatch,
		storyboardID, res.SceneID, res.AssetID, res.LocalPath, res.Source, res.Confidence, res.Review)
	return err
}

func (r *MatchRepositoryPG) ListByStoryboard(ctx context.Context, storyboardID string) ([]domain.ResolvedAsset, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListSceneMatches, storyboardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.ResolvedAsset
	for rows.Next() {
		var res domain.ResolvedAsset
		if err := rows.Scan(&res.SceneID, &res.AssetID, &res.LocalPath, &res.Source, &res.Confidence, &res.Review); err != nil {
			return nil, err
		}
		matches = append(matches, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

var _ domain.MatchRepository = (*MatchRepositoryPG)(nil)
