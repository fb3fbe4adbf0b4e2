package repo

import (
	"context"

	"github.com/arthurelgindell/storyreel/internal/domain"
	"github.com/arthurelgindell/storyreel/internal/infra"
	"github.com/arthurelgindell/storyreel/internal/sqlinline"
)

// AssetRepositoryPG implements domain.GeneratedAssetRepository. Inserts are
// idempotent on the generation job id since catalog ingestion may retry.
type AssetRepositoryPG struct {
	db infra.SQLExecutor
}

func NewAssetRepository(db infra.SQLExecutor) *AssetRepositoryPG {
	return &AssetRepositoryPG{db: db}
}

func (r *AssetRepositoryPG) Save(ctx context.Context, rec *domain.GeneratedAssetRecord) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertGeneratedAsset,
		rec.ID, rec.SceneID, rec.StorageKey, rec.Width, rec.Height, rec.Duration, rec.FPS, rec.Prompt)
	return err
}

var _ domain.GeneratedAssetRepository = (*AssetRepositoryPG)(nil)
