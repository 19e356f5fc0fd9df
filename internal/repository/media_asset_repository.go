package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/janboddez/import-from-pixelfed/internal/models"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, asset *models.MediaAsset) (int64, error)
	GetByFileName(ctx context.Context, fileName string) (*models.MediaAsset, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error)
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, asset *models.MediaAsset) (int64, error) {
	query := `
		INSERT INTO media_assets (post_id, file_name, file_type, file_size, file_url, alt_text, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		asset.PostID,
		asset.FileName,
		asset.FileType,
		asset.FileSize,
		asset.FileURL,
		asset.AltText,
		asset.DisplayOrder,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *mediaAssetRepository) GetByFileName(ctx context.Context, fileName string) (*models.MediaAsset, error) {
	query := `
		SELECT id, post_id, file_name, file_type, file_size, file_url, alt_text, display_order, created_at
		FROM media_assets
		WHERE file_name = $1
		ORDER BY id
		LIMIT 1
	`

	var asset models.MediaAsset
	err := r.db.QueryRowContext(ctx, query, fileName).Scan(&asset.ID, &asset.PostID, &asset.FileName,
		&asset.FileType, &asset.FileSize, &asset.FileURL, &asset.AltText, &asset.DisplayOrder, &asset.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &asset, nil
}

func (r *mediaAssetRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, post_id, file_name, file_type, file_size, file_url, alt_text, display_order, created_at
		FROM media_assets
		WHERE post_id = $1
		ORDER BY display_order
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		err := rows.Scan(&asset.ID, &asset.PostID, &asset.FileName, &asset.FileType,
			&asset.FileSize, &asset.FileURL, &asset.AltText, &asset.DisplayOrder, &asset.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, &asset)
	}

	return assets, nil
}
