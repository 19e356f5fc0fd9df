package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/janboddez/import-from-pixelfed/internal/models"
)

type SettingsRepository interface {
	// Get returns the stored settings, or the defaults when none were saved.
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT id, post_type, post_status, post_format, category, denylist, tags, include_reblogs, include_replies, featured_image, fetch_limit, title_length, updated_at
		FROM settings
		WHERE id = 1
	`

	var settings models.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(&settings.ID, &settings.PostType, &settings.PostStatus,
		&settings.PostFormat, &settings.Category, &settings.Denylist, &settings.Tags,
		&settings.IncludeReblogs, &settings.IncludeReplies, &settings.FeaturedImage,
		&settings.FetchLimit, &settings.TitleLength, &settings.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultSettings(), nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (id, post_type, post_status, post_format, category, denylist, tags, include_reblogs, include_replies, featured_image, fetch_limit, title_length)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET post_type = EXCLUDED.post_type,
			post_status = EXCLUDED.post_status,
			post_format = EXCLUDED.post_format,
			category = EXCLUDED.category,
			denylist = EXCLUDED.denylist,
			tags = EXCLUDED.tags,
			include_reblogs = EXCLUDED.include_reblogs,
			include_replies = EXCLUDED.include_replies,
			featured_image = EXCLUDED.featured_image,
			fetch_limit = EXCLUDED.fetch_limit,
			title_length = EXCLUDED.title_length,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, settings.PostType, settings.PostStatus, settings.PostFormat,
		settings.Category, settings.Denylist, settings.Tags, settings.IncludeReblogs,
		settings.IncludeReplies, settings.FeaturedImage, settings.FetchLimit, settings.TitleLength)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
