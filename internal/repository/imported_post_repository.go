package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/janboddez/import-from-pixelfed/internal/models"
)

type ImportedPostRepository interface {
	// Create inserts the post and returns its ID, or 0 when a post with the
	// same source ID already exists.
	Create(ctx context.Context, post *models.ImportedPost) (int64, error)
	ExistsBySourceID(ctx context.Context, sourceID string) (int64, bool, error)
	// LatestSourceID returns the numerically largest source ID on record, or
	// "" when nothing has been imported yet.
	LatestSourceID(ctx context.Context) (string, error)
	SetCoverMedia(ctx context.Context, postID, mediaID int64) error
	List(ctx context.Context, limit, offset int) ([]*models.ImportedPost, error)
}

type importedPostRepository struct {
	db *sql.DB
}

func NewImportedPostRepository(db *sql.DB) ImportedPostRepository {
	return &importedPostRepository{db: db}
}

func (r *importedPostRepository) Create(ctx context.Context, post *models.ImportedPost) (int64, error) {
	query := `
		INSERT INTO imported_posts (source_id, source_url, title, content, post_type, post_status, post_format, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.SourceID,
		post.SourceURL,
		post.Title,
		post.Content,
		post.PostType,
		post.PostStatus,
		post.PostFormat,
		post.Category,
		post.CreatedAt,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict: another cycle got there first.
			return 0, nil
		}
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *importedPostRepository) ExistsBySourceID(ctx context.Context, sourceID string) (int64, bool, error) {
	query := `SELECT id FROM imported_posts WHERE source_id = $1`

	var id int64
	err := r.db.QueryRowContext(ctx, query, sourceID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		slog.Info(err.Error())
		return 0, false, err
	}

	return id, true, nil
}

func (r *importedPostRepository) LatestSourceID(ctx context.Context) (string, error) {
	// Source IDs are numeric strings that may exceed int64; cast instead of
	// sorting lexicographically.
	query := `SELECT source_id FROM imported_posts WHERE source_id <> '' ORDER BY source_id::numeric DESC LIMIT 1`

	var sourceID string
	err := r.db.QueryRowContext(ctx, query).Scan(&sourceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}

	return sourceID, nil
}

func (r *importedPostRepository) SetCoverMedia(ctx context.Context, postID, mediaID int64) error {
	query := `UPDATE imported_posts SET cover_media_id = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, mediaID, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *importedPostRepository) List(ctx context.Context, limit, offset int) ([]*models.ImportedPost, error) {
	query := `
		SELECT id, source_id, source_url, title, content, post_type, post_status, post_format, category, cover_media_id, created_at, imported_at
		FROM imported_posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ImportedPost
	for rows.Next() {
		var post models.ImportedPost
		err := rows.Scan(&post.ID, &post.SourceID, &post.SourceURL, &post.Title, &post.Content,
			&post.PostType, &post.PostStatus, &post.PostFormat, &post.Category,
			&post.CoverMediaID, &post.CreatedAt, &post.ImportedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}
