package models

import "time"

type ImportedPost struct {
	ID           int64     `db:"id" json:"id"`
	SourceID     string    `db:"source_id" json:"source_id"`
	SourceURL    string    `db:"source_url" json:"source_url"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	PostType     string    `db:"post_type" json:"post_type"`
	PostStatus   string    `db:"post_status" json:"post_status"`
	PostFormat   string    `db:"post_format" json:"post_format"`
	Category     string    `db:"category" json:"category"`
	CoverMediaID int64     `db:"cover_media_id" json:"cover_media_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ImportedAt   time.Time `db:"imported_at" json:"imported_at"`
}

type MediaAsset struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	FileType     string    `db:"file_type" json:"file_type"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	FileURL      string    `db:"file_url" json:"file_url"`
	AltText      string    `db:"alt_text" json:"alt_text"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
	PostStatusPending = "pending"
	PostStatusPrivate = "private"
)
