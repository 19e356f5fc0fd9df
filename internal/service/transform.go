package service

import (
	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

// Transform hooks run in registration order at fixed points of the sync
// cycle. They replace the host-platform filter callbacks of earlier versions
// with explicit, typed extension points.

// QueryTransform may adjust the statuses list query before it is issued.
type QueryTransform func(q *StatusQuery, settings *models.Settings)

// ContentTransform rewrites the sanitized post content.
type ContentTransform func(content string, status *transfer.Status) string

// TitleTransform rewrites the derived post title.
type TitleTransform func(title string, status *transfer.Status) string

// PostTransform may adjust the assembled post right before it is stored.
type PostTransform func(post *models.ImportedPost, status *transfer.Status)
