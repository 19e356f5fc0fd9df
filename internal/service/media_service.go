package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"

	"github.com/h2non/filetype"
	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

// MediaStorage is the part of the object store the media service needs.
type MediaStorage interface {
	Upload(ctx context.Context, key string, file []byte, filetype string) error
	PublicURL(key string) string
}

type MediaService interface {
	// Attach downloads an attachment, stores it, and links it to the post.
	// Returns the media asset ID.
	Attach(ctx context.Context, postID int64, attachment *transfer.MediaAttachment, displayOrder int) (int64, error)
}

type mediaService struct {
	pf PixelfedService
	ma repository.MediaAssetRepository
	st MediaStorage
}

func NewMediaService(pf PixelfedService, ma repository.MediaAssetRepository, st MediaStorage) MediaService {
	return &mediaService{
		pf: pf,
		ma: ma,
		st: st,
	}
}

func (s *mediaService) Attach(ctx context.Context, postID int64, attachment *transfer.MediaAttachment, displayOrder int) (int64, error) {
	parsed, err := url.ParseRequestURI(attachment.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return 0, errors.New("invalid attachment URL")
	}

	fileName := path.Base(parsed.Path)
	if fileName == "" || fileName == "." || fileName == "/" {
		return 0, errors.New("unable to derive a file name")
	}

	// Remote file names are unique per instance; an existing asset with the
	// same name means the bytes are already in the store.
	existing, err := s.ma.GetByFileName(ctx, fileName)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		asset := &models.MediaAsset{
			PostID:       postID,
			FileName:     fileName,
			FileType:     existing.FileType,
			FileSize:     existing.FileSize,
			FileURL:      existing.FileURL,
			AltText:      attachment.Description,
			DisplayOrder: displayOrder,
		}
		return s.ma.Create(ctx, asset)
	}

	data, err := s.pf.DownloadMedia(ctx, attachment.URL)
	if err != nil {
		return 0, err
	}

	if !filetype.IsImage(data) {
		return 0, errors.New("attachment is not an image")
	}

	kind, err := filetype.Match(data)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	key := "media/" + fileName
	if err := s.st.Upload(ctx, key, data, kind.MIME.Value); err != nil {
		return 0, err
	}

	asset := &models.MediaAsset{
		PostID:       postID,
		FileName:     fileName,
		FileType:     kind.MIME.Value,
		FileSize:     int64(len(data)),
		FileURL:      s.st.PublicURL(key),
		AltText:      attachment.Description,
		DisplayOrder: displayOrder,
	}

	return s.ma.Create(ctx, asset)
}
