package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

const maxFetchLimit = 40

type SettingsService interface {
	GetSettingsInfo(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, update *transfer.SettingsUpdate) error
}

type settingsService struct {
	sr repository.SettingsRepository
	ts TokenService
}

func NewSettingsService(sr repository.SettingsRepository, ts TokenService) SettingsService {
	return &settingsService{
		sr: sr,
		ts: ts,
	}
}

func (s *settingsService) GetSettingsInfo(ctx context.Context) (*models.Settings, error) {
	return s.sr.Get(ctx)
}

func (s *settingsService) UpdateSettings(ctx context.Context, update *transfer.SettingsUpdate) error {
	settings, err := s.sr.Get(ctx)
	if err != nil {
		return err
	}

	if update.Host != nil {
		// A changed instance host revokes and forgets the current tokens.
		if err := s.ts.UpdateHost(ctx, *update.Host); err != nil {
			return err
		}
	}

	if update.PostType != "" {
		if isReservedPostType(update.PostType) {
			err = errors.New("post type is reserved")
			slog.Info(err.Error())
			return err
		}
		settings.PostType = update.PostType
	}

	if update.PostStatus != "" {
		if !isAllowedPostStatus(update.PostStatus) {
			err = errors.New("invalid post status")
			slog.Info(err.Error())
			return err
		}
		settings.PostStatus = update.PostStatus
	}

	settings.PostFormat = update.PostFormat
	settings.Category = update.Category
	settings.Denylist = normalizeDenylist(update.Denylist)
	settings.Tags = update.Tags

	if update.IncludeReblogs != nil {
		settings.IncludeReblogs = *update.IncludeReblogs
	}
	if update.IncludeReplies != nil {
		settings.IncludeReplies = *update.IncludeReplies
	}
	if update.FeaturedImage != nil {
		settings.FeaturedImage = *update.FeaturedImage
	}

	if update.FetchLimit > 0 {
		limit := update.FetchLimit
		if limit > maxFetchLimit {
			limit = maxFetchLimit
		}
		settings.FetchLimit = limit
	}

	if update.TitleLength > 0 {
		settings.TitleLength = update.TitleLength
	}

	return s.sr.Update(ctx, settings)
}

func isReservedPostType(postType string) bool {
	for _, reserved := range models.ReservedPostTypes {
		if postType == reserved {
			return true
		}
	}
	return false
}

func isAllowedPostStatus(postStatus string) bool {
	for _, allowed := range models.AllowedPostStatuses {
		if postStatus == allowed {
			return true
		}
	}
	return false
}

func normalizeDenylist(denylist string) string {
	denylist = strings.ReplaceAll(denylist, "\r\n", "\n")
	denylist = strings.ReplaceAll(denylist, "\r", "\n")
	return strings.TrimSpace(denylist)
}
