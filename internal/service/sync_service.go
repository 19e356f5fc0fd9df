package service

import (
	"context"
	"log"
	"log/slog"

	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

const defaultFetchLimit = 15

const defaultTitleLength = 10

type SyncService interface {
	// Poll fetches recent statuses and imports the ones not seen before.
	// Missing configuration is a no-op, not an error.
	Poll(ctx context.Context) error

	OnQuery(t QueryTransform)
	OnContent(t ContentTransform)
	OnTitle(t TitleTransform)
	OnPost(t PostTransform)
}

type syncService struct {
	ts TokenService
	pf PixelfedService
	ip repository.ImportedPostRepository
	sr repository.SettingsRepository
	ms MediaService

	queryTransforms   []QueryTransform
	contentTransforms []ContentTransform
	titleTransforms   []TitleTransform
	postTransforms    []PostTransform
}

func NewSyncService(
	ts TokenService,
	pf PixelfedService,
	ip repository.ImportedPostRepository,
	sr repository.SettingsRepository,
	ms MediaService) SyncService {
	return &syncService{
		ts: ts,
		pf: pf,
		ip: ip,
		sr: sr,
		ms: ms,
	}
}

func (s *syncService) OnQuery(t QueryTransform)     { s.queryTransforms = append(s.queryTransforms, t) }
func (s *syncService) OnContent(t ContentTransform) { s.contentTransforms = append(s.contentTransforms, t) }
func (s *syncService) OnTitle(t TitleTransform)     { s.titleTransforms = append(s.titleTransforms, t) }
func (s *syncService) OnPost(t PostTransform)       { s.postTransforms = append(s.postTransforms, t) }

func (s *syncService) Poll(ctx context.Context) error {
	host, accessToken, err := s.ts.Connection(ctx)
	if err != nil {
		return err
	}
	if host == "" || accessToken == "" {
		// Not connected (yet). Nothing to do.
		return nil
	}

	settings, err := s.sr.Get(ctx)
	if err != nil {
		return err
	}

	accountID, err := s.ts.EnsureAccountID(ctx)
	if err != nil {
		slog.Info(err.Error())
		return nil
	}

	cursor, err := s.ip.LatestSourceID(ctx)
	if err != nil {
		return err
	}
	if cursor != "" {
		log.Printf("Found the following status to be the most recent one: %s", cursor)
	}

	limit := settings.FetchLimit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	q := StatusQuery{
		Limit:          limit,
		ExcludeReplies: !settings.IncludeReplies,
		ExcludeReblogs: !settings.IncludeReblogs,
		// min_id is a hint, not a guarantee; duplicates are caught below
		// regardless.
		MinID: cursor,
		Tags:  SplitTags(settings.Tags),
	}
	for _, t := range s.queryTransforms {
		t(&q, settings)
	}

	statuses, err := s.pf.ListStatuses(ctx, host, accessToken, accountID, q)
	if err != nil {
		// Abort this cycle; the next scheduled one retries from scratch.
		slog.Info(err.Error())
		return nil
	}

	if len(statuses) == 0 {
		log.Println("No new statuses found")
		return nil
	}

	log.Printf("Found %d new status(es)", len(statuses))

	// The API returns newest first. Process oldest to newest so the most
	// recent status is inserted last and a mid-batch failure leaves the
	// cursor consistent.
	for i := len(statuses) - 1; i >= 0; i-- {
		s.importStatus(ctx, settings, statuses[i])
	}

	return nil
}

func (s *syncService) importStatus(ctx context.Context, settings *models.Settings, status *transfer.Status) {
	if status == nil || status.ID == "" {
		// Should not happen. Skip.
		return
	}

	existingID, exists, err := s.ip.ExistsBySourceID(ctx, status.ID)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if exists {
		log.Printf("Skipping status with ID %s, which was imported before (post ID: %d)", status.ID, existingID)
		return
	}

	// The denylist runs against the raw content, markup and all.
	if Denylisted(status.Content, settings.Denylist) {
		return
	}

	content := CleanContent(status.Content)

	boosted := status.Reblog != nil && status.Reblog.URL != "" &&
		status.Reblog.Account != nil && status.Reblog.Account.Username != ""
	if boosted && content != "" {
		// Add a little context to boosts.
		content = "<blockquote>" + content + "\n\n" +
			`&mdash;<a href="` + status.Reblog.URL + `" rel="nofollow">` + status.Reblog.Account.Username + `</a>` +
			"</blockquote>"
	}

	if content == "" && len(status.MediaAttachments) == 0 {
		return
	}

	titleLength := settings.TitleLength
	if titleLength <= 0 {
		titleLength = defaultTitleLength
	}
	title := TrimWords(content, titleLength)

	for _, t := range s.contentTransforms {
		content = t(content, status)
	}
	for _, t := range s.titleTransforms {
		title = t(title, status)
	}

	sourceURL := status.URL
	if boosted {
		sourceURL = status.Reblog.URL
	}

	if title == "" && sourceURL != "" {
		title = sourceURL
	}

	post := &models.ImportedPost{
		SourceID:   status.ID,
		SourceURL:  sourceURL,
		Title:      title,
		Content:    content,
		PostType:   settings.PostType,
		PostStatus: settings.PostStatus,
		PostFormat: settings.PostFormat,
		Category:   settings.Category,
		CreatedAt:  status.CreatedAt.UTC(),
	}
	for _, t := range s.postTransforms {
		t(post, status)
	}

	postID, err := s.ip.Create(ctx, post)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if postID == 0 {
		// A concurrent cycle beat us to it.
		log.Printf("Skipping status with ID %s, which was imported concurrently", status.ID)
		return
	}

	first := true
	for i := range status.MediaAttachments {
		attachment := &status.MediaAttachments[i]

		if attachment.Type != "image" {
			// For now, only images are supported.
			continue
		}

		mediaID, err := s.ms.Attach(ctx, postID, attachment, i)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		if first && settings.FeaturedImage {
			// The first successfully stored attachment becomes the cover.
			if err := s.ip.SetCoverMedia(ctx, postID, mediaID); err != nil {
				slog.Info(err.Error())
			}
		}
		first = false
	}
}
