package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/janboddez/import-from-pixelfed/internal/service"
)

type TokenRefreshJob struct {
	ts service.TokenService
}

func NewTokenRefreshJob(ts service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		ts: ts,
	}
}

// RefreshTokens runs from cron. A failed refresh keeps the old token; the
// next run tries again.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	if err := c.ts.RefreshIfNeeded(ctx, time.Now()); err != nil {
		slog.Info("Unable to refresh the Pixelfed token")
	}
}
