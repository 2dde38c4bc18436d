package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/semjson"
)

// Ensure LoggingSiteService implements semjson.SiteService.
var _ semjson.SiteService = (*LoggingSiteService)(nil)

// LoggingSiteService wraps a SiteService with logging.
type LoggingSiteService struct {
	next   semjson.SiteService
	logger *slog.Logger
}

// NewLoggingSiteService creates a new LoggingSiteService.
func NewLoggingSiteService(next semjson.SiteService, logger *slog.Logger) *LoggingSiteService {
	return &LoggingSiteService{next: next, logger: logger}
}

// FindSiteStats delegates to the wrapped service and logs the page count.
func (s *LoggingSiteService) FindSiteStats(ctx context.Context) (stats *semjson.SiteStats, err error) {
	defer func(begin time.Time) {
		pages := 0
		if stats != nil {
			pages = stats.Pages
		}
		s.logger.Info("site stats",
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSiteStats(ctx)
}
