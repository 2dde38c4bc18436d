// Package slog provides logging decorators for the semjson services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/semjson"
)

// Ensure the decorators implement their interfaces.
var (
	_ semjson.PageService     = (*LoggingPageService)(nil)
	_ semjson.CategoryService = (*LoggingCategoryService)(nil)
)

// LoggingPageService wraps a PageService with debug logging.
type LoggingPageService struct {
	next   semjson.PageService
	logger *slog.Logger
}

// NewLoggingPageService creates a new LoggingPageService.
func NewLoggingPageService(next semjson.PageService, logger *slog.Logger) *LoggingPageService {
	return &LoggingPageService{next: next, logger: logger}
}

// FindPageByName delegates to the wrapped service and logs the lookup.
func (s *LoggingPageService) FindPageByName(ctx context.Context, name string) (ref *semjson.PageRef, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find page by name",
			"name", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPageByName(ctx, name)
}

// FindPageByID delegates to the wrapped service. Lookups of unused IDs are
// routine during a full export and are not logged.
func (s *LoggingPageService) FindPageByID(ctx context.Context, id int) (*semjson.PageRef, error) {
	return s.next.FindPageByID(ctx, id)
}

// FindPages delegates to the wrapped service and logs the query.
func (s *LoggingPageService) FindPages(ctx context.Context, filter semjson.PageFilter) (refs []*semjson.PageRef, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find pages",
			"offset", filter.Offset,
			"limit", filter.Limit,
			"count", len(refs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPages(ctx, filter)
}

// MaxPageID delegates to the wrapped service and logs the result.
func (s *LoggingPageService) MaxPageID(ctx context.Context) (id int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("max page id",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.MaxPageID(ctx)
}

// FindPageInfo delegates to the wrapped service and logs the lookup.
func (s *LoggingPageService) FindPageInfo(ctx context.Context, ref *semjson.PageRef) (info *semjson.PageInfo, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find page info",
			"page", ref.FullText(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPageInfo(ctx, ref)
}

// FindPageContent delegates to the wrapped service and logs the content size.
func (s *LoggingPageService) FindPageContent(ctx context.Context, ref *semjson.PageRef) (content string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find page content",
			"page", ref.FullText(),
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPageContent(ctx, ref)
}

// FindPageLinks delegates to the wrapped service and logs the link count.
func (s *LoggingPageService) FindPageLinks(ctx context.Context, ref *semjson.PageRef) (links []*semjson.PageRef, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find page links",
			"page", ref.FullText(),
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindPageLinks(ctx, ref)
}

// LoggingCategoryService wraps a CategoryService with logging.
type LoggingCategoryService struct {
	next   semjson.CategoryService
	logger *slog.Logger
}

// NewLoggingCategoryService creates a new LoggingCategoryService.
func NewLoggingCategoryService(next semjson.CategoryService, logger *slog.Logger) *LoggingCategoryService {
	return &LoggingCategoryService{next: next, logger: logger}
}

// FindCategoryMembers delegates to the wrapped service and logs the members found.
func (s *LoggingCategoryService) FindCategoryMembers(ctx context.Context, name string, limit int) (refs []*semjson.PageRef, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find category members",
			"category", name,
			"count", len(refs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindCategoryMembers(ctx, name, limit)
}
